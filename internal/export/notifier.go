package export

import (
	"sync"
	"time"

	"github.com/sunflower-vision/report-export-go/internal/logger"

	"github.com/sirupsen/logrus"
)

// EventType represents the type of export event
type EventType string

const (
	// ExportStarted when an export job is accepted onto its lane
	ExportStarted EventType = "export_started"
	// ExportCompleted when the artifact was generated and saved
	ExportCompleted EventType = "export_completed"
	// ExportFailed when assembly or saving failed
	ExportFailed EventType = "export_failed"
)

// Event is one export lifecycle notification. Completion and failure events
// are the transient user-facing notifications; they never block anything.
type Event struct {
	Type         EventType `json:"type"`
	Lane         LaneKey   `json:"lane"`
	JobID        string    `json:"job_id"`
	Artifact     string    `json:"artifact,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Observer receives export events
type Observer interface {
	OnExportEvent(event Event)
}

// Notifier fans export events out to subscribed observers
type Notifier struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers an observer for future events
func (n *Notifier) Subscribe(observer Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, observer)
}

// Notify delivers the event to every observer in subscription order
func (n *Notifier) Notify(event Event) {
	n.mu.RLock()
	observers := make([]Observer, len(n.observers))
	copy(observers, n.observers)
	n.mu.RUnlock()

	for _, o := range observers {
		o.OnExportEvent(event)
	}
}

// LogObserver writes export events to the structured log
type LogObserver struct{}

// OnExportEvent implements Observer
func (LogObserver) OnExportEvent(event Event) {
	entry := logger.WithFields(logrus.Fields{
		"lane":     event.Lane,
		"job_id":   event.JobID,
		"artifact": event.Artifact,
	})
	switch event.Type {
	case ExportFailed:
		entry.WithField("error", event.ErrorMessage).Error("Export failed")
	case ExportCompleted:
		entry.Info("Export completed")
	default:
		entry.Info("Export started")
	}
}
