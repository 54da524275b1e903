package models

import (
	"sort"
	"time"
)

// HealthyClass is the one label that denotes a healthy leaf; every other
// predicted class is a detected condition.
const HealthyClass = "Fresh Leaf"

// Prediction is a single class/confidence pair. Records carry predictions as
// an ordered slice rather than a map so that document order from the backend
// survives into reports.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ImageInfo describes the analyzed upload as reported by the backend.
type ImageInfo struct {
	Filename          string  `json:"filename"`
	Size              string  `json:"size"`
	ProcessingTimeSec float64 `json:"processing_time_sec"`
}

// AnalysisRecord is the canonical record shape every pipeline component
// consumes. It is produced once by the history normalizer and never mutated.
type AnalysisRecord struct {
	ID             int          `json:"id"`
	PredictedClass string       `json:"predicted_class"`
	Confidence     float64      `json:"confidence"`
	Predictions    []Prediction `json:"all_predictions"`
	ImageInfo      ImageInfo    `json:"image_info"`

	// ImageRef is the resolved image location; empty when the record carries
	// no usable image URL in any schema version.
	ImageRef string `json:"image_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HealthStatus derives the user-facing status from the predicted class.
func (r AnalysisRecord) HealthStatus() string {
	if r.PredictedClass == HealthyClass {
		return "Healthy"
	}
	return "Disease Detected"
}

// IsHealthy reports whether the record's predicted class is the healthy one.
func (r AnalysisRecord) IsHealthy() bool {
	return r.PredictedClass == HealthyClass
}

// SortedPredictions returns a copy of the prediction list ordered by
// confidence descending. Detail/preview views use this; card summaries and
// PDF reports keep the stored order.
func (r AnalysisRecord) SortedPredictions() []Prediction {
	out := make([]Prediction, len(r.Predictions))
	copy(out, r.Predictions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// ResolvedImageURL is the resolver's output: the delivery URL to try first
// and an optional fallback variant of the same asset. The zero value means
// the record had no image to resolve.
type ResolvedImageURL struct {
	Primary  string
	Fallback string
}

// IsZero reports whether no URL could be resolved.
func (u ResolvedImageURL) IsZero() bool {
	return u.Primary == ""
}

// Artifact is a generated export: a named, typed byte payload ready to hand
// to a saver or an HTTP response.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}
