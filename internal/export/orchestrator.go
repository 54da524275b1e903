package export

import (
	"context"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/sunflower-vision/report-export-go/internal/errors"
	"github.com/sunflower-vision/report-export-go/internal/service"
	"github.com/sunflower-vision/report-export-go/internal/storage"
	"github.com/sunflower-vision/report-export-go/pkg/models"

	"github.com/google/uuid"
)

// LaneKey identifies one export concurrency slot: a record id, or the
// whole-set singleton. At most one job runs per lane; distinct lanes run
// concurrently.
type LaneKey string

// BulkLane is the singleton lane shared by all whole-set exports.
const BulkLane LaneKey = "bulk"

// RecordLane returns the lane for a single record's exports and previews.
func RecordLane(recordID int) LaneKey {
	return LaneKey("record-" + strconv.Itoa(recordID))
}

// Job is one accepted export invocation.
type Job struct {
	ID          string
	Lane        LaneKey
	SubmittedAt time.Time
}

// Orchestrator tracks per-lane running state, runs export jobs on a worker
// pool, saves finished artifacts and emits lifecycle events. Duplicate
// requests for a busy lane are rejected, never queued.
type Orchestrator struct {
	svc        service.ReportService
	saver      storage.FileSaver
	notifier   *Notifier
	pool       *WorkerPool
	strategies map[string]BulkStrategy

	mu      sync.Mutex
	running map[LaneKey]Job
}

// NewOrchestrator wires the orchestrator and starts its worker pool.
func NewOrchestrator(svc service.ReportService, saver storage.FileSaver, notifier *Notifier, workers int) *Orchestrator {
	if notifier == nil {
		notifier = NewNotifier()
	}
	pool := NewWorkerPool(workers)
	pool.Start()

	return &Orchestrator{
		svc:        svc,
		saver:      saver,
		notifier:   notifier,
		pool:       pool,
		strategies: bulkStrategies(svc),
		running:    make(map[LaneKey]Job),
	}
}

// Close drains and stops the worker pool.
func (o *Orchestrator) Close() {
	o.pool.Wait()
	o.pool.Close()
}

// IsRunning reports whether a lane currently has a job.
func (o *Orchestrator) IsRunning(lane LaneKey) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.running[lane]
	return busy
}

// begin atomically claims a lane. The check-and-set happens under one lock
// acquisition, before any suspension point, so two requests racing for the
// same lane can never both start.
func (o *Orchestrator) begin(lane LaneKey) (Job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.running[lane]; busy {
		return Job{}, apperrors.NewExportRunningError("an export is already running for " + string(lane))
	}
	job := Job{
		ID:          uuid.NewString(),
		Lane:        lane,
		SubmittedAt: time.Now(),
	}
	o.running[lane] = job
	return job, nil
}

// end releases a lane regardless of the job outcome.
func (o *Orchestrator) end(lane LaneKey) {
	o.mu.Lock()
	delete(o.running, lane)
	o.mu.Unlock()
}

// ExportRecord queues generation of one record's report document. Once a job
// is accepted it runs to completion and saves its artifact even if the
// triggering context is torn down.
func (o *Orchestrator) ExportRecord(ctx context.Context, rec models.AnalysisRecord) (Job, error) {
	job, err := o.begin(RecordLane(rec.ID))
	if err != nil {
		return Job{}, err
	}
	o.notifier.Notify(Event{Type: ExportStarted, Lane: job.Lane, JobID: job.ID, Timestamp: time.Now()})

	genCtx := context.WithoutCancel(ctx)
	o.pool.Submit(func() {
		o.run(genCtx, job, func(ctx context.Context) (*models.Artifact, error) {
			return o.svc.GenerateRecordPDF(ctx, rec)
		})
	})
	return job, nil
}

// ExportHistory queues a whole-set export in the named format ("pdf", "csv"
// or "xlsx"). All formats share the bulk lane.
func (o *Orchestrator) ExportHistory(ctx context.Context, records []models.AnalysisRecord, format string) (Job, error) {
	strategy, ok := o.strategies[format]
	if !ok {
		return Job{}, apperrors.NewValidationError("unknown export format: "+format, nil)
	}

	job, err := o.begin(BulkLane)
	if err != nil {
		return Job{}, err
	}
	o.notifier.Notify(Event{Type: ExportStarted, Lane: job.Lane, JobID: job.ID, Timestamp: time.Now()})

	genCtx := context.WithoutCancel(ctx)
	o.pool.Submit(func() {
		o.run(genCtx, job, func(ctx context.Context) (*models.Artifact, error) {
			return strategy.Generate(ctx, records)
		})
	})
	return job, nil
}

// PreviewImage loads one record's image at preview resolution, holding the
// record's lane while the load is in flight. Previews are synchronous and
// honor cancellation: a torn-down caller context aborts the load instead of
// delivering a stale result.
func (o *Orchestrator) PreviewImage(ctx context.Context, rec models.AnalysisRecord) ([]byte, error) {
	lane := RecordLane(rec.ID)
	if _, err := o.begin(lane); err != nil {
		return nil, err
	}
	defer o.end(lane)
	return o.svc.PreviewImage(ctx, rec)
}

// run executes one accepted job: generate, save, release the lane, notify.
func (o *Orchestrator) run(ctx context.Context, job Job, generate func(context.Context) (*models.Artifact, error)) {
	defer o.end(job.Lane)

	artifact, err := generate(ctx)
	if err != nil {
		o.notifier.Notify(Event{
			Type:         ExportFailed,
			Lane:         job.Lane,
			JobID:        job.ID,
			Timestamp:    time.Now(),
			ErrorMessage: err.Error(),
		})
		return
	}

	if err := o.saver.Save(ctx, artifact.Filename, artifact.Data); err != nil {
		o.notifier.Notify(Event{
			Type:         ExportFailed,
			Lane:         job.Lane,
			JobID:        job.ID,
			Artifact:     artifact.Filename,
			Timestamp:    time.Now(),
			ErrorMessage: err.Error(),
		})
		return
	}

	o.notifier.Notify(Event{
		Type:      ExportCompleted,
		Lane:      job.Lane,
		JobID:     job.ID,
		Artifact:  artifact.Filename,
		Timestamp: time.Now(),
	})
}
