// Package stats records per-run operation statistics and exports run metrics
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/types"
)

const (
	DefaultSummaryDays = 30
	DefaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Store is the persistence used by the recorder
type Store interface {
	InsertOperation(ctx context.Context, r *types.OperationRecord) error
	SummarizeOperations(ctx context.Context, since time.Time) ([]types.OperationSummary, error)
	RecentOperations(ctx context.Context, limit int) ([]types.OperationRecord, error)
}

// Recorder appends statistics rows and serves aggregate views
type Recorder struct {
	store  Store
	logger *zerolog.Logger
	now    func() time.Time
}

// NewRecorder creates a statistics recorder
func NewRecorder(store Store, logger *zerolog.Logger) *Recorder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Record stores r, assigning a run id and execution date when missing, and
// observes the run duration metric
func (r *Recorder) Record(ctx context.Context, rec types.OperationRecord) (types.OperationRecord, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.ExecutionDate.IsZero() {
		rec.ExecutionDate = r.now()
	}
	if rec.InitiatedBy == "" {
		rec.InitiatedBy = types.InitiatorManual
	}
	ObserveRun(rec.Operation, rec.ExecutionTime)

	if err := r.store.InsertOperation(ctx, &rec); err != nil {
		return rec, fmt.Errorf("record %s statistics: %w", rec.Operation, err)
	}

	r.logger.Debug().
		Str("run_id", rec.RunID).
		Str("operation", string(rec.Operation)).
		Int("total", rec.TotalProducts).
		Int("success", rec.SuccessCount).
		Int("errors", rec.ErrorCount).
		Int("skipped", rec.SkippedCount).
		Dur("duration", rec.ExecutionTime).
		Msg("Recorded operation statistics")
	return rec, nil
}

// RecordQuietly records rec and logs instead of returning a failure.
// Statistics never fail a run.
func (r *Recorder) RecordQuietly(ctx context.Context, rec types.OperationRecord) {
	if _, err := r.Record(ctx, rec); err != nil {
		r.logger.Error().Err(err).Str("operation", string(rec.Operation)).Msg("Failed to record statistics")
	}
}

// Summary aggregates the last days days; non-positive means the default
func (r *Recorder) Summary(ctx context.Context, days int) ([]types.OperationSummary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	since := r.now().AddDate(0, 0, -days)
	summary, err := r.store.SummarizeOperations(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("summarize statistics: %w", err)
	}
	return summary, nil
}

// Recent lists the newest rows
func (r *Recorder) Recent(ctx context.Context, limit int) ([]types.OperationRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	records, err := r.store.RecentOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent statistics: %w", err)
	}
	return records, nil
}
