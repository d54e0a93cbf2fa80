package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// StatisticsStore is the append-only operation_statistics table
type StatisticsStore struct {
	pool *pgxpool.Pool
}

// NewStatisticsStore creates a statistics store
func NewStatisticsStore(pool *pgxpool.Pool) *StatisticsStore {
	return &StatisticsStore{pool: pool}
}

// InsertOperation appends r and sets its id
func (s *StatisticsStore) InsertOperation(ctx context.Context, r *types.OperationRecord) error {
	if r.ExecutionDate.IsZero() {
		r.ExecutionDate = time.Now()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO operation_statistics (
			run_id, competitor_id, operation_type, total_products, success_count,
			error_count, skipped_count, execution_time_ms, execution_date, initiated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		r.RunID, r.CompetitorID, string(r.Operation), r.TotalProducts, r.SuccessCount,
		r.ErrorCount, r.SkippedCount, r.ExecutionTime.Milliseconds(), r.ExecutionDate, string(r.InitiatedBy),
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("error inserting %s statistics: %w", r.Operation, err)
	}
	return nil
}

// SummarizeOperations aggregates rows executed at or after since
func (s *StatisticsStore) SummarizeOperations(ctx context.Context, since time.Time) ([]types.OperationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.competitor_id, COALESCE(c.name, ''), s.operation_type,
			count(*), COALESCE(sum(s.total_products), 0), COALESCE(sum(s.success_count), 0),
			COALESCE(sum(s.error_count), 0), COALESCE(sum(s.skipped_count), 0),
			COALESCE(sum(s.execution_time_ms), 0), max(s.execution_date)
		FROM operation_statistics s
		LEFT JOIN competitors c ON c.id = s.competitor_id
		WHERE s.execution_date >= $1
		GROUP BY s.competitor_id, c.name, s.operation_type
		ORDER BY s.operation_type, c.name NULLS FIRST`, since)
	if err != nil {
		return nil, fmt.Errorf("error summarizing statistics: %w", err)
	}
	defer rows.Close()

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.OperationSummary, error) {
		var (
			sum    types.OperationSummary
			op     string
			millis int64
		)
		err := row.Scan(&sum.CompetitorID, &sum.CompetitorName, &op, &sum.Runs, &sum.TotalProducts,
			&sum.SuccessCount, &sum.ErrorCount, &sum.SkippedCount, &millis, &sum.LastRun)
		sum.Operation = types.OperationType(op)
		sum.TotalTime = time.Duration(millis) * time.Millisecond
		return sum, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning statistics summary: %w", err)
	}
	return summaries, nil
}

// RecentOperations returns the latest limit rows, newest first
func (s *StatisticsStore) RecentOperations(ctx context.Context, limit int) ([]types.OperationRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.run_id::text, s.competitor_id, COALESCE(c.name, ''), s.operation_type,
			s.total_products, s.success_count, s.error_count, s.skipped_count,
			s.execution_time_ms, s.execution_date, s.initiated_by
		FROM operation_statistics s
		LEFT JOIN competitors c ON c.id = s.competitor_id
		ORDER BY s.execution_date DESC, s.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent statistics: %w", err)
	}
	defer rows.Close()

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.OperationRecord, error) {
		var (
			r      types.OperationRecord
			op, by string
			millis int64
		)
		err := row.Scan(&r.ID, &r.RunID, &r.CompetitorID, &r.Competitor, &op,
			&r.TotalProducts, &r.SuccessCount, &r.ErrorCount, &r.SkippedCount,
			&millis, &r.ExecutionDate, &by)
		r.Operation = types.OperationType(op)
		r.InitiatedBy = types.Initiator(by)
		r.ExecutionTime = time.Duration(millis) * time.Millisecond
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning recent statistics: %w", err)
	}
	return records, nil
}

// DeleteOperationsBefore removes rows executed before cutoff
func (s *StatisticsStore) DeleteOperationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM operation_statistics WHERE execution_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune statistics: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
