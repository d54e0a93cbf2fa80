package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpricematcher/price-matcher/internal/types"
)

type fakeStore struct {
	inserted []types.OperationRecord
	since    time.Time
	limit    int
	err      error
}

func (f *fakeStore) InsertOperation(ctx context.Context, r *types.OperationRecord) error {
	if f.err != nil {
		return f.err
	}
	r.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *r)
	return nil
}

func (f *fakeStore) SummarizeOperations(ctx context.Context, since time.Time) ([]types.OperationSummary, error) {
	f.since = since
	return []types.OperationSummary{{Operation: types.OperationCompare, Runs: 2}}, f.err
}

func (f *fakeStore) RecentOperations(ctx context.Context, limit int) ([]types.OperationRecord, error) {
	f.limit = limit
	return nil, f.err
}

func TestRecordAssignsRunID(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, nil)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	rec, err := r.Record(context.Background(), types.OperationRecord{
		Operation:     types.OperationUpdate,
		TotalProducts: 5,
		ExecutionTime: 2 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)

	_, err = uuid.Parse(rec.RunID)
	assert.NoError(t, err)
	assert.Equal(t, now, rec.ExecutionDate)
	assert.Equal(t, types.InitiatorManual, rec.InitiatedBy)
	assert.Equal(t, int64(1), rec.ID)
}

func TestRecordKeepsExplicitValues(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, nil)
	date := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	rec, err := r.Record(context.Background(), types.OperationRecord{
		RunID:         "11111111-2222-3333-4444-555555555555",
		Operation:     types.OperationClean,
		ExecutionDate: date,
		InitiatedBy:   types.InitiatorCron,
	})
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", rec.RunID)
	assert.Equal(t, date, rec.ExecutionDate)
	assert.Equal(t, types.InitiatorCron, rec.InitiatedBy)
}

func TestRecordStoreError(t *testing.T) {
	r := NewRecorder(&fakeStore{err: errors.New("db down")}, nil)
	_, err := r.Record(context.Background(), types.OperationRecord{Operation: types.OperationCompare})
	assert.ErrorContains(t, err, "db down")

	// quiet variant only logs
	r.RecordQuietly(context.Background(), types.OperationRecord{Operation: types.OperationCompare})
}

func TestSummaryAndRecentDefaults(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, nil)
	now := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	tests := []struct {
		days  int
		since time.Time
	}{
		{0, now.AddDate(0, 0, -30)},
		{-3, now.AddDate(0, 0, -30)},
		{7, now.AddDate(0, 0, -7)},
	}
	for _, tt := range tests {
		summary, err := r.Summary(context.Background(), tt.days)
		require.NoError(t, err)
		assert.Len(t, summary, 1)
		assert.Equal(t, tt.since, store.since)
	}

	limits := map[int]int{0: DefaultRecentLimit, 10: 10, 100000: maxRecentLimit}
	for in, expected := range limits {
		_, err := r.Recent(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, expected, store.limit)
	}
}
