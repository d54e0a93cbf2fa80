package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "feeds"))
	require.NoError(t, err)
	return s
}

func TestFeedKey(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "acme_2026-03-01_14-05-09.csv", FeedKey("ACME", ts))
}

func TestSaveAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	first, err := s.Save(ctx, "Acme", []byte("sku,competitor_price\nA,1\n"), &Metadata{Competitor: "Acme", Rows: 1})
	require.NoError(t, err)
	assert.Equal(t, "acme_2026-03-01_08-00-00.csv", first.Key)
	assert.Equal(t, ComputeChecksum([]byte("sku,competitor_price\nA,1\n")), first.Checksum)

	clock = clock.Add(time.Hour)
	second, err := s.Save(ctx, "Acme", []byte("sku,competitor_price\nA,2\n"), nil)
	require.NoError(t, err)

	// Same mtime for both files is possible on coarse filesystems
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(first.Path, old, old))

	latest, err := s.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, second.Key, latest.Key)
	assert.Nil(t, latest.Metadata)

	files, err := s.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.NotNil(t, files[1].Metadata)
	assert.Equal(t, 1, files[1].Metadata.Rows)
}

func TestLatestNotFound(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Latest(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrFeedNotFound))
}

func TestLatestPrefersManuallyTouchedFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	manual := filepath.Join(s.BasePath(), "acme_manual.csv")
	require.NoError(t, os.WriteFile(manual, []byte("sku,competitor_price\n"), 0644))
	_, err := s.Save(ctx, "acme", []byte("sku,competitor_price\n"), nil)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(manual, future, future))

	latest, err := s.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme_manual.csv", latest.Key)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	for i := 0; i < 4; i++ {
		_, err := s.Save(ctx, "acme", []byte("sku,competitor_price\n"), &Metadata{Competitor: "acme"})
		require.NoError(t, err)
		clock = clock.Add(time.Minute)
	}

	removed, err := s.Prune(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	files, err := s.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "acme_2026-03-01_08-03-00.csv", files[0].Key)

	metas, err := filepath.Glob(filepath.Join(s.BasePath(), "*.meta"))
	require.NoError(t, err)
	assert.Len(t, metas, 1)
}
