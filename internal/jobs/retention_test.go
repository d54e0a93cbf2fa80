package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/types"
)

type fakeStats struct {
	cutoff time.Time
	n      int
}

func (f *fakeStats) DeleteOperationsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return f.n, nil
}

type fakeFeeds struct {
	pruned map[string]int
	fail   string
}

func (f *fakeFeeds) Prune(ctx context.Context, competitor string, keep int) (int, error) {
	if competitor == f.fail {
		return 0, errors.New("permission denied")
	}
	f.pruned[competitor] = keep
	return 2, nil
}

type fakeCompetitors []types.Competitor

func (f fakeCompetitors) ListCompetitors(ctx context.Context) ([]types.Competitor, error) {
	return f, nil
}

func TestRetentionRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	stats := &fakeStats{n: 7}
	feeds := &fakeFeeds{pruned: map[string]int{}, fail: "Broken"}
	comps := fakeCompetitors{{Name: "Rival"}, {Name: "Broken"}, {Name: "Other"}}

	r := NewRetention(stats, feeds, comps, config.RetentionConfig{KeepFeeds: 5, StatisticsDays: 90}, nil)
	r.now = func() time.Time { return now }

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Statistics)
	assert.Equal(t, 4, res.Feeds)
	assert.Equal(t, now.AddDate(0, 0, -90), stats.cutoff)
	assert.Equal(t, map[string]int{"Rival": 5, "Other": 5}, feeds.pruned)
}

func TestRetentionDisabledLimits(t *testing.T) {
	stats := &fakeStats{}
	feeds := &fakeFeeds{pruned: map[string]int{}}

	r := NewRetention(stats, feeds, fakeCompetitors{{Name: "Rival"}}, config.RetentionConfig{}, nil)
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &RetentionResult{}, res)
	assert.True(t, stats.cutoff.IsZero())
	assert.Empty(t, feeds.pruned)
}
