// Package jobs holds periodic housekeeping tasks
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// StatisticsPruner deletes old operation statistics
type StatisticsPruner interface {
	DeleteOperationsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// FeedPruner deletes all but the newest stored feeds of a competitor
type FeedPruner interface {
	Prune(ctx context.Context, competitor string, keep int) (int, error)
}

// CompetitorLister lists competitors
type CompetitorLister interface {
	ListCompetitors(ctx context.Context) ([]types.Competitor, error)
}

// RetentionResult counts what one pass removed
type RetentionResult struct {
	Statistics int `json:"statistics"`
	Feeds      int `json:"feeds"`
}

// Retention trims operation statistics and stored feed files
type Retention struct {
	stats       StatisticsPruner
	feeds       FeedPruner
	competitors CompetitorLister
	cfg         config.RetentionConfig
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewRetention creates the retention job
func NewRetention(stats StatisticsPruner, feeds FeedPruner, competitors CompetitorLister, cfg config.RetentionConfig, logger *zerolog.Logger) *Retention {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Retention{
		stats:       stats,
		feeds:       feeds,
		competitors: competitors,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run prunes statistics older than StatisticsDays and keeps the newest
// KeepFeeds files per competitor. A failing competitor is logged and skipped.
func (r *Retention) Run(ctx context.Context) (*RetentionResult, error) {
	res := &RetentionResult{}

	if r.cfg.StatisticsDays > 0 {
		cutoff := r.now().AddDate(0, 0, -r.cfg.StatisticsDays)
		n, err := r.stats.DeleteOperationsBefore(ctx, cutoff)
		if err != nil {
			return res, err
		}
		res.Statistics = n
	}

	if r.cfg.KeepFeeds > 0 {
		list, err := r.competitors.ListCompetitors(ctx)
		if err != nil {
			return res, fmt.Errorf("list competitors: %w", err)
		}
		for _, c := range list {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			n, err := r.feeds.Prune(ctx, c.Name, r.cfg.KeepFeeds)
			if err != nil {
				r.logger.Warn().Err(err).Str("competitor", c.Name).Msg("Failed to prune feeds")
				continue
			}
			res.Feeds += n
		}
	}

	if res.Statistics > 0 || res.Feeds > 0 {
		r.logger.Info().
			Int("statistics", res.Statistics).
			Int("feeds", res.Feeds).
			Msg("Retention pass removed old data")
	}
	return res, nil
}
