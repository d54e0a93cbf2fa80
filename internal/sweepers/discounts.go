package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Cleaner removes expired discounts
type Cleaner interface {
	CleanExpired(ctx context.Context, initiator types.Initiator) (*discounts.CleanResult, error)
}

// DiscountSweeper periodically removes expired discounts between cron runs
type DiscountSweeper struct {
	*loop
	cleaner Cleaner
}

// NewDiscountSweeper creates a sweeper running every interval
func NewDiscountSweeper(cleaner Cleaner, logger *zerolog.Logger, interval time.Duration) *DiscountSweeper {
	return &DiscountSweeper{loop: newLoop("discounts", logger, interval), cleaner: cleaner}
}

// Start blocks until ctx is cancelled or Stop is called
func (s *DiscountSweeper) Start(ctx context.Context) { s.run(ctx, s.Sweep) }

// Stop signals the sweeper to stop
func (s *DiscountSweeper) Stop() { s.stop() }

// Sweep runs one cleanup pass
func (s *DiscountSweeper) Sweep(ctx context.Context) {
	res, err := s.cleaner.CleanExpired(ctx, types.InitiatorCron)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clean expired discounts")
		return
	}
	if res.Total > 0 {
		s.logger.Info().
			Int("tracked", res.Tracked).
			Int("untracked", res.Untracked).
			Msg("Cleaned expired discounts")
	}
}
