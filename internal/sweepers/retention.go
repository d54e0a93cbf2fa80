package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/jobs"
)

// Pruner runs one retention pass
type Pruner interface {
	Run(ctx context.Context) (*jobs.RetentionResult, error)
}

// RetentionSweeper applies the retention limits on an interval
type RetentionSweeper struct {
	*loop
	pruner Pruner
}

// NewRetentionSweeper creates a retention sweeper
func NewRetentionSweeper(pruner Pruner, logger *zerolog.Logger, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{loop: newLoop("retention", logger, interval), pruner: pruner}
}

func (s *RetentionSweeper) Start(ctx context.Context) { s.run(ctx, s.Sweep) }

func (s *RetentionSweeper) Stop() { s.stop() }

// Sweep runs one pass; the job logs what it removed
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	if _, err := s.pruner.Run(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Retention pass failed")
	}
}
