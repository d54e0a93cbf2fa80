// Package sweepers runs periodic background passes between cron runs
package sweepers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// loop is the ticker shared by the sweepers
type loop struct {
	name     string
	logger   *zerolog.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func newLoop(name string, logger *zerolog.Logger, interval time.Duration) *loop {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("sweeper", name).Logger()
	return &loop{name: name, logger: &l, interval: interval, stopChan: make(chan struct{})}
}

// run blocks until ctx is cancelled or stop is called. A non-positive
// interval disables the loop.
func (l *loop) run(ctx context.Context, sweep func(context.Context)) {
	if l.interval <= 0 {
		l.logger.Info().Msg("Sweeper disabled")
		return
	}
	l.logger.Info().
		Dur("interval", l.interval).
		Msg("Starting sweeper")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("Sweeper stopping (context cancelled)")
			return
		case <-l.stopChan:
			l.logger.Info().Msg("Sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func (l *loop) stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}
