// Package scheduler triggers the cron cycle on a fixed schedule
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/runner"
)

// CronRunner runs one full cron cycle
type CronRunner interface {
	RunCron(ctx context.Context) (*runner.Report, error)
}

// Scheduler runs the cron cycle on cfg.Schedule
type Scheduler struct {
	cron    *cron.Cron
	runner  CronRunner
	cfg     config.CronConfig
	logger  *zerolog.Logger
	timeout time.Duration
	running bool
}

// New creates a scheduler. Overlapping runs are skipped.
func New(cfg config.CronConfig, r CronRunner, logger *zerolog.Logger) *Scheduler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		runner:  r,
		cfg:     cfg,
		logger:  logger,
		timeout: 2 * time.Hour,
	}
}

// Start registers the job and starts the cron loop. It is a no-op when cron
// is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("Scheduler disabled in configuration")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Str("schedule", s.cfg.Schedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// Next returns the next scheduled run, zero when not running
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.runner.RunCron(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled cron run failed")
		return
	}
	s.logger.Info().
		Int("competitors", len(report.Competitors)).
		Dur("duration", report.Duration).
		Msg("Scheduled cron run finished")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
