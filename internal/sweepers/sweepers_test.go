package sweepers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/jobs"
	"github.com/artpricematcher/price-matcher/internal/types"
)

type fakeCleaner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCleaner) CleanExpired(ctx context.Context, initiator types.Initiator) (*discounts.CleanResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &discounts.CleanResult{Tracked: 1, Total: 1}, nil
}

func TestDiscountSweeperRunsUntilStopped(t *testing.T) {
	c := &fakeCleaner{}
	s := NewDiscountSweeper(c, nil, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestDiscountSweeperContextCancel(t *testing.T) {
	c := &fakeCleaner{err: errors.New("db down")}
	s := NewDiscountSweeper(c, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestDiscountSweeperDisabled(t *testing.T) {
	c := &fakeCleaner{}
	s := NewDiscountSweeper(c, nil, 0)
	s.Start(context.Background())
	assert.Zero(t, c.calls.Load())
}

type fakePruner struct{ calls atomic.Int32 }

func (f *fakePruner) Run(ctx context.Context) (*jobs.RetentionResult, error) {
	f.calls.Add(1)
	return &jobs.RetentionResult{Feeds: 1}, nil
}

func TestRetentionSweeper(t *testing.T) {
	p := &fakePruner{}
	s := NewRetentionSweeper(p, nil, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	<-done
}
