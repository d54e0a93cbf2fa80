package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// competitorLockClass namespaces the advisory locks taken per competitor.
// It occupies the top 16 bits of the bigint key, the id the lower 48.
const competitorLockClass int64 = 0x504d

const lockIDBits = 48

// competitorLockKey builds the single bigint advisory lock key for id
func competitorLockKey(id int64) (int64, error) {
	if id < 0 || id >= 1<<lockIDBits {
		return 0, fmt.Errorf("competitor id %d out of advisory lock range", id)
	}
	return competitorLockClass<<lockIDBits | id, nil
}

// ErrLockBusy is returned when another session holds the competitor lock.
// It matches types.ErrRunInProgress with errors.Is.
var ErrLockBusy = fmt.Errorf("advisory lock busy: %w", types.ErrRunInProgress)

// AcquireCompetitorLock takes a session advisory lock for competitorID on a
// dedicated connection. The returned release func unlocks and returns the
// connection to the pool; it must be called exactly once.
func AcquireCompetitorLock(ctx context.Context, pool *pgxpool.Pool, competitorID int64) (func(), error) {
	key, err := competitorLockKey(competitorID)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock: %w", err)
	}

	var locked bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, fmt.Errorf("competitor %d: %w", competitorID, ErrLockBusy)
	}

	release := func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(unlockCtx, `SELECT pg_advisory_unlock($1)`, key); err != nil {
			// Closing the session drops any lock it still holds
			conn.Conn().Close(unlockCtx)
		}
		conn.Release()
	}
	return release, nil
}

// Locker adapts AcquireCompetitorLock to the pipelines' locker interface
type Locker struct {
	pool *pgxpool.Pool
}

// NewLocker creates a competitor locker over pool
func NewLocker(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

// Acquire takes the run lock for competitorID
func (l *Locker) Acquire(ctx context.Context, competitorID int64) (func(), error) {
	return AcquireCompetitorLock(ctx, l.pool, competitorID)
}
