package ratelimit

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// FetchRetryError is returned when a request fails or all attempts are used up
type FetchRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *FetchRetryError) Error() string {
	msg := "failed to fetch " + e.URL + " after " + strconv.Itoa(e.Attempts) + " attempts"
	if e.LastStatus != 0 {
		msg += " (HTTP " + strconv.Itoa(e.LastStatus) + ")"
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *FetchRetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus reports 429 and 5xx
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// Backoff returns InitialBackoff * 2^attempt capped at MaxBackoff, plus up to 25% jitter
func Backoff(attempt int, c Config) time.Duration {
	return backoff(attempt, 2, c)
}

// RateLimitBackoff honours a Retry-After header in seconds and otherwise
// backs off with a factor of 3
func RateLimitBackoff(attempt int, c Config, retryAfter string) time.Duration {
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds)*time.Second + time.Duration(rand.Int64N(int64(time.Second)))
	}
	return backoff(attempt, 3, c)
}

func backoff(attempt int, factor float64, c Config) time.Duration {
	delay := float64(c.InitialBackoffMs) * math.Pow(factor, float64(attempt))
	delay = math.Min(delay, float64(c.MaxBackoffMs))
	delay += rand.Float64() * 0.25 * delay
	return time.Duration(delay * float64(time.Millisecond))
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
