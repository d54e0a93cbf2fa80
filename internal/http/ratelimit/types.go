package ratelimit

import (
	"golang.org/x/time/rate"
)

// Config holds outbound throttling and retry settings
type Config struct {
	RequestsPerSecond int `json:"requestsPerSecond"`
	MaxRetries        int `json:"maxRetries"`
	InitialBackoffMs  int `json:"initialBackoffMs"`
	MaxBackoffMs      int `json:"maxBackoffMs"`
}

// DefaultConfig returns the default rate limit configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		MaxRetries:        3,
		InitialBackoffMs:  100,
		MaxBackoffMs:      30000,
	}
}

// Normalize fills zero or negative fields from DefaultConfig
func (c Config) Normalize() Config {
	d := DefaultConfig()
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.InitialBackoffMs <= 0 {
		c.InitialBackoffMs = d.InitialBackoffMs
	}
	if c.MaxBackoffMs <= 0 {
		c.MaxBackoffMs = d.MaxBackoffMs
	}
	return c
}

// NewLimiter builds a token bucket allowing RequestsPerSecond with a burst of one
func NewLimiter(c Config) *rate.Limiter {
	c = c.Normalize()
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
}
