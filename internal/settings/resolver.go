package settings

import (
	"context"
	"fmt"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// ConfigReader reads the global key/value config table
type ConfigReader interface {
	GetConfig(ctx context.Context) (map[string]string, error)
}

// CompetitorReader loads a competitor by id
type CompetitorReader interface {
	GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error)
}

// Resolver merges global config with competitor overrides. It never writes.
type Resolver struct {
	config      ConfigReader
	competitors CompetitorReader
}

// NewResolver creates a settings resolver
func NewResolver(config ConfigReader, competitors CompetitorReader) *Resolver {
	return &Resolver{config: config, competitors: competitors}
}

// Resolve returns the effective settings for a competitor id
func (r *Resolver) Resolve(ctx context.Context, competitorID int64) (Settings, error) {
	competitor, err := r.competitors.GetCompetitor(ctx, competitorID)
	if err != nil {
		return Settings{}, fmt.Errorf("load competitor %d: %w", competitorID, err)
	}
	return r.ResolveFor(ctx, competitor)
}

// ResolveFor returns the effective settings for an already loaded competitor.
// A nil competitor yields the global settings.
func (r *Resolver) ResolveFor(ctx context.Context, competitor *types.Competitor) (Settings, error) {
	values, err := r.config.GetConfig(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load config: %w", err)
	}
	return Merge(values, competitor), nil
}

// Global returns the typed global config
func (r *Resolver) Global(ctx context.Context) (Global, error) {
	values, err := r.config.GetConfig(ctx)
	if err != nil {
		return Global{}, fmt.Errorf("load config: %w", err)
	}
	return ParseGlobal(values), nil
}
