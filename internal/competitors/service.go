// Package competitors manages the tracked price sources
package competitors

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/types"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Store persists competitors
type Store interface {
	ListCompetitors(ctx context.Context) ([]types.Competitor, error)
	GetCompetitor(ctx context.Context, id int64) (*types.Competitor, error)
	GetCompetitorByName(ctx context.Context, name string) (*types.Competitor, error)
	CreateCompetitor(ctx context.Context, c *types.Competitor) error
	UpdateCompetitor(ctx context.Context, c *types.Competitor) error
	ToggleCompetitor(ctx context.Context, id int64) (bool, error)
	UpdateCompetitorSettings(ctx context.Context, c *types.Competitor) error
	DeleteCompetitor(ctx context.Context, id int64) error
}

// Details are the editable non-pricing fields
type Details struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	CronDownload bool   `json:"cronDownload"`
	CronCompare  bool   `json:"cronCompare"`
	CronUpdate   bool   `json:"cronUpdate"`
}

// Overrides are the per-competitor discount settings. Nil fields fall back
// to the global value; with Enabled unset every field is cleared.
type Overrides struct {
	Enabled            bool     `json:"enabled"`
	DiscountStrategy   *string  `json:"discountStrategy,omitempty" jsonschema:"enum=margin,enum=discount,enum=both"`
	MinMarginPercent   *float64 `json:"minMarginPercent,omitempty" jsonschema:"minimum=0,maximum=100"`
	MaxDiscountPercent *float64 `json:"maxDiscountPercent,omitempty" jsonschema:"minimum=0,maximum=100"`
	PriceUnderbid      *float64 `json:"priceUnderbid,omitempty" jsonschema:"minimum=0"`
	MinPriceThreshold  *float64 `json:"minPriceThreshold,omitempty" jsonschema:"minimum=0"`
	DiscountDaysValid  *int     `json:"discountDaysValid,omitempty" jsonschema:"minimum=1"`
}

// Validate applies the same ranges as the global settings
func (o Overrides) Validate() error {
	if !o.Enabled {
		return nil
	}
	percent := func(field string, v *float64) error {
		if v != nil && (*v < 0 || *v > 100) {
			return &settings.ValidationError{Field: field, Message: "must be between 0 and 100"}
		}
		return nil
	}
	if err := percent(settings.KeyMinMarginPercent, o.MinMarginPercent); err != nil {
		return err
	}
	if err := percent(settings.KeyMaxDiscountPercent, o.MaxDiscountPercent); err != nil {
		return err
	}
	switch {
	case o.DiscountStrategy != nil && !types.DiscountStrategy(*o.DiscountStrategy).Valid():
		return &settings.ValidationError{Field: settings.KeyDiscountStrategy, Message: "must be margin, discount or both"}
	case o.PriceUnderbid != nil && *o.PriceUnderbid < 0:
		return &settings.ValidationError{Field: settings.KeyPriceUnderbid, Message: "cannot be negative"}
	case o.MinPriceThreshold != nil && *o.MinPriceThreshold < 0:
		return &settings.ValidationError{Field: settings.KeyMinPriceThreshold, Message: "cannot be negative"}
	case o.DiscountDaysValid != nil && *o.DiscountDaysValid < 1:
		return &settings.ValidationError{Field: settings.KeyDiscountDaysValid, Message: "must be at least 1 day"}
	}
	return nil
}

// Service is the competitor CRUD layer
type Service struct {
	store  Store
	logger *zerolog.Logger
}

// NewService creates a competitor service
func NewService(store Store, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{store: store, logger: logger}
}

// ValidateName checks the competitor naming rule
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	return nil
}

// Add creates an active competitor
func (s *Service) Add(ctx context.Context, d Details) (*types.Competitor, error) {
	d.Name = strings.TrimSpace(d.Name)
	if err := ValidateName(d.Name); err != nil {
		return nil, err
	}

	_, err := s.store.GetCompetitorByName(ctx, d.Name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateName, d.Name)
	case !errors.Is(err, types.ErrCompetitorNotFound):
		return nil, err
	}

	c := &types.Competitor{
		Name:         d.Name,
		URL:          strings.TrimSpace(d.URL),
		Active:       true,
		CronDownload: d.CronDownload,
		CronCompare:  d.CronCompare,
		CronUpdate:   d.CronUpdate,
	}
	if err := s.store.CreateCompetitor(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("competitor_id", c.ID).Str("competitor", c.Name).Msg("Competitor added")
	return c, nil
}

// Update changes url and cron flags. The name is fixed once created.
func (s *Service) Update(ctx context.Context, id int64, d Details) (*types.Competitor, error) {
	c, err := s.store.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	c.URL = strings.TrimSpace(d.URL)
	c.CronDownload = d.CronDownload
	c.CronCompare = d.CronCompare
	c.CronUpdate = d.CronUpdate
	if err := s.store.UpdateCompetitor(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Toggle flips the active flag and returns the new state
func (s *Service) Toggle(ctx context.Context, id int64) (bool, error) {
	active, err := s.store.ToggleCompetitor(ctx, id)
	if err != nil {
		return false, err
	}
	s.logger.Info().Int64("competitor_id", id).Bool("active", active).Msg("Competitor toggled")
	return active, nil
}

// Delete removes a competitor with its staged matches and tracked discounts
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCompetitor(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("competitor_id", id).Msg("Competitor deleted")
	return nil
}

// UpdateSettings stores the discount overrides of a competitor
func (s *Service) UpdateSettings(ctx context.Context, id int64, o Overrides) (*types.Competitor, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	c, err := s.store.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}

	c.OverrideDiscountSettings = o.Enabled
	if o.Enabled {
		c.DiscountStrategy = o.DiscountStrategy
		c.MinMarginPercent = o.MinMarginPercent
		c.MaxDiscountPercent = o.MaxDiscountPercent
		c.PriceUnderbid = o.PriceUnderbid
		c.MinPriceThreshold = o.MinPriceThreshold
		c.DiscountDaysValid = o.DiscountDaysValid
	} else {
		c.DiscountStrategy = nil
		c.MinMarginPercent = nil
		c.MaxDiscountPercent = nil
		c.PriceUnderbid = nil
		c.MinPriceThreshold = nil
		c.DiscountDaysValid = nil
	}

	if err := s.store.UpdateCompetitorSettings(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all competitors
func (s *Service) List(ctx context.Context) ([]types.Competitor, error) {
	return s.store.ListCompetitors(ctx)
}

// Get returns one competitor by id
func (s *Service) Get(ctx context.Context, id int64) (*types.Competitor, error) {
	return s.store.GetCompetitor(ctx, id)
}

// GetByName returns one competitor by name, ignoring case
func (s *Service) GetByName(ctx context.Context, name string) (*types.Competitor, error) {
	return s.store.GetCompetitorByName(ctx, name)
}
