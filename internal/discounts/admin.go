package discounts

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/artpricematcher/price-matcher/internal/matching"
	"github.com/artpricematcher/price-matcher/internal/types"
)

const (
	DefaultPageSize   = 25
	maxPageSize       = 200
	DefaultExtendDays = 7
)

// Filter selects active discounts for listing
type Filter struct {
	CompetitorID *int64
	// Search matches product name or reference, ignoring case and accents
	Search string
	Page   int
	Limit  int
}

// Page is one page of enriched active discounts
type Page struct {
	Items []types.ActiveDiscountView `json:"items"`
	Total int                        `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// List returns tracked discounts ordered by expiration, soonest first
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > maxPageSize:
		f.Limit = maxPageSize
	}

	tracked, err := s.deps.Tracking.ListActiveDiscounts(ctx, f.CompetitorID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(tracked))
	for _, d := range tracked {
		ids = append(ids, d.ProductID)
	}
	products, err := s.deps.Products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	competitors, err := s.deps.Competitors.ListCompetitors(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(competitors))
	for _, c := range competitors {
		names[c.ID] = c.Name
	}

	now := s.now()
	search := matching.Fold(strings.TrimSpace(f.Search))
	views := make([]types.ActiveDiscountView, 0, len(tracked))
	for _, d := range tracked {
		v := types.ActiveDiscountView{
			ActiveDiscount: d,
			ProductName:    "Unknown Product",
			CompetitorName: names[d.CompetitorID],
			DaysLeft:       DaysLeft(d.DateExpiration, now),
		}
		if p, ok := products[d.ProductID]; ok {
			if p.Name != "" {
				v.ProductName = p.Name
			}
			v.Reference = p.Reference
		}
		if search != "" &&
			!strings.Contains(matching.Fold(v.ProductName), search) &&
			!strings.Contains(matching.Fold(v.Reference), search) {
			continue
		}
		views = append(views, v)
	}

	page := &Page{Total: len(views), Page: f.Page, Limit: f.Limit, Items: []types.ActiveDiscountView{}}
	offset := (f.Page - 1) * f.Limit
	if offset < len(views) {
		end := min(offset+f.Limit, len(views))
		page.Items = views[offset:end]
	}
	return page, nil
}

// DaysLeft counts whole days until expiration, 0 once expired
func DaysLeft(expiration, now time.Time) int {
	if !expiration.After(now) {
		return 0
	}
	return int(math.Floor(expiration.Sub(now).Hours() / 24))
}

// Remove deletes a tracked discount together with its specific price
func (s *Service) Remove(ctx context.Context, id int64) error {
	d, err := s.deps.Tracking.GetActiveDiscount(ctx, id)
	if err != nil {
		return err
	}
	if d.SpecificPriceID > 0 {
		if _, err := s.deps.SpecificPrices.DeleteSpecificPrices(ctx, []int64{d.SpecificPriceID}); err != nil {
			return err
		}
	}
	if _, err := s.deps.Tracking.DeleteActiveDiscounts(ctx, []int64{d.ID}); err != nil {
		return err
	}
	s.logger.Info().
		Int64("discount_id", d.ID).
		Int64("product_id", d.ProductID).
		Msg("Active discount removed")
	return nil
}

// Extend pushes a discount's expiration by days (DefaultExtendDays when not
// positive), counted from its current expiration or from now if that has
// passed. The new expiration is the end of that day in both tables.
func (s *Service) Extend(ctx context.Context, id int64, days int) (*types.ActiveDiscount, error) {
	if days <= 0 {
		days = DefaultExtendDays
	}
	d, err := s.deps.Tracking.GetActiveDiscount(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	base := d.DateExpiration.In(now.Location())
	if base.Before(now) {
		base = now
	}
	next := base.AddDate(0, 0, days)
	expiration := time.Date(next.Year(), next.Month(), next.Day(), 23, 59, 59, 0, now.Location())

	// shop price first; the tracking row never outlives it
	if d.SpecificPriceID > 0 {
		if err := s.deps.SpecificPrices.SetSpecificPriceExpiration(ctx, d.SpecificPriceID, expiration); err != nil {
			return nil, fmt.Errorf("discount %d: %w", d.ID, err)
		}
	}
	if err := s.deps.Tracking.SetActiveDiscountExpiration(ctx, d.ID, expiration); err != nil {
		return nil, err
	}
	d.DateExpiration = expiration

	s.logger.Info().
		Int64("discount_id", d.ID).
		Time("expires", expiration).
		Msg("Active discount extended")
	return d, nil
}
