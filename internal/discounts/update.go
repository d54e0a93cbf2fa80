package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/artpricematcher/price-matcher/internal/pricing"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/telemetry"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// UpdateRequest selects the competitor whose staged matches are promoted.
// CompetitorID wins over CompetitorName.
type UpdateRequest struct {
	CompetitorID   int64
	CompetitorName string
	Initiator      types.Initiator
	// SkipClean suppresses the pre-update cleanup, used when the caller
	// has already cleaned
	SkipClean bool
}

// UpdateResult counts the outcome of one update run
type UpdateResult struct {
	Competitor       string        `json:"competitor"`
	TotalChecked     int           `json:"totalChecked"`
	Updated          int           `json:"updated"`
	Skipped          int           `json:"skipped"`
	Failed           int           `json:"failed"`
	CleanedDiscounts int           `json:"cleanedDiscounts"`
	ExecutionTime    time.Duration `json:"executionTime"`
}

// UpdatePrices promotes up to UpdateBatchLimit staged matches of one
// competitor into specific prices. Row failures are counted and the run
// continues; setup failures abort.
func (s *Service) UpdatePrices(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "discounts.UpdatePrices")
	defer span.End()

	res, err := s.updatePrices(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		stats.RunFailed(types.OperationUpdate)
		s.logger.Error().Err(err).
			Int64("competitor_id", req.CompetitorID).
			Str("competitor", req.CompetitorName).
			Msg("Price update aborted")
		return res, err
	}
	span.SetAttributes(
		attribute.Int("rows.checked", res.TotalChecked),
		attribute.Int("rows.updated", res.Updated),
	)
	return res, nil
}

func (s *Service) competitorID(ctx context.Context, req UpdateRequest) (int64, error) {
	if req.CompetitorID != 0 {
		return req.CompetitorID, nil
	}
	if req.CompetitorName == "" {
		return 0, fmt.Errorf("%w: no id or name given", types.ErrCompetitorNotFound)
	}
	c, err := s.deps.Competitors.GetCompetitorByName(ctx, req.CompetitorName)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (s *Service) updatePrices(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	start := s.now()
	res := &UpdateResult{}

	if !req.SkipClean {
		global, err := s.deps.Settings.Global(ctx)
		if err != nil {
			return nil, err
		}
		if global.CleanExpiredDiscounts {
			cleaned, err := s.CleanExpired(ctx, req.Initiator)
			if err != nil {
				return nil, err
			}
			res.CleanedDiscounts = cleaned.Total
		}
	}

	id, err := s.competitorID(ctx, req)
	if err != nil {
		return nil, err
	}

	release, err := s.deps.Locker.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	competitor, err := s.deps.Competitors.GetCompetitor(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Competitor = competitor.Name
	if !competitor.Active {
		s.logger.Info().Str("competitor", competitor.Name).Msg("Competitor inactive, skipping price update")
		return res, nil
	}

	cfg, err := s.deps.Settings.ResolveFor(ctx, competitor)
	if err != nil {
		return nil, err
	}

	batch, products, err := s.loadBatch(ctx, competitor.ID)
	if err != nil {
		return nil, err
	}
	res.TotalChecked = len(batch)

	log := s.logger.With().Str("competitor", competitor.Name).Logger()
	log.Info().
		Int("candidates", len(batch)).
		Str("strategy", string(cfg.Strategy)).
		Msg("Starting price update")

	for i := range batch {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		m := &batch[i]
		product, ok := products[m.ProductID]
		if !ok {
			res.Failed++
			log.Error().Int64("product_id", m.ProductID).Msg("Product could not be loaded")
			continue
		}

		switch s.applyMatch(ctx, competitor, cfg, m, &product, &log) {
		case applyUpdated:
			res.Updated++
			stats.DiscountApplied(competitor.Name)
		case applySkipped:
			res.Skipped++
		case applyFailed:
			res.Failed++
		}
	}

	res.ExecutionTime = s.now().Sub(start)
	s.deps.Recorder.RecordQuietly(ctx, types.OperationRecord{
		CompetitorID:  &competitor.ID,
		Operation:     types.OperationUpdate,
		TotalProducts: res.TotalChecked,
		SuccessCount:  res.Updated,
		ErrorCount:    res.Failed,
		SkippedCount:  res.Skipped,
		ExecutionTime: res.ExecutionTime,
		InitiatedBy:   req.Initiator,
	})

	log.Info().
		Int("checked", res.TotalChecked).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", res.ExecutionTime).
		Msg("Price update finished")
	return res, nil
}

// loadBatch returns the staged rows whose product is still active. Rows of
// unknown products stay in the batch and fail on load.
func (s *Service) loadBatch(ctx context.Context, competitorID int64) ([]types.PriceMatch, map[int64]types.Product, error) {
	staged, err := s.deps.Matches.ListMatchesForUpdate(ctx, competitorID, UpdateBatchLimit)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, 0, len(staged))
	for _, m := range staged {
		ids = append(ids, m.ProductID)
	}
	products, err := s.deps.Products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	batch := staged[:0]
	for _, m := range staged {
		if p, ok := products[m.ProductID]; ok && !p.Active {
			continue
		}
		batch = append(batch, m)
	}
	return batch, products, nil
}

type applyOutcome int

const (
	applyUpdated applyOutcome = iota
	applySkipped
	applyFailed
)

func (s *Service) applyMatch(ctx context.Context, competitor *types.Competitor, cfg settings.Settings, m *types.PriceMatch, product *types.Product, log *zerolog.Logger) applyOutcome {
	plog := log.With().Int64("product_id", m.ProductID).Logger()

	if reason, ok := pricing.ValidateForUpdate(m, cfg); !ok {
		plog.Debug().
			Str("reason", string(reason)).
			Float64("discount_percent", m.DiscountPercent).
			Float64("new_margin", m.NewMargin).
			Msg("Staged match rejected")
		if err := s.deps.Matches.DeleteMatch(ctx, m.ProductID, competitor.ID); err != nil {
			plog.Error().Err(err).Msg("Failed to remove rejected match")
		}
		return applySkipped
	}

	from := s.now()
	to := from.AddDate(0, 0, cfg.DiscountDaysValid)

	specificPriceID, err := s.upsertSpecificPrice(ctx, m.ProductID, m.NewPrice, from, to, cfg.CustomerGroups)
	if err != nil {
		plog.Error().Err(err).Msg("Failed to write specific price")
		return applyFailed
	}

	tracked := &types.ActiveDiscount{
		ProductID:       m.ProductID,
		CompetitorID:    competitor.ID,
		SpecificPriceID: specificPriceID,
		RegularPrice:    product.Price,
		DiscountPrice:   m.NewPrice,
		CompetitorPrice: m.CompetitorPrice,
		DiscountPercent: m.DiscountPercent,
		MarginPercent:   m.NewMargin,
		DateExpiration:  to,
	}
	if err := s.deps.Tracking.UpsertActiveDiscount(ctx, tracked); err != nil {
		plog.Error().Err(err).Msg("Failed to track discount")
		return applyFailed
	}

	if err := s.deps.Matches.DeleteMatch(ctx, m.ProductID, competitor.ID); err != nil {
		plog.Error().Err(err).Msg("Failed to remove promoted match")
		return applyFailed
	}

	plog.Info().
		Float64("regular_price", product.Price).
		Float64("discount_price", m.NewPrice).
		Float64("discount_percent", m.DiscountPercent).
		Time("expires", to).
		Msg("Discount applied")
	return applyUpdated
}

// upsertSpecificPrice refreshes the product's existing specific price or
// creates one per customer group, returning the id to track
func (s *Service) upsertSpecificPrice(ctx context.Context, productID int64, price float64, from, to time.Time, groups []int64) (int64, error) {
	existing, found, err := s.deps.SpecificPrices.FindSpecificPrice(ctx, productID)
	if err != nil {
		return 0, err
	}
	if found {
		if err := s.deps.SpecificPrices.UpdateSpecificPrice(ctx, existing.ID, price, from, to); err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	var first int64
	for _, group := range groups {
		sp := &types.SpecificPrice{
			ProductID: productID,
			GroupID:   group,
			Price:     price,
			From:      from,
			To:        to,
		}
		if err := s.deps.SpecificPrices.CreateSpecificPrice(ctx, sp); err != nil {
			return 0, err
		}
		if first == 0 {
			first = sp.ID
		}
	}
	return first, nil
}

// CompetitorUpdate is one entry of an UpdateAll run
type CompetitorUpdate struct {
	CompetitorID int64         `json:"competitorId"`
	Name         string        `json:"name"`
	Result       *UpdateResult `json:"result,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// UpdateAllResult aggregates an update over every scheduled competitor
type UpdateAllResult struct {
	Competitors      []CompetitorUpdate `json:"competitors"`
	TotalCompetitors int                `json:"totalCompetitors"`
	Succeeded        int                `json:"succeeded"`
	TotalChecked     int                `json:"totalChecked"`
	Updated          int                `json:"updated"`
	Skipped          int                `json:"skipped"`
	Failed           int                `json:"failed"`
	CleanedDiscounts int                `json:"cleanedDiscounts"`
	ExecutionTime    time.Duration      `json:"executionTime"`
}

// UpdateAll cleans expired discounts once, then updates every active
// competitor with cron updates enabled. A failing competitor is reported in
// its entry and the batch continues.
func (s *Service) UpdateAll(ctx context.Context, initiator types.Initiator) (*UpdateAllResult, error) {
	start := s.now()
	out := &UpdateAllResult{}

	cleaned, err := s.CleanExpired(ctx, initiator)
	if err != nil {
		return nil, err
	}
	out.CleanedDiscounts = cleaned.Total

	competitors, err := s.deps.Competitors.ListCompetitors(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range competitors {
		if !c.Active || !c.CronUpdate {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out.TotalCompetitors++

		entry := CompetitorUpdate{CompetitorID: c.ID, Name: c.Name}
		res, err := s.UpdatePrices(ctx, UpdateRequest{CompetitorID: c.ID, Initiator: initiator, SkipClean: true})
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Result = res
			out.Succeeded++
			out.TotalChecked += res.TotalChecked
			out.Updated += res.Updated
			out.Skipped += res.Skipped
			out.Failed += res.Failed
		}
		out.Competitors = append(out.Competitors, entry)
	}

	out.ExecutionTime = s.now().Sub(start)
	s.logger.Info().
		Int("competitors", out.TotalCompetitors).
		Int("succeeded", out.Succeeded).
		Int("updated", out.Updated).
		Msg("Update of all competitors finished")
	return out, nil
}
