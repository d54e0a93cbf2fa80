package compare

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/exclusion"
	"github.com/artpricematcher/price-matcher/internal/pricing"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/stats"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Outcome classifies a processed feed row
type Outcome string

const (
	OutcomeNotFound Outcome = stats.OutcomeNotFound
	OutcomeSkipped  Outcome = stats.OutcomeSkipped
	OutcomeMatched  Outcome = stats.OutcomeMatched
)

// Row level reasons besides the exclusion and pricing reasons
const (
	ReasonInvalidRow      = "invalid_row"
	ReasonNoMatch         = "no_match"
	ReasonMatchError      = "match_error"
	ReasonProductLoad     = "product_load_failed"
	ReasonTaxRate         = "tax_rate_failed"
	ReasonPersistFailed   = "persist_failed"
	ReasonExcludedPattern = string(exclusion.ReasonExcludedReference)
)

// RowResult is the decision taken for one feed row
type RowResult struct {
	Row       types.FeedRow     `json:"row"`
	Outcome   Outcome           `json:"outcome"`
	Reason    string            `json:"reason,omitempty"`
	ProductID int64             `json:"productId,omitempty"`
	Decision  *pricing.Decision `json:"decision,omitempty"`
}

type rowContext struct {
	competitor *types.Competitor
	settings   settings.Settings
	filter     *exclusion.Filter
	priceFile  string
	persist    bool
	logger     *zerolog.Logger
}

func (p *Pipeline) processRow(ctx context.Context, rc *rowContext, row types.FeedRow) RowResult {
	res := RowResult{Row: row, Outcome: OutcomeNotFound}
	log := rc.logger.With().Int("row", row.RowNumber).Str("sku", row.SKU).Str("ean", row.EAN).Logger()

	if (row.SKU == "" && row.EAN == "") || row.PriceErr != nil || row.CompetitorPrice <= 0 {
		res.Reason = ReasonInvalidRow
		log.Debug().Msg("Row without identifier or valid price")
		return res
	}

	if rc.filter.ReferenceExcluded(row.SKU) {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonExcludedPattern
		log.Debug().Msg("Reference excluded by pattern")
		return res
	}

	match, found, err := p.matcher.Match(ctx, row.SKU, row.EAN)
	if err != nil {
		res.Reason = ReasonMatchError
		log.Warn().Err(err).Msg("Product lookup failed")
		return res
	}
	if !found {
		res.Reason = ReasonNoMatch
		return res
	}
	res.ProductID = match.ProductID

	product, err := p.deps.Catalog.GetProduct(ctx, match.ProductID)
	if err != nil {
		res.Reason = ReasonProductLoad
		log.Warn().Err(err).Int64("product_id", match.ProductID).Msg("Failed to load matched product")
		return res
	}
	log = log.With().Int64("product_id", product.ID).Logger()

	if reason, skip := rc.filter.ShouldSkip(product); skip {
		res.Outcome = OutcomeSkipped
		res.Reason = string(reason)
		log.Debug().Str("reason", res.Reason).Msg("Product excluded")
		p.purge(ctx, rc, product.ID, &log)
		return res
	}

	taxRate, err := p.deps.Catalog.GetTaxRate(ctx, product.ID)
	if err != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonTaxRate
		log.Error().Err(err).Msg("Failed to load tax rate")
		return res
	}

	decision := pricing.Price(pricing.Input{
		CurrentPrice:       product.Price,
		WholesalePrice:     product.WholesalePrice,
		CompetitorPriceRaw: row.CompetitorPrice,
		TaxRatePercent:     taxRate,
	}, rc.settings)
	res.Decision = &decision

	if !decision.Apply {
		res.Outcome = OutcomeSkipped
		res.Reason = string(decision.Reason)
		log.Debug().
			Str("reason", res.Reason).
			Float64("current_price", product.Price).
			Float64("competitor_price", decision.CompetitorPriceExclTax).
			Msg("Price not applied")
		p.purge(ctx, rc, product.ID, &log)
		return res
	}

	if rc.persist {
		m := &types.PriceMatch{
			ProductID:       product.ID,
			CompetitorID:    rc.competitor.ID,
			ManufacturerID:  product.ManufacturerID,
			Reference:       product.Reference,
			EAN13:           product.EAN13,
			WholesalePrice:  product.WholesalePrice,
			CurrentPrice:    product.Price,
			CurrentMargin:   decision.CurrentMargin,
			CompetitorPrice: decision.CompetitorPriceExclTax,
			NewPrice:        decision.NewPrice,
			NewMargin:       decision.NewMargin,
			DiscountPercent: decision.DiscountPercent,
			PriceFile:       rc.priceFile,
			URL:             row.URL,
		}
		if err := p.deps.Matches.UpsertMatch(ctx, m); err != nil {
			res.Outcome = OutcomeSkipped
			res.Reason = ReasonPersistFailed
			log.Error().Err(err).Msg("Failed to stage price match")
			return res
		}
	}

	res.Outcome = OutcomeMatched
	log.Debug().
		Float64("new_price", decision.NewPrice).
		Float64("discount_percent", decision.DiscountPercent).
		Bool("capped", decision.Capped).
		Msg("Price match staged")
	return res
}

// purge removes a staged candidate that no longer qualifies
func (p *Pipeline) purge(ctx context.Context, rc *rowContext, productID int64, log *zerolog.Logger) {
	if !rc.persist {
		return
	}
	if err := p.deps.Matches.DeleteMatch(ctx, productID, rc.competitor.ID); err != nil {
		log.Error().Err(err).Msg("Failed to remove staged price match")
	}
}
