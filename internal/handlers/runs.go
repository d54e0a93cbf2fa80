package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Comparer runs comparisons and lists staged differences
type Comparer interface {
	Run(ctx context.Context, req compare.RunRequest) (*compare.Stats, error)
	PriceDifferences(ctx context.Context, competitorID int64) ([]types.PriceMatch, error)
}

// Updater promotes staged matches and cleans expired discounts
type Updater interface {
	UpdatePrices(ctx context.Context, req discounts.UpdateRequest) (*discounts.UpdateResult, error)
	UpdateAll(ctx context.Context, initiator types.Initiator) (*discounts.UpdateAllResult, error)
	CleanExpired(ctx context.Context, initiator types.Initiator) (*discounts.CleanResult, error)
}

// SourceSelector picks the feed source of a competitor
type SourceSelector interface {
	SourceFor(competitor string) (feeds.Source, error)
}

// RunHandler triggers compare, update and clean runs
type RunHandler struct {
	competitors CompetitorService
	comparer    Comparer
	updater     Updater
	sources     SourceSelector
	logger      *zerolog.Logger
}

// NewRunHandler creates a run handler
func NewRunHandler(cs CompetitorService, cmp Comparer, upd Updater, sources SourceSelector, logger *zerolog.Logger) *RunHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RunHandler{competitors: cs, comparer: cmp, updater: upd, sources: sources, logger: logger}
}

// Compare fetches the competitor's feed through its configured source and
// compares it against the catalog
// @Summary Compare a competitor feed
// @Tags runs
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} compare.Stats
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Run in progress"
// @Router /internal/competitors/{id}/compare [post]
func (h *RunHandler) Compare(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	comp, err := h.competitors.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	src, err := h.sources.SourceFor(comp.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.comparer.Run(ctx, compare.RunRequest{
		CompetitorID: id,
		Source:       src,
		Initiator:    types.InitiatorManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Update applies the staged matches of one competitor
// @Summary Update prices for a competitor
// @Tags runs
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} discounts.UpdateResult
// @Failure 409 {object} ErrorResponse "Run in progress"
// @Router /internal/competitors/{id}/update [post]
func (h *RunHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.updater.UpdatePrices(c.Request.Context(), discounts.UpdateRequest{
		CompetitorID: id,
		Initiator:    types.InitiatorManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateAll applies staged matches for every cron-enabled competitor
// @Summary Update prices for all competitors
// @Tags runs
// @Produce json
// @Success 200 {object} discounts.UpdateAllResult
// @Router /internal/update-all [post]
func (h *RunHandler) UpdateAll(c *gin.Context) {
	res, err := h.updater.UpdateAll(c.Request.Context(), types.InitiatorManual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Clean removes expired discounts
// @Summary Clean expired discounts
// @Tags discounts
// @Produce json
// @Success 200 {object} discounts.CleanResult
// @Router /internal/discounts/clean [post]
func (h *RunHandler) Clean(c *gin.Context) {
	res, err := h.updater.CleanExpired(c.Request.Context(), types.InitiatorManual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
