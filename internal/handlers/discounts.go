package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/report"
	"github.com/artpricematcher/price-matcher/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DiscountAdmin lists and edits tracked discounts
type DiscountAdmin interface {
	List(ctx context.Context, f discounts.Filter) (*discounts.Page, error)
	Remove(ctx context.Context, id int64) error
	Extend(ctx context.Context, id int64, days int) (*types.ActiveDiscount, error)
}

// DiscountHandler handles active discount and staged match endpoints
type DiscountHandler struct {
	admin    DiscountAdmin
	comparer Comparer
}

// NewDiscountHandler creates a discount handler
func NewDiscountHandler(admin DiscountAdmin, cmp Comparer) *DiscountHandler {
	return &DiscountHandler{admin: admin, comparer: cmp}
}

// ListDiscountsRequest holds the listing query parameters
type ListDiscountsRequest struct {
	CompetitorID int64  `form:"competitorId" json:"competitorId" binding:"min=0"`
	Search       string `form:"search" json:"search"`
	Page         int    `form:"page" json:"page" binding:"min=0" jsonschema:"minimum=1"`
	Limit        int    `form:"limit" json:"limit" binding:"min=0,max=200" jsonschema:"minimum=1,maximum=200"`
}

// ExtendRequest holds the number of days to add
type ExtendRequest struct {
	Days int `json:"days" binding:"min=0,max=365" jsonschema:"minimum=1,maximum=365"`
}

// PriceDifferencesResponse wraps the staged matches of a competitor
type PriceDifferencesResponse struct {
	Matches []types.PriceMatch `json:"matches" jsonschema:"required"`
}

// List returns a page of tracked discounts
// @Summary List active discounts
// @Tags discounts
// @Produce json
// @Param competitorId query int false "Filter by competitor"
// @Param search query string false "Product name or reference"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(25) maximum(200)
// @Success 200 {object} discounts.Page
// @Router /internal/discounts [get]
func (h *DiscountHandler) List(c *gin.Context) {
	var req ListDiscountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	f := discounts.Filter{Search: req.Search, Page: req.Page, Limit: req.Limit}
	if req.CompetitorID > 0 {
		f.CompetitorID = &req.CompetitorID
	}
	page, err := h.admin.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Extend pushes the expiration of a discount
// @Summary Extend an active discount
// @Tags discounts
// @Accept json
// @Produce json
// @Param id path int true "Discount ID"
// @Param body body ExtendRequest false "Days, 7 when omitted"
// @Success 200 {object} types.ActiveDiscount
// @Failure 404 {object} ErrorResponse
// @Router /internal/discounts/{id}/extend [post]
func (h *DiscountHandler) Extend(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ExtendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
	}
	d, err := h.admin.Extend(c.Request.Context(), id, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Remove deletes a discount and its specific price
// @Summary Remove an active discount
// @Tags discounts
// @Param id path int true "Discount ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /internal/discounts/{id} [delete]
func (h *DiscountHandler) Remove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.admin.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PriceDifferences lists the staged matches of a competitor
// @Summary List staged price differences
// @Tags matches
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} PriceDifferencesResponse
// @Router /internal/competitors/{id}/matches [get]
func (h *DiscountHandler) PriceDifferences(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := h.comparer.PriceDifferences(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []types.PriceMatch{}
	}
	c.JSON(http.StatusOK, PriceDifferencesResponse{Matches: rows})
}

// ExportMatches streams the staged matches as XLSX
// @Summary Export staged price differences
// @Tags matches
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Competitor ID"
// @Success 200 {file} file
// @Router /internal/competitors/{id}/matches/export [get]
func (h *DiscountHandler) ExportMatches(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	rows, err := h.comparer.PriceDifferences(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="matches_`+strconv.FormatInt(id, 10)+`.xlsx"`)
	if err := report.WriteMatches(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// ExportDiscounts streams every tracked discount as XLSX
// @Summary Export active discounts
// @Tags discounts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param competitorId query int false "Filter by competitor"
// @Success 200 {file} file
// @Router /internal/discounts/export [get]
func (h *DiscountHandler) ExportDiscounts(c *gin.Context) {
	var req ListDiscountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	f := discounts.Filter{Search: req.Search, Limit: 200}
	if req.CompetitorID > 0 {
		f.CompetitorID = &req.CompetitorID
	}

	var all []types.ActiveDiscountView
	for f.Page = 1; ; f.Page++ {
		page, err := h.admin.List(c.Request.Context(), f)
		if err != nil {
			respondError(c, err)
			return
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || len(all) >= page.Total {
			break
		}
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="active_discounts.xlsx"`)
	if err := report.WriteDiscounts(c.Writer, all); err != nil {
		_ = c.Error(err)
	}
}
