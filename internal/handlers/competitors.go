package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artpricematcher/price-matcher/internal/competitors"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// CompetitorService is the competitor CRUD layer
type CompetitorService interface {
	List(ctx context.Context) ([]types.Competitor, error)
	Get(ctx context.Context, id int64) (*types.Competitor, error)
	Add(ctx context.Context, d competitors.Details) (*types.Competitor, error)
	Update(ctx context.Context, id int64, d competitors.Details) (*types.Competitor, error)
	Toggle(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	UpdateSettings(ctx context.Context, id int64, o competitors.Overrides) (*types.Competitor, error)
}

// CompetitorHandler handles competitor endpoints
type CompetitorHandler struct {
	svc CompetitorService
}

// NewCompetitorHandler creates a competitor handler
func NewCompetitorHandler(svc CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{svc: svc}
}

// ListCompetitorsResponse wraps the competitor list
type ListCompetitorsResponse struct {
	Competitors []types.Competitor `json:"competitors" jsonschema:"required"`
}

// ToggleResponse reports the new active state
type ToggleResponse struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}

// List returns every competitor
// @Summary List competitors
// @Tags competitors
// @Produce json
// @Success 200 {object} ListCompetitorsResponse
// @Router /internal/competitors [get]
func (h *CompetitorHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []types.Competitor{}
	}
	c.JSON(http.StatusOK, ListCompetitorsResponse{Competitors: list})
}

// Get returns one competitor
// @Summary Get a competitor
// @Tags competitors
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} types.Competitor
// @Failure 404 {object} ErrorResponse
// @Router /internal/competitors/{id} [get]
func (h *CompetitorHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	comp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// Create adds a competitor
// @Summary Add a competitor
// @Tags competitors
// @Accept json
// @Produce json
// @Param body body competitors.Details true "Competitor"
// @Success 201 {object} types.Competitor
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /internal/competitors [post]
func (h *CompetitorHandler) Create(c *gin.Context) {
	var req competitors.Details
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	comp, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

// Update changes the url and cron flags of a competitor
// @Summary Update a competitor
// @Tags competitors
// @Accept json
// @Produce json
// @Param id path int true "Competitor ID"
// @Param body body competitors.Details true "Competitor"
// @Success 200 {object} types.Competitor
// @Router /internal/competitors/{id} [put]
func (h *CompetitorHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req competitors.Details
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	comp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// Toggle flips the active flag
// @Summary Toggle a competitor
// @Tags competitors
// @Produce json
// @Param id path int true "Competitor ID"
// @Success 200 {object} ToggleResponse
// @Router /internal/competitors/{id}/toggle [post]
func (h *CompetitorHandler) Toggle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	active, err := h.svc.Toggle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{ID: id, Active: active})
}

// Delete removes a competitor
// @Summary Delete a competitor
// @Tags competitors
// @Param id path int true "Competitor ID"
// @Success 204
// @Router /internal/competitors/{id} [delete]
func (h *CompetitorHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSettings stores the discount overrides
// @Summary Save competitor discount overrides
// @Tags competitors
// @Accept json
// @Produce json
// @Param id path int true "Competitor ID"
// @Param body body competitors.Overrides true "Overrides"
// @Success 200 {object} types.Competitor
// @Failure 422 {object} ErrorResponse
// @Router /internal/competitors/{id}/settings [put]
func (h *CompetitorHandler) UpdateSettings(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req competitors.Overrides
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	comp, err := h.svc.UpdateSettings(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}
