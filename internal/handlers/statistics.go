package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artpricematcher/price-matcher/internal/types"
)

// StatisticsReader aggregates operation statistics
type StatisticsReader interface {
	Summary(ctx context.Context, days int) ([]types.OperationSummary, error)
	Recent(ctx context.Context, limit int) ([]types.OperationRecord, error)
}

// StatisticsHandler serves operation statistics
type StatisticsHandler struct {
	stats StatisticsReader
}

// NewStatisticsHandler creates a statistics handler
func NewStatisticsHandler(stats StatisticsReader) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// SummaryRequest holds the summary window
type SummaryRequest struct {
	Days int `form:"days" json:"days" binding:"min=0,max=365" jsonschema:"minimum=1,maximum=365"`
}

// SummaryResponse wraps the per operation and competitor aggregates
type SummaryResponse struct {
	Days       int                      `json:"days"`
	Operations []types.OperationSummary `json:"operations" jsonschema:"required"`
}

// RecentRequest holds the number of rows to return
type RecentRequest struct {
	Limit int `form:"limit" json:"limit" binding:"min=0,max=500" jsonschema:"minimum=1,maximum=500"`
}

// RecentResponse wraps the latest statistics rows
type RecentResponse struct {
	Operations []types.OperationRecord `json:"operations" jsonschema:"required"`
}

// Summary aggregates statistics over the last N days
// @Summary Operation statistics summary
// @Tags statistics
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} SummaryResponse
// @Router /internal/statistics/summary [get]
func (h *StatisticsHandler) Summary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Days == 0 {
		req.Days = 30
	}
	rows, err := h.stats.Summary(c.Request.Context(), req.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []types.OperationSummary{}
	}
	c.JSON(http.StatusOK, SummaryResponse{Days: req.Days, Operations: rows})
}

// Recent lists the latest statistics rows
// @Summary Recent operations
// @Tags statistics
// @Produce json
// @Param limit query int false "Rows" default(50)
// @Success 200 {object} RecentResponse
// @Router /internal/statistics/recent [get]
func (h *StatisticsHandler) Recent(c *gin.Context) {
	var req RecentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	rows, err := h.stats.Recent(c.Request.Context(), req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []types.OperationRecord{}
	}
	c.JSON(http.StatusOK, RecentResponse{Operations: rows})
}
