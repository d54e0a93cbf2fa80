package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/settings"
	"github.com/artpricematcher/price-matcher/internal/storage"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrCompetitorNotFound),
		errors.Is(err, types.ErrProductNotFound),
		errors.Is(err, types.ErrDiscountNotFound),
		errors.Is(err, storage.ErrFeedNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrRunInProgress),
		errors.Is(err, types.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidName),
		errors.Is(err, compare.ErrNoFeed),
		errors.Is(err, feeds.ErrNoURL):
		return http.StatusBadRequest
	case errors.Is(err, csv.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidToken):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	c.JSON(statusFor(err), resp)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
