package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/artpricematcher/price-matcher/internal/runner"
)

// CronRunner verifies cron tokens and runs the cron cycle
type CronRunner interface {
	VerifyToken(ctx context.Context, token string) error
	RunCron(ctx context.Context) (*runner.Report, error)
}

// CronHandler serves the token protected cron trigger
type CronHandler struct {
	runner CronRunner
	logger *zerolog.Logger
}

// NewCronHandler creates a cron handler
func NewCronHandler(r CronRunner, logger *zerolog.Logger) *CronHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CronHandler{runner: r, logger: logger}
}

// Run triggers the cron cycle and returns its plain text summary
// @Summary Run the cron cycle
// @Description Downloads, compares and updates every cron-enabled competitor, then cleans expired discounts
// @Tags cron
// @Produce plain
// @Param token query string true "Cron token"
// @Success 200 {string} string "Run summary"
// @Failure 403 {string} string "Invalid token"
// @Router /cron [get]
func (h *CronHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.runner.VerifyToken(ctx, c.Query("token")); err != nil {
		h.logger.Warn().Str("client_ip", c.ClientIP()).Msg("Rejected cron request")
		c.String(statusFor(err), "Invalid token\n")
		return
	}

	report, err := h.runner.RunCron(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Cron request failed")
		if report == nil {
			c.String(http.StatusInternalServerError, "Cron job failed: %s\n", err.Error())
			return
		}
	}
	c.String(http.StatusOK, report.String())
}
