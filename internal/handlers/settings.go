package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artpricematcher/price-matcher/internal/settings"
)

// ConfigStore reads and writes the global config table
type ConfigStore interface {
	GetConfig(ctx context.Context) (map[string]string, error)
	SetConfig(ctx context.Context, values map[string]string) error
}

// SettingsHandler serves the global discount settings
type SettingsHandler struct {
	store ConfigStore
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(store ConfigStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// TokenResponse carries a freshly generated cron token
type TokenResponse struct {
	CronToken string `json:"cronToken"`
}

// Get returns the stored global settings
// @Summary Get global settings
// @Tags settings
// @Produce json
// @Success 200 {object} settings.Global
// @Router /internal/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	values, err := h.store.GetConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings.ParseGlobal(values))
}

// Save validates and stores the global settings
// @Summary Save global settings
// @Tags settings
// @Accept json
// @Produce json
// @Param body body settings.Global true "Settings"
// @Success 200 {object} settings.Global
// @Failure 422 {object} ErrorResponse
// @Router /internal/settings [put]
func (h *SettingsHandler) Save(c *gin.Context) {
	var g settings.Global
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	// last_clean_run is maintained by the clean run only
	g.LastCleanRun = nil
	if err := settings.SaveGlobal(c.Request.Context(), h.store, g); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GenerateToken rotates the cron token
// @Summary Generate a new cron token
// @Tags settings
// @Produce json
// @Success 200 {object} TokenResponse
// @Router /internal/settings/generate-token [post]
func (h *SettingsHandler) GenerateToken(c *gin.Context) {
	token, err := settings.RotateToken(c.Request.Context(), h.store)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{CronToken: token})
}
