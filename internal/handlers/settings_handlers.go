package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/services"
)

type SettingsHandlers struct {
	settingsService services.SettingsService
}

func NewSettingsHandlers(settingsService services.SettingsService) *SettingsHandlers {
	return &SettingsHandlers{settingsService: settingsService}
}

// GetSettings returns every setting of the site as strings.
//
// @Summary List site settings
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} common.ErrorResponse
// @Router /api/settings [get]
func (h *SettingsHandlers) GetSettings(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	settings, err := h.settingsService.GetAll(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings upserts the posted keys; values of any JSON type are stored as strings.
//
// @Summary Update site settings
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param settings body map[string]interface{} true "Settings to write"
// @Success 200 {object} common.SuccessResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /api/settings [post]
func (h *SettingsHandlers) UpdateSettings(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var values map[string]any
	if err := c.Bind(&values); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := h.settingsService.SetMany(c.Request().Context(), tenantID, values); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.SuccessResponse{Success: true})
}
