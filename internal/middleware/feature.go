package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/config"
)

// RequireFeature hides routes whose admin feature toggle is off.
func RequireFeature(admin config.AdminConfig, feature string) echo.MiddlewareFunc {
	enabled := admin.FeatureEnabled(feature)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return c.JSON(http.StatusNotFound, common.ErrorResponse{Error: "Feature disabled"})
			}
			return next(c)
		}
	}
}
