package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/logging"
)

// AdminAudit logs every state-changing admin request with the acting user and
// the id of the token used.
// Reads are not logged.
func AdminAudit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return err
			}

			ctx := c.Request().Context()
			username, _ := common.GetUsernameFromContext(ctx)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			event := logging.Ctx(ctx).Info()
			if status >= http.StatusBadRequest {
				event = logging.Ctx(ctx).Warn()
			}
			event = event.
				Str("audit", "admin").
				Str("username", username)
			if claims, ok := ClaimsFromContext(c); ok {
				event = event.Str("token_id", claims.ID)
			}
			event.
				Str("action", method+" "+c.Path()).
				Int("status", status).
				Msg("admin action")
			return err
		}
	}
}
