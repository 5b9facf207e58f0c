package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
)

// ResolveTenant returns the site a request is addressed to: its host name
// without the port, case as received.
func ResolveTenant(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// bracketed IPv6 without a port
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// TenantResolver scopes every request to the site named by its host.
func TenantResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenantID := ResolveTenant(c.Request())
			if tenantID == "" {
				return common.SendClientError(c, "Missing host")
			}
			ctx := common.WithTenantID(c.Request().Context(), tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
