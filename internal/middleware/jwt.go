package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/logging"
	"sitecms/internal/services"
)

// ClaimsContextKey is where the admin's token claims are stored on echo.Context.
const ClaimsContextKey = "admin_claims"

var errWrongSite = errors.New("token issued for another site")

// AdminJWT protects admin routes. A token is accepted only when it is valid,
// not revoked and issued for the site the request is addressed to.
func AdminJWT(authSvc services.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			ctx := c.Request().Context()
			claims, err := authSvc.ValidateToken(ctx, auth)
			if err != nil {
				return nil, err
			}
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok || claims.TenantID != tenantID {
				logging.Ctx(ctx).Warn().Str("token_tenant", claims.TenantID).Msg("cross-site token rejected")
				return nil, errWrongSite
			}

			ctx = common.WithUsername(ctx, claims.Subject)
			c.SetRequest(c.Request().WithContext(ctx))
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	})
}

// ClaimsFromContext returns the claims stored by AdminJWT.
func ClaimsFromContext(c echo.Context) (*services.TokenClaims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*services.TokenClaims)
	return claims, ok
}
