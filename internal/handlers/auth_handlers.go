package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sitecms/internal/common"
	"sitecms/internal/metrics"
	"sitecms/internal/services"
)

const (
	authActionRegister   = "register"
	authActionLogin      = "login"
	authActionCheckSetup = "check_setup"
	authActionLogout     = "logout"
)

// AuthHandlers serves the admin panel's auth gate.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// AuthRequest is the body of POST /api/auth.
type AuthRequest struct {
	Action   string `json:"action" validate:"required,oneof=register login check_setup logout"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SetupStatus tells the admin panel whether to show registration or login.
type SetupStatus struct {
	IsSetup bool `json:"isSetup"`
}

// Status reports whether the site already has an admin.
//
// @Summary Admin setup status
// @Tags auth
// @Produce json
// @Success 200 {object} SetupStatus
// @Failure 500 {object} common.ErrorResponse
// @Router /api/auth [get]
func (h *AuthHandlers) Status(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}

	isSetup, err := h.authService.IsSetup(ctx, tenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, SetupStatus{IsSetup: isSetup})
}

// Handle dispatches register, login, check_setup and logout.
//
// @Summary Register, log in, check setup or log out
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AuthRequest true "Auth action"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 429 {object} common.ErrorResponse
// @Router /api/auth [post]
func (h *AuthHandlers) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Action == "" {
		return common.SendClientError(c, "Invalid action")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, "Invalid action")
	}

	switch req.Action {
	case authActionCheckSetup:
		isSetup, err := h.authService.IsSetup(ctx, tenantID)
		if err != nil {
			return common.SendError(c, err)
		}
		return c.JSON(http.StatusOK, SetupStatus{IsSetup: isSetup})

	case authActionRegister:
		resp, err := h.authService.Register(ctx, tenantID, req.Username, req.Password)
		metrics.RecordAuthAttempt(req.Action, err)
		if err != nil {
			return common.SendError(c, err)
		}
		return c.JSON(http.StatusOK, resp)

	case authActionLogin:
		resp, err := h.authService.Login(ctx, tenantID, req.Username, req.Password, c.RealIP())
		metrics.RecordAuthAttempt(req.Action, err)
		if err != nil {
			return common.SendError(c, err)
		}
		return c.JSON(http.StatusOK, resp)

	default:
		return h.logout(c)
	}
}

func (h *AuthHandlers) logout(c echo.Context) error {
	ctx := c.Request().Context()
	token, ok := bearerToken(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	claims, err := h.authService.ValidateToken(ctx, token)
	if err != nil {
		return common.SendError(c, err)
	}
	if tenantID, _ := tenantFrom(c); claims.TenantID != tenantID {
		return common.SendUnauthorizedError(c)
	}
	if err := h.authService.Logout(ctx, claims); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.SuccessResponse{Success: true, Message: "Logged out"})
}

// AdminConfig returns the field definitions and feature toggles of the admin panel.
//
// @Summary Admin panel configuration
// @Tags auth
// @Produce json
// @Success 200 {object} config.AdminConfig
// @Router /api/admin/config [get]
func (h *AuthHandlers) AdminConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.authService.AdminConfig())
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return "", false
	}
	return token, true
}

func tenantFrom(c echo.Context) (string, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return "", common.NewValidationError("host", "Missing host")
	}
	return tenantID, nil
}
