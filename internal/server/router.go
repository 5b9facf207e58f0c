// Package server assembles the HTTP application.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "sitecms/docs"
	"sitecms/internal/handlers"
	"sitecms/internal/metrics"
	"sitecms/internal/middleware"
	"sitecms/internal/services"
)

const (
	FeatureLeads = "leads"
	FeatureMedia = "media"
)

// Deps are the collaborators the routes are built from. Media may be nil
// when object storage is disabled, Jobs when no scheduler runs.
type Deps struct {
	Auth        services.AuthService
	Settings    services.SettingsService
	Collections services.CollectionService
	Leads       services.LeadService
	Media       services.MediaService
	Jobs        handlers.JobRunner
	DB          handlers.Pinger
	Cache       handlers.Pinger
	Version     string
	CORSOrigins []string
	BodyLimit   string
}

// New returns the configured echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	e.JSONSerializer = handlers.JSONSerializer{}

	corsOrigins := d.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "2M"
	}

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestContext())
	e.Use(middleware.RequestLogger())
	e.Use(metrics.Middleware)
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.VersionHeader(d.Version))

	health := handlers.NewHealthHandlers(d.DB, d.Cache, d.Version)
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	admin := d.Auth.AdminConfig()
	authHandlers := handlers.NewAuthHandlers(d.Auth)
	settingsHandlers := handlers.NewSettingsHandlers(d.Settings)
	collectionHandlers := handlers.NewCollectionHandlers(d.Collections)
	leadHandlers := handlers.NewLeadHandlers(d.Leads, d.Jobs)

	api := e.Group("/api", middleware.TenantResolver(), echoMiddleware.BodyLimit(bodyLimit))
	requireAdmin := middleware.AdminJWT(d.Auth)
	audit := middleware.AdminAudit()

	api.GET("/auth", authHandlers.Status)
	api.POST("/auth", authHandlers.Handle)
	api.GET("/admin/config", authHandlers.AdminConfig)

	api.GET("/settings", settingsHandlers.GetSettings)
	api.POST("/settings", settingsHandlers.UpdateSettings, requireAdmin, audit)

	api.GET("/collections", collectionHandlers.ListItems)
	api.POST("/collections", collectionHandlers.MutateItem, requireAdmin, audit)

	leadsEnabled := middleware.RequireFeature(admin, FeatureLeads)
	api.POST("/leads", leadHandlers.SubmitLead, leadsEnabled)
	api.GET("/leads", leadHandlers.ListLeads, leadsEnabled, requireAdmin)
	api.POST("/leads/retry", leadHandlers.RetryNotifications, leadsEnabled, requireAdmin, audit)
	api.GET("/leads/:id", leadHandlers.GetLead, leadsEnabled, requireAdmin)

	if d.Media != nil {
		mediaHandlers := handlers.NewMediaHandlers(d.Media)
		mediaEnabled := middleware.RequireFeature(admin, FeatureMedia)
		api.POST("/media", mediaHandlers.Upload, mediaEnabled, requireAdmin, audit)
		api.GET("/media/*", mediaHandlers.URL, mediaEnabled)
		api.DELETE("/media/*", mediaHandlers.Delete, mediaEnabled, requireAdmin, audit)
	} else {
		api.Any("/media*", func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Media storage is disabled"})
		})
	}

	return e
}
