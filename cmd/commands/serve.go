package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/random"
	"github.com/spf13/cobra"

	"sitecms/internal/caching"
	"sitecms/internal/config"
	"sitecms/internal/jobs/background"
	"sitecms/internal/logging"
	"sitecms/internal/notify"
	"sitecms/internal/repositories"
	"sitecms/internal/server"
	"sitecms/internal/services"
	"sitecms/pkg/database"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create missing tables on startup")
}

func serve(ctx context.Context, cfg *config.Config) error {
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !skipMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		logging.Warn().Msg("auth.jwt_secret not set, using a generated secret; sessions end on restart")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheSvc.Close()

	credentialRepo := repositories.NewCredentialRepo(pool)
	settingsRepo := repositories.NewSettingsRepo(pool)
	collectionRepo := repositories.NewCollectionRepo(pool)
	leadRepo := repositories.NewLeadRepo(pool)

	authSvc := services.NewAuthService(credentialRepo, cacheSvc, services.AuthOptions{
		JWTSecret:     jwtSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		LoginAttempts: cfg.Auth.LoginAttempts,
		LoginWindow:   cfg.Auth.LoginWindow,
		Admin:         cfg.Admin,
	})

	notifier := notify.NewTelegramNotifier(notify.TelegramOptions{
		APIURL:   cfg.Notify.TelegramAPIURL,
		BotToken: cfg.Notify.TelegramBotToken,
		Timeout:  cfg.Notify.Timeout,
	})
	if cfg.Notify.TelegramBotToken == "" {
		logging.Warn().Msg("notify.telegram_bot_token not set, lead notifications will fail")
	}
	leadSvc := services.NewLeadService(leadRepo, settingsRepo, notifier, cacheSvc, services.LeadOptions{
		ChatIDSetting: cfg.Notify.ChatIDSetting,
		NotifyTimeout: cfg.Notify.Timeout,
		MaxAttempts:   cfg.Notify.MaxAttempts,
		SubmitLimit:   cfg.Leads.SubmitLimit,
		SubmitWindow:  cfg.Leads.SubmitWindow,
	})

	var mediaSvc services.MediaService
	if cfg.Media.Enabled {
		store, err := services.NewMinioStore(cfg.Media.Endpoint, cfg.Media.AccessKey, cfg.Media.SecretKey, cfg.Media.UseSSL)
		if err != nil {
			return fmt.Errorf("media store: %w", err)
		}
		if err := store.EnsureBucketExists(ctx, cfg.Media.Bucket); err != nil {
			return fmt.Errorf("media bucket %q: %w", cfg.Media.Bucket, err)
		}
		mediaSvc = services.NewMediaService(store, services.MediaOptions{
			Bucket:         cfg.Media.Bucket,
			URLExpiry:      cfg.Media.URLExpiry,
			MaxUploadBytes: cfg.Media.MaxUploadBytes,
		})
	}

	scheduler, err := background.NewJobScheduler(leadSvc, cfg.Jobs.NotifyRetryInterval)
	if err != nil {
		return err
	}
	scheduler.Start()

	e := server.New(server.Deps{
		Auth:        authSvc,
		Settings:    services.NewSettingsService(settingsRepo),
		Collections: services.NewCollectionService(collectionRepo),
		Leads:       leadSvc,
		Media:       mediaSvc,
		Jobs:        scheduler,
		DB:          pool,
		Cache:       cacheSvc,
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		BodyLimit:   fmt.Sprintf("%dB", cfg.Media.MaxUploadBytes+(1<<20)),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logging.Info().Str("addr", addr).Str("version", Version).Msg("sitecms server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = scheduler.Stop()
			return err
		}
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Stop(); err != nil {
		logging.Error().Err(err).Msg("scheduler shutdown")
	}
	leadSvc.Wait()
	return nil
}
