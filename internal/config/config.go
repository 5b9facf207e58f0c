package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full runtime configuration of the site backend
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Leads    LeadsConfig    `koanf:"leads"`
	Notify   NotifyConfig   `koanf:"notify"`
	Media    MediaConfig    `koanf:"media"`
	Jobs     JobsConfig     `koanf:"jobs"`
	Log      LogConfig      `koanf:"log"`
	Admin    AdminConfig    `koanf:"admin"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type DatabaseConfig struct {
	URL      string `koanf:"url" validate:"required"`
	MaxConns int32  `koanf:"max_conns" validate:"min=1"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

type AuthConfig struct {
	// JWTSecret signs admin session tokens; generated at startup when empty.
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl" validate:"gt=0"`
	LoginAttempts int           `koanf:"login_attempts" validate:"min=1"`
	LoginWindow   time.Duration `koanf:"login_window" validate:"gt=0"`
}

type LeadsConfig struct {
	SubmitLimit  int           `koanf:"submit_limit" validate:"min=1"`
	SubmitWindow time.Duration `koanf:"submit_window" validate:"gt=0"`
}

type NotifyConfig struct {
	TelegramBotToken string        `koanf:"telegram_bot_token"`
	TelegramAPIURL   string        `koanf:"telegram_api_url" validate:"required,url"`
	ChatIDSetting    string        `koanf:"chat_id_setting" validate:"required"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxAttempts      int           `koanf:"max_attempts" validate:"min=1"`
}

type MediaConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Endpoint       string        `koanf:"endpoint"`
	AccessKey      string        `koanf:"access_key"`
	SecretKey      string        `koanf:"secret_key"`
	UseSSL         bool          `koanf:"use_ssl"`
	Bucket         string        `koanf:"bucket" validate:"required"`
	URLExpiry      time.Duration `koanf:"url_expiry" validate:"gt=0"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes" validate:"gt=0"`
}

type JobsConfig struct {
	NotifyRetryInterval time.Duration `koanf:"notify_retry_interval" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			TokenTTL:      12 * time.Hour,
			LoginAttempts: 5,
			LoginWindow:   15 * time.Minute,
		},
		Leads: LeadsConfig{
			SubmitLimit:  10,
			SubmitWindow: time.Hour,
		},
		Notify: NotifyConfig{
			TelegramAPIURL: "https://api.telegram.org",
			ChatIDSetting:  "telegram_chat_id",
			Timeout:        5 * time.Second,
			MaxAttempts:    3,
		},
		Media: MediaConfig{
			Endpoint:       "localhost:9000",
			AccessKey:      "minioadmin",
			SecretKey:      "minioadmin",
			Bucket:         "site-media",
			URLExpiry:      24 * time.Hour,
			MaxUploadBytes: 10 << 20,
		},
		Jobs: JobsConfig{
			NotifyRetryInterval: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks struct constraints and fills the admin panel defaults.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.Admin = c.Admin.withDefaults()
	// the media library is available exactly when object storage is configured
	c.Admin.Features["media"] = c.Media.Enabled
	return nil
}
