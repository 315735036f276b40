package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Site
	ProjectName string `env:"PROJECT_NAME" envDefault:"Steve Hof — Math & Stats Tutoring"`
	Environment string `env:"ENV" envDefault:"dev"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8000"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"./web/static"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/leads.db"`

	// Email delivery (Resend-compatible API)
	EmailAPIKey  string        `env:"EMAIL_API_KEY"`
	EmailAPIURL  string        `env:"EMAIL_API_URL" envDefault:"https://api.resend.com"`
	EmailFrom    string        `env:"EMAIL_FROM" envDefault:"no-reply@stevehof.com"`
	EmailTo      string        `env:"EMAIL_TO" envDefault:"stevenhof27@gmail.com"`
	EmailTimeout time.Duration `env:"EMAIL_TIMEOUT" envDefault:"20s"`

	// Telegram lead alerts (optional)
	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID  int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramTopicID int    `env:"TELEGRAM_TOPIC_ID"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// EmailConfigured returns true if everything needed to send email is set.
// A missing key does not stop the site; the notifier just reports failure.
func (c *Config) EmailConfigured() bool {
	return c.EmailAPIKey != "" && c.EmailFrom != "" && c.EmailTo != ""
}

// TelegramEnabled returns true if lead alerts are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// IsProduction reports whether ENV names a production deployment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.EmailTimeout <= 0 {
		return nil, fmt.Errorf("EMAIL_TIMEOUT must be positive, got %s", cfg.EmailTimeout)
	}

	return cfg, nil
}
