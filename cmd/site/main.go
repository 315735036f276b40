package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mixelka/tutorsite/internal/config"
	"github.com/mixelka/tutorsite/internal/database"
	"github.com/mixelka/tutorsite/internal/formatter"
	"github.com/mixelka/tutorsite/internal/logging"
	"github.com/mixelka/tutorsite/internal/mailer"
	"github.com/mixelka/tutorsite/internal/parser"
	"github.com/mixelka/tutorsite/internal/server"
	"github.com/mixelka/tutorsite/internal/telegram"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("site stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("env", cfg.Environment)
	slog.SetDefault(logger)
	logger.Info("starting site", "project", cfg.ProjectName)

	// Connect to database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations completed", "path", cfg.DatabasePath)

	// Email notifier; a missing key degrades to "not sent" instead of failing startup
	mailClient := mailer.NewClient(mailer.Config{
		BaseURL: cfg.EmailAPIURL,
		APIKey:  cfg.EmailAPIKey,
		From:    cfg.EmailFrom,
		To:      cfg.EmailTo,
		Timeout: cfg.EmailTimeout,
		Logger:  logger,
	})
	if !mailClient.IsConfigured() {
		logger.Warn("email delivery not configured, submissions will be logged with email_sent=false")
	}
	notifier := mailer.NewNotifier(mailClient, logger)

	// Telegram lead alerts (optional)
	var alerter server.LeadAlerter
	if cfg.TelegramEnabled() {
		a, err := telegram.NewAlerter(telegram.AlerterDeps{
			Token:     cfg.TelegramToken,
			ChatID:    cfg.TelegramChatID,
			TopicID:   cfg.TelegramTopicID,
			Formatter: formatter.NewLeadFormatter(),
			Logger:    logger,
		})
		switch {
		case err == nil:
			alerter = a
			logger.Info("telegram lead alerts enabled", "chat_id", cfg.TelegramChatID)
		case errors.Is(err, telegram.ErrAlertsDisabled):
		default:
			logger.Warn("telegram lead alerts unavailable", "error", err)
		}
	}

	srv := server.New(server.Deps{
		Addr:      cfg.HTTPAddr,
		StaticDir: cfg.StaticDir,
		Store:     db,
		Notifier:  notifier,
		Alerter:   alerter,
		Cleaner:   parser.NewMessageCleaner(),
		Logger:    logger,
	})

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}

	logger.Info("site stopped")
	return nil
}
