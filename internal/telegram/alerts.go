package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/tutorsite/internal/formatter"
	appmodels "github.com/mixelka/tutorsite/pkg/models"
)

// ErrAlertsDisabled is returned when no token or chat is configured
var ErrAlertsDisabled = errors.New("telegram alerts disabled")

// defaultAlertTimeout bounds how long an alert can hold up the redirect
const defaultAlertTimeout = 3 * time.Second

// Alerter posts logged leads to the site owner's Telegram chat
type Alerter struct {
	bot       *bot.Bot
	chatID    int64
	topicID   int
	timeout   time.Duration
	formatter *formatter.LeadFormatter
	logger    *slog.Logger
}

// AlerterDeps dependencies for creating an alerter
type AlerterDeps struct {
	Token     string
	ChatID    int64
	TopicID   int // forum topic (message_thread_id), 0 for none
	Formatter *formatter.LeadFormatter
	Logger    *slog.Logger
	Timeout   time.Duration // per alert, defaults to 3s
	Options   []bot.Option
}

// NewAlerter creates a new Telegram alerter. It does not contact Telegram.
func NewAlerter(deps AlerterDeps) (*Alerter, error) {
	if deps.Token == "" || deps.ChatID == 0 {
		return nil, ErrAlertsDisabled
	}

	opts := append([]bot.Option{bot.WithSkipGetMe()}, deps.Options...)
	tgBot, err := bot.New(deps.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultAlertTimeout
	}

	return &Alerter{
		bot:       tgBot,
		chatID:    deps.ChatID,
		topicID:   deps.TopicID,
		timeout:   timeout,
		formatter: deps.Formatter,
		logger:    deps.Logger.With("component", "telegram_alerts"),
	}, nil
}

// Alert sends one lead to the configured chat
func (a *Alerter) Alert(ctx context.Context, lead *appmodels.Lead) error {
	// Runs before the redirect, so keep the submitter's wait short
	apiCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text := a.formatter.FormatLead(lead)
	msg, err := a.sendMessage(apiCtx, text)
	if err != nil {
		return fmt.Errorf("failed to send lead alert: %w", err)
	}

	a.logger.Info("lead alert sent", "lead_id", lead.ID, "telegram_msg_id", msg.ID)
	return nil
}

// sendMessage sends a message to the chat (and topic, if set)
func (a *Alerter) sendMessage(ctx context.Context, text string) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    a.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}

	if a.topicID != 0 {
		params.MessageThreadID = a.topicID
	}

	return a.bot.SendMessage(ctx, params)
}
