package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrNotification is returned when the provider did not accept a message
var ErrNotification = errors.New("notification failed")

// ErrNotConfigured is returned when credentials or addresses are missing
var ErrNotConfigured = errors.New("email delivery not configured")

// Client is a transactional email API client (Resend-compatible)
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	to         string
	httpClient *http.Client
	logger     *slog.Logger
}

// Config for email client
type Config struct {
	BaseURL string // e.g., https://api.resend.com
	APIKey  string
	From    string // sender address
	To      string // fixed recipient for all notifications
	Timeout time.Duration
	Logger  *slog.Logger // optional, defaults to slog.Default()
}

// Message is a single outbound email
type Message struct {
	Subject string
	Text    string
	ReplyTo string
}

// SendEmailRequest request for sending an email
type SendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// SendEmailResponse is the provider acknowledgement
type SendEmailResponse struct {
	ID string `json:"id"`
}

// NewClient creates a new email API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		to:      cfg.To,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "mailer"),
	}
}

// IsConfigured returns true if the client has credentials and addresses
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != "" && c.from != "" && c.to != ""
}

// Recipient returns the configured recipient
func (c *Client) Recipient() string {
	return c.to
}

// Send submits one message and returns the provider message id
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	req := SendEmailRequest{
		From:    c.from,
		To:      []string{c.to},
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %w", ErrNotification, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrNotification, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %w", ErrNotification, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrNotification, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: API error: %s (status %d)", ErrNotification, strings.TrimSpace(string(respBody)), resp.StatusCode)
	}

	// Any 2xx means accepted. Some providers answer with an empty or
	// non-JSON body, in which case there is no message id.
	var apiResp SendEmailResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			c.logger.Debug("accepted response carries no message id",
				"status", resp.StatusCode,
				"error", err,
			)
			return "", nil
		}
	}

	return apiResp.ID, nil
}
