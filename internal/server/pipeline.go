package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/mixelka/tutorsite/pkg/models"
)

// leadPipeline runs a validated submission through notify -> log -> alert
type leadPipeline struct {
	store    LeadStore
	notifier Notifier
	alerter  LeadAlerter
	logger   *slog.Logger
}

// process makes one notification attempt and logs the lead whatever the
// outcome. Logging and alert failures are reported here and never returned.
func (p *leadPipeline) process(ctx context.Context, lead *models.Lead, notification string) bool {
	// A client hanging up mid-request must not abort delivery or logging
	ctx = context.WithoutCancel(ctx)

	lead.EmailSent = p.notifier.Send(ctx, lead.Name, lead.Email, notification)

	id, err := p.store.InsertLead(ctx, lead)
	if err != nil {
		p.logger.Error("failed to log lead",
			"error", err,
			"email", lead.Email,
			"email_sent", lead.EmailSent,
		)
		return lead.EmailSent
	}
	p.logger.Info("lead logged", "lead_id", id, "email_sent", lead.EmailSent)

	if p.alerter != nil {
		if err := p.alerter.Alert(ctx, lead); err != nil {
			p.logger.Warn("failed to send lead alert", "error", err, "lead_id", id)
		}
	}

	return lead.EmailSent
}

// clientIP returns the caller address after RealIP rewrote RemoteAddr
func clientIP(r *http.Request) *string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return nil
	}
	return &addr
}

func userAgent(r *http.Request) *string {
	ua := strings.TrimSpace(r.UserAgent())
	if ua == "" {
		return nil
	}
	return &ua
}
