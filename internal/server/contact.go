package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mixelka/tutorsite/internal/parser"
	"github.com/mixelka/tutorsite/pkg/models"
)

const (
	maxFormBytes = 64 << 10

	// honeypotField is hidden with CSS; people leave it empty, bots do not
	honeypotField = "website"
)

// ContactHandler handles the HTML contact form
type ContactHandler struct {
	pipeline *leadPipeline
	cleaner  *parser.MessageCleaner
	logger   *slog.Logger
}

// NewContactHandler creates a new contact form handler
func NewContactHandler(pipeline *leadPipeline, cleaner *parser.MessageCleaner, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		pipeline: pipeline,
		cleaner:  cleaner,
		logger:   logger.With("component", "contact_form"),
	}
}

// contactForm is a trimmed POST /contact submission
type contactForm struct {
	Name     string
	Email    string
	Subject  string
	Course   string
	Message  string
	Honeypot string
}

func (f *contactForm) validate() error {
	return firstError(
		required("name", f.Name, maxNameLength),
		validEmail(f.Email),
		optional("subject", f.Subject, maxFieldLength),
		optional("course", f.Course, maxFieldLength),
		required("message", f.Message, maxMessageLength),
	)
}

// Submit handles POST /contact.
// Responds 303 to /?sent={1|0}#contact, or 400 when a required field is bad.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	form := contactForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Subject:  strings.TrimSpace(r.PostFormValue("subject")),
		Course:   strings.TrimSpace(r.PostFormValue("course")),
		Message:  strings.TrimSpace(r.PostFormValue("message")),
		Honeypot: strings.TrimSpace(r.PostFormValue(honeypotField)),
	}

	// Silently discard spam: look successful so bots learn nothing
	if form.Honeypot != "" {
		h.logger.Info("honeypot triggered, discarding submission", "ip", r.RemoteAddr)
		redirectSent(w, r, true)
		return
	}

	if err := form.validate(); err != nil {
		h.logger.Info("rejected contact submission", "error", err)
		var fe *FieldError
		if errors.As(err, &fe) {
			http.Error(w, fmt.Sprintf("Please check the %s field.", fe.Field), http.StatusBadRequest)
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	lead := &models.Lead{
		Name:      form.Name,
		Email:     form.Email,
		Subject:   form.Subject,
		Course:    form.Course,
		Message:   form.Message,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
	}

	sent := h.pipeline.process(r.Context(), lead, h.composeNotification(form))
	redirectSent(w, r, sent)
}

// composeNotification builds the email text from every submitted field
func (h *ContactHandler) composeNotification(f contactForm) string {
	var sb strings.Builder

	sb.WriteString("New contact form submission:\n\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", f.Name))
	sb.WriteString(fmt.Sprintf("Email: %s\n", f.Email))
	if f.Subject != "" {
		sb.WriteString(fmt.Sprintf("Subject: %s\n", f.Subject))
	}
	if f.Course != "" {
		sb.WriteString(fmt.Sprintf("Course: %s\n", f.Course))
	}
	sb.WriteString("\nMessage:\n")
	sb.WriteString(h.cleaner.Clean(f.Message))

	return sb.String()
}

func redirectSent(w http.ResponseWriter, r *http.Request, sent bool) {
	flag := "0"
	if sent {
		flag = "1"
	}
	http.Redirect(w, r, "/?sent="+flag+"#contact", http.StatusSeeOther)
}
