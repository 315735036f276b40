package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mixelka/tutorsite/pkg/models"
)

// receivedAtFormat is ISO-8601 UTC with microseconds
const receivedAtFormat = "2006-01-02T15:04:05.000000Z"

// LeadAPIHandler handles the JSON variant of the contact form
type LeadAPIHandler struct {
	pipeline *leadPipeline
	logger   *slog.Logger
	now      func() time.Time
}

// NewLeadAPIHandler creates a new JSON lead handler
func NewLeadAPIHandler(pipeline *leadPipeline, logger *slog.Logger) *LeadAPIHandler {
	return &LeadAPIHandler{
		pipeline: pipeline,
		logger:   logger.With("component", "lead_api"),
		now:      time.Now,
	}
}

// leadRequest is the expected JSON body for POST /api/lead
type leadRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Subject     string  `json:"subject"`
	GradeLevel  string  `json:"grade_level"`
	Notes       *string `json:"notes"`
	SubmittedAt *string `json:"submitted_at"`
	Source      *string `json:"source"`
}

// leadResponse is the JSON response for POST /api/lead
type leadResponse struct {
	OK         bool   `json:"ok"`
	ReceivedAt string `json:"received_at"`
}

func (req *leadRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.GradeLevel = strings.TrimSpace(req.GradeLevel)
}

func (req *leadRequest) validate() error {
	return firstError(
		required("name", req.Name, maxNameLength),
		validEmail(req.Email),
		required("subject", req.Subject, maxFieldLength),
		required("grade_level", req.GradeLevel, maxFieldLength),
		optional("notes", deref(req.Notes), maxMessageLength),
	)
}

// message renders the request the way the owner reads it in the email
func (req *leadRequest) message() string {
	return fmt.Sprintf("New tutoring request:\n\n"+
		"Name: %s\n"+
		"Email: %s\n"+
		"Subject: %s\n"+
		"Grade level: %s\n"+
		"Notes: %s\n"+
		"Submitted: %s\n"+
		"Source: %s\n",
		req.Name, req.Email, req.Subject, req.GradeLevel,
		deref(req.Notes), deref(req.SubmittedAt), deref(req.Source),
	)
}

// Create handles POST /api/lead.
// name, email, subject and grade_level are required.
func (h *LeadAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}

	req.normalize()
	if err := req.validate(); err != nil {
		h.logger.Info("rejected lead request", "error", err)
		code := "invalid_request"
		var fe *FieldError
		if errors.As(err, &fe) {
			code = fe.Code()
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": code})
		return
	}

	message := req.message()
	lead := &models.Lead{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Course:    req.GradeLevel,
		Message:   message,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
	}

	ok := h.pipeline.process(r.Context(), lead, message)

	writeJSON(w, http.StatusOK, leadResponse{
		OK:         ok,
		ReceivedAt: h.now().UTC().Format(receivedAtFormat),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
