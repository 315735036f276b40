package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mixelka/tutorsite/pkg/models"
)

// LeadFormatter formats leads for Telegram (HTML parse mode)
type LeadFormatter struct {
	maxLength int
	location  *time.Location
}

// NewLeadFormatter creates a new lead formatter
func NewLeadFormatter() *LeadFormatter {
	return &LeadFormatter{
		maxLength: 4000, // Leave room for markup
		location:  time.UTC,
	}
}

// FormatLead formats a logged lead as a Telegram message
func (f *LeadFormatter) FormatLead(lead *models.Lead) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>New lead #%d</b>\n", lead.ID))
	sb.WriteString(fmt.Sprintf("<b>Name:</b> %s\n", f.escapeHTML(lead.Name)))
	sb.WriteString(fmt.Sprintf("<b>Email:</b> %s\n", f.escapeHTML(lead.Email)))
	if lead.Subject != "" {
		sb.WriteString(fmt.Sprintf("<b>Subject:</b> %s\n", f.escapeHTML(lead.Subject)))
	}
	if lead.Course != "" {
		sb.WriteString(fmt.Sprintf("<b>Course:</b> %s\n", f.escapeHTML(lead.Course)))
	}
	if !lead.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("<b>Date:</b> %s\n", lead.CreatedAt.In(f.location).Format("02.01.2006 15:04 MST")))
	}

	if lead.EmailSent {
		sb.WriteString("<b>Notification:</b> delivered\n")
	} else {
		sb.WriteString("<b>Notification:</b> <i>not delivered, reply from here</i>\n")
	}
	sb.WriteString("\n")

	sb.WriteString("<b>Message:</b>\n")
	body := f.truncate(lead.Message, f.maxLength-sb.Len()-50)
	sb.WriteString(f.escapeHTML(body))
	if body != lead.Message {
		sb.WriteString("\n\n<i>... (message truncated)</i>")
	}

	return sb.String()
}

// escapeHTML escapes HTML special characters for Telegram
func (f *LeadFormatter) escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate truncates text to maxLen characters
func (f *LeadFormatter) truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
