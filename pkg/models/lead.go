package models

import "time"

// Lead represents one contact form submission
type Lead struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   string    `db:"subject" json:"subject"`
	Course    string    `db:"course" json:"course"`
	Message   string    `db:"message" json:"message"`
	EmailSent bool      `db:"email_sent" json:"email_sent"` // Notifier outcome
	IP        *string   `db:"ip" json:"ip,omitempty"`
	UserAgent *string   `db:"user_agent" json:"user_agent,omitempty"`
}
