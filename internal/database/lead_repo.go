package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mixelka/tutorsite/pkg/models"
)

// ErrStorage is returned when the lead log cannot be reached or written
var ErrStorage = errors.New("lead storage failure")

// ErrInvalidLimit is returned when a listing limit is not a positive integer
var ErrInvalidLimit = errors.New("limit must be a positive integer")

// InsertLead appends an immutable lead row and returns its id.
// CreatedAt is always assigned here, whatever the caller put in it.
func (db *DB) InsertLead(ctx context.Context, lead *models.Lead) (int64, error) {
	query := `
		INSERT INTO leads (created_at, name, email, subject, course, message, email_sent, ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	result, err := db.ExecContext(ctx, query,
		now,
		lead.Name,
		lead.Email,
		lead.Subject,
		lead.Course,
		lead.Message,
		lead.EmailSent,
		lead.IP,
		lead.UserAgent,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert lead: %w", ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get last insert id: %w", ErrStorage, err)
	}

	lead.ID = id
	lead.CreatedAt = now
	return id, nil
}

// ListRecentLeads returns up to limit leads, newest first
func (db *DB) ListRecentLeads(ctx context.Context, limit int) ([]*models.Lead, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	leads := []*models.Lead{}
	query := `
		SELECT id, created_at, name, email, subject, course, message, email_sent, ip, user_agent
		FROM leads
		ORDER BY id DESC
		LIMIT ?
	`
	if err := db.SelectContext(ctx, &leads, query, limit); err != nil {
		return nil, fmt.Errorf("%w: failed to list leads: %w", ErrStorage, err)
	}
	return leads, nil
}

// CountLeads returns the number of logged leads
func (db *DB) CountLeads(ctx context.Context) (int64, error) {
	var n int64
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM leads`); err != nil {
		return 0, fmt.Errorf("%w: failed to count leads: %w", ErrStorage, err)
	}
	return n, nil
}
