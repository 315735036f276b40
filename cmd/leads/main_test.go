package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mixelka/tutorsite/internal/database"
	"github.com/mixelka/tutorsite/pkg/models"
)

func sampleLeads() []*models.Lead {
	return []*models.Lead{
		{ID: 2, CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), Name: "Bo", Email: "bo@x.com", Message: "line one\nline two", EmailSent: false},
		{ID: 1, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Name: "Ada", Email: "ada@x.com", Course: "Calc", Message: "Need calc help", EmailSent: true},
	}
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "table", sampleLeads()); err != nil {
		t.Fatalf("render: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "2 ") || !strings.Contains(lines[1], "line one line two") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "yes") || !strings.Contains(lines[2], "2026-01-01 00:00") {
		t.Errorf("unexpected second row %q", lines[2])
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "json", sampleLeads()); err != nil {
		t.Fatalf("render: %v", err)
	}

	var got []models.Lead
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || !got[1].EmailSent {
		t.Errorf("unexpected decoded leads %+v", got)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	if err := render(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := preview(strings.Repeat("ab", 20), 5); got != "abab…" {
		t.Errorf("unexpected %q", got)
	}
}

// seedDatabase points config at a fresh SQLite file holding one lead
func seedDatabase(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "leads.db")
	t.Setenv("DATABASE_PATH", path)

	db, err := database.New(path)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.InsertLead(ctx, &models.Lead{Name: "Ada", Email: "ada@x.com", Message: "Need calc help"}); err != nil {
		t.Fatalf("InsertLead: %v", err)
	}
	return path
}

func TestRun_PrintsLeads(t *testing.T) {
	seedDatabase(t)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-limit", "5", "-format", "json"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	var got []models.Lead
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if len(got) != 1 || got[0].Name != "Ada" {
		t.Errorf("unexpected leads %+v", got)
	}
	if !strings.Contains(stderr.String(), "showing 1 of 1 leads") {
		t.Errorf("expected summary on stderr, got %q", stderr.String())
	}
}

func TestRun_ReturnsErrorsInsteadOfExiting(t *testing.T) {
	path := seedDatabase(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-limit", "0"}, &stdout, &stderr)
	if !errors.Is(err, database.ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}

	// The store was closed on the error path, so the file opens cleanly again
	db, err := database.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if n, err := db.CountLeads(context.Background()); err != nil || n != 1 {
		t.Errorf("expected 1 lead after reopen, got %d (%v)", n, err)
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-format", "xml"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
