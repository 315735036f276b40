// Command leads prints the most recent contact form submissions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mixelka/tutorsite/internal/config"
	"github.com/mixelka/tutorsite/internal/database"
	"github.com/mixelka/tutorsite/internal/logging"
	"github.com/mixelka/tutorsite/pkg/models"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "leads:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("leads", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "number of leads to show (newest first)")
	format := fs.String("format", "table", "output format: table or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "table" && *format != "json" {
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	leads, err := db.ListRecentLeads(ctx, *limit)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	if err := render(stdout, *format, leads); err != nil {
		return fmt.Errorf("failed to print leads: %w", err)
	}

	total, err := db.CountLeads(ctx)
	if err != nil {
		logger.Warn("failed to count leads", "error", err)
		return nil
	}
	fmt.Fprintf(stderr, "showing %d of %d leads\n", len(leads), total)
	return nil
}

func render(w io.Writer, format string, leads []*models.Lead) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	case "table":
		return renderTable(w, leads)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, leads []*models.Lead) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED (UTC)\tNAME\tEMAIL\tCOURSE\tSENT\tMESSAGE")
	for _, l := range leads {
		sent := "no"
		if l.EmailSent {
			sent = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			l.CreatedAt.UTC().Format("2006-01-02 15:04"),
			l.Name,
			l.Email,
			l.Course,
			sent,
			preview(l.Message, 40),
		)
	}
	return tw.Flush()
}

// preview flattens a message onto one line and cuts it to n runes
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
