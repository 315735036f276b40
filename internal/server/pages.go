package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/crewjam/csp"
	"github.com/go-chi/chi/v5"
)

// Pages serves the pre-built landing pages and their assets
type Pages struct {
	dir    string
	policy string
	logger *slog.Logger
}

// NewPages creates a static page server rooted at dir
func NewPages(dir string, logger *slog.Logger) *Pages {
	return &Pages{
		dir: dir,
		policy: csp.Header{
			DefaultSrc: []string{"'self'"},
		}.String(),
		logger: logger.With("component", "pages"),
	}
}

// Page handles GET / and GET /{page}. "/about" resolves to about or about.html.
func (p *Pages) Page(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}
	p.serve(w, r, name)
}

// Asset handles GET /static/*
func (p *Pages) Asset(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, chi.URLParam(r, "*"))
}

func (p *Pages) serve(w http.ResponseWriter, r *http.Request, name string) {
	path, ok := p.resolve(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("failed to open page", "path", path, "error", err)
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Security-Policy", p.policy)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// resolve maps a URL name to a regular file inside dir
func (p *Pages) resolve(name string) (string, bool) {
	if name == "" || strings.Contains(name, "\\") {
		return "", false
	}
	for _, part := range strings.Split(name, "/") {
		// Also rejects "..", dotfiles and empty segments
		if part == "" || strings.HasPrefix(part, ".") {
			return "", false
		}
	}

	base := filepath.Join(p.dir, filepath.FromSlash(name))
	for _, candidate := range []string{base, base + ".html"} {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
