package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/session"
	"github.com/klauspost/compress/gzhttp"
)

// SnapshotReader reads cached normalized match data
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, matchID int64) (domain.MatchData, error)
}

// Router holds the HTTP routes and dependencies
type Router struct {
	mux       *http.ServeMux
	session   *session.Session
	fetcher   session.Fetcher
	snapshots SnapshotReader
	staticDir string
}

// NewRouter creates a new HTTP router. fetcher, snapshots and gateway may be
// nil; the routes depending on them then report the feature as unavailable.
func NewRouter(sess *session.Session, fetcher session.Fetcher, snapshots SnapshotReader, gateway http.Handler, staticDir string) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		session:   sess,
		fetcher:   fetcher,
		snapshots: snapshots,
		staticDir: staticDir,
	}

	r.mux.HandleFunc("GET /api/state", r.handleGetState)
	r.mux.HandleFunc("PUT /api/roster", r.handleSetRoster)
	r.mux.HandleFunc("POST /api/select", r.handleSelect)

	r.mux.HandleFunc("GET /api/actions", r.handleListActions)
	r.mux.HandleFunc("POST /api/actions", r.handleRecord)
	r.mux.HandleFunc("DELETE /api/actions", r.handleClear)
	r.mux.HandleFunc("DELETE /api/actions/{id}", r.handleRemoveAction)
	r.mux.HandleFunc("POST /api/undo", r.handleUndo)
	r.mux.HandleFunc("POST /api/redo", r.handleRedo)

	r.mux.HandleFunc("GET /api/stats/types", r.handleGetStatTypes)
	r.mux.HandleFunc("GET /api/stats/players/{id}", r.handleGetPlayerStats)
	r.mux.HandleFunc("GET /api/stats/boxscore", r.handleGetBoxScore)
	r.mux.HandleFunc("PUT /api/scoreboard/{side}/{quarter}", r.handleSetQuarterScore)

	r.mux.HandleFunc("GET /api/export/table", r.handleExportTable)
	r.mux.HandleFunc("GET /api/export/json", r.handleExportJSON)
	r.mux.HandleFunc("POST /api/import", r.handleImport)

	r.mux.HandleFunc("POST /api/sync", r.handleSync)
	r.mux.HandleFunc("GET /api/matches/{id}/snapshot", r.handleGetSnapshot)

	// Gateway to the match data provider
	if gateway != nil {
		proxied := http.StripPrefix("/api/proxy", gateway)
		r.mux.Handle("GET /api/proxy/", proxied)
		r.mux.Handle("POST /api/proxy/", proxied)
	}

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)

	// Static files - only serve if staticDir is configured
	if staticDir != "" {
		r.mux.HandleFunc("GET /", r.handleStatic)
	}

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for API
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the router wrapped with response compression
func (r *Router) Handler() http.Handler {
	return gzhttp.GzipHandler(r)
}

// handleStatic serves static files from the configured directory
// For SPA support, serves index.html for any path that doesn't match a file
func (r *Router) handleStatic(w http.ResponseWriter, req *http.Request) {
	path := filepath.Clean(req.URL.Path)
	if path == "/" {
		path = "/index.html"
	}

	fullPath := filepath.Join(r.staticDir, path)

	// Security: ensure the path is within staticDir
	absStaticDir, _ := filepath.Abs(r.staticDir)
	absPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absPath, absStaticDir) {
		http.NotFound(w, req)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		// SPA fallback: serve index.html for unknown paths
		fullPath = filepath.Join(r.staticDir, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			http.NotFound(w, req)
			return
		}
	}

	if contentType := getContentType(fullPath); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFile(w, req, fullPath)
}

// getContentType returns the content type for a file based on extension
func getContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	default:
		return ""
	}
}
