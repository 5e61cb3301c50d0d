package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ernie/courtside/internal/export"
	"github.com/ernie/courtside/internal/logging"
)

// maxBodyBytes bounds request bodies, including imported logs
const maxBodyBytes = 8 << 20

// attachment sets headers for a file download named name-<date>.ext
func attachment(w http.ResponseWriter, contentType, name, ext string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, time.Now().Format("2006-01-02"), ext))
}

// handleExportTable downloads the box score as CSV
func (r *Router) handleExportTable(w http.ResponseWriter, req *http.Request) {
	state := r.session.State()

	attachment(w, "text/csv; charset=utf-8", "boxscore", "csv")
	if err := export.WriteTable(w, state.Players, state.History); err != nil {
		// Headers are already sent; all we can do is log
		slog.Error("Failed to write table export", logging.ErrAttr(err))
	}
}

// handleExportJSON downloads the action log
func (r *Router) handleExportJSON(w http.ResponseWriter, req *http.Request) {
	data, err := export.ToJSON(r.session.History())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	attachment(w, "application/json", "actions", "json")
	w.Write(data)
}

// handleImport replaces the action log with an uploaded JSON export
func (r *Router) handleImport(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "import too large")
		return
	}

	actions, err := export.FromJSON(data)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := r.session.Import(actions); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(actions)})
}
