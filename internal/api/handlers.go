package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ernie/courtside/internal/actionlog"
	"github.com/ernie/courtside/internal/cache"
	"github.com/ernie/courtside/internal/domain"
	"github.com/ernie/courtside/internal/logging"
	"github.com/ernie/courtside/internal/matchdata"
	"github.com/ernie/courtside/internal/session"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, actionlog.ErrNoActorSelected),
		errors.Is(err, actionlog.ErrUnknownStatType),
		errors.Is(err, actionlog.ErrInvalidImportShape),
		errors.Is(err, session.ErrUnknownPlayer),
		errors.Is(err, session.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, matchdata.ErrUnresolvableMatchID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, matchdata.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with the status errorStatus picks for it
func writeDomainError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", logging.ErrAttr(err))
	}
	writeError(w, status, err.Error())
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ActionResult is the response to undo and redo
type ActionResult struct {
	Applied bool               `json:"applied"`
	Action  *domain.GameAction `json:"action,omitempty"`
}

func actionResult(action domain.GameAction, ok bool) ActionResult {
	if !ok {
		return ActionResult{}
	}
	return ActionResult{Applied: true, Action: &action}
}

// handleGetState returns the full session snapshot
func (r *Router) handleGetState(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.session.State())
}

// handleSetRoster rebuilds the player registry from roster text
func (r *Router) handleSetRoster(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, req, &body) {
		return
	}

	r.session.SetRoster(req.Context(), body.Text)
	writeJSON(w, http.StatusOK, r.session.State())
}

// handleSelect changes the selected player
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) {
	var body struct {
		PlayerID string `json:"player_id"`
	}
	if !decodeBody(w, req, &body) {
		return
	}

	if err := r.session.Select(body.PlayerID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected_id": body.PlayerID})
}

// ActionEntry is one row of the history listing
type ActionEntry struct {
	domain.GameAction
	Label string `json:"label"`
}

// handleListActions returns a page of history, newest first
func (r *Router) handleListActions(w http.ResponseWriter, req *http.Request) {
	history := r.session.History()
	limit := parseLimit(req, 50, 500)
	offset := parseOffset(req)

	entries := []ActionEntry{}
	for i := offset; i < len(history) && len(entries) < limit; i++ {
		entries = append(entries, ActionEntry{GameAction: history[i], Label: history[i].Type.Label()})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"actions": entries,
		"total":   len(history),
	})
}

// handleRecord records an action for the given or selected player
func (r *Router) handleRecord(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Type     domain.StatType `json:"type"`
		PlayerID string          `json:"player_id"`
	}
	if !decodeBody(w, req, &body) {
		return
	}

	action, err := r.session.Record(body.Type, body.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, action)
}

// handleRemoveAction strikes one action from history
func (r *Router) handleRemoveAction(w http.ResponseWriter, req *http.Request) {
	action, ok := r.session.RemoveAction(req.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "action not found")
		return
	}
	writeJSON(w, http.StatusOK, action)
}

// handleClear empties the log; the caller must confirm with ?confirm=true
func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) {
	if req.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "clearing the log requires confirm=true")
		return
	}

	r.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleUndo undoes the most recent action
func (r *Router) handleUndo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, actionResult(r.session.Undo()))
}

// handleRedo redoes the most recently undone action
func (r *Router) handleRedo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, actionResult(r.session.Redo()))
}

// handleGetStatTypes lists the recordable stat types with their labels
func (r *Router) handleGetStatTypes(w http.ResponseWriter, req *http.Request) {
	types := make([]map[string]string, 0, len(domain.StatTypes))
	for _, t := range domain.StatTypes {
		types = append(types, map[string]string{"type": string(t), "label": t.Label()})
	}
	writeJSON(w, http.StatusOK, types)
}

// handleGetPlayerStats returns the aggregated stats of one player
func (r *Router) handleGetPlayerStats(w http.ResponseWriter, req *http.Request) {
	player, stats, err := r.session.PlayerStats(req.PathValue("id"))
	if errors.Is(err, session.ErrUnknownPlayer) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.BoxScoreLine{Player: player, Stats: stats})
}

// handleGetBoxScore returns every player's and team's aggregates
func (r *Router) handleGetBoxScore(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.session.BoxScore())
}

// handleSetQuarterScore edits one scoreboard cell
func (r *Router) handleSetQuarterScore(w http.ResponseWriter, req *http.Request) {
	side, ok := parseSide(req.PathValue("side"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid side")
		return
	}
	quarter, ok := parseQuarter(req.PathValue("quarter"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid quarter")
		return
	}

	var body struct {
		Value *int `json:"value"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.Value == nil {
		writeError(w, http.StatusBadRequest, "value required")
		return
	}

	if err := r.session.SetQuarterScore(side, quarter, *body.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, r.session.State().ScoreBoard)
}

// handleSync resolves match input, fetches the match and applies it
func (r *Router) handleSync(w http.ResponseWriter, req *http.Request) {
	if r.fetcher == nil {
		writeError(w, http.StatusServiceUnavailable, "match data provider not configured")
		return
	}

	var body struct {
		Input string `json:"input"`
	}
	if !decodeBody(w, req, &body) {
		return
	}
	if body.Input == "" {
		body.Input = r.session.State().MatchInput
	}

	md, err := r.session.Sync(req.Context(), r.fetcher, body.Input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// handleGetSnapshot returns the cached snapshot of a previously synced match
func (r *Router) handleGetSnapshot(w http.ResponseWriter, req *http.Request) {
	id, err := parseID(req, "id")
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	if r.snapshots == nil {
		writeError(w, http.StatusNotFound, "snapshot cache not configured")
		return
	}

	md, err := r.snapshots.ReadSnapshot(req.Context(), id)
	if errors.Is(err, cache.ErrMiss) {
		writeError(w, http.StatusNotFound, "snapshot not cached")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// handleHealth returns a simple health check response
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
