package report

import (
	"net/http"
	"strconv"
	"strings"
)

// handleHealth reports server liveness.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{"status": "ok"})
}

// handleRuns lists recorded runs. Query params:
//   - sequence (optional): restrict to one sequence
//   - limit (optional; default 100): cap the listing
func (ws *WebServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if sequence := r.URL.Query().Get("sequence"); sequence != "" {
		runs, err := ws.store.ListBySequence(sequence)
		if err != nil {
			ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		ws.writeJSON(w, map[string]interface{}{"runs": runs})
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			ws.writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	runs, err := ws.store.ListRecent(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ws.writeJSON(w, map[string]interface{}{"runs": runs})
}

// handleRun serves a single run by ID: GET returns it, DELETE removes it.
func (ws *WebServer) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		ws.writeJSONError(w, http.StatusBadRequest, "run ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := ws.store.Get(runID)
		if err != nil {
			ws.writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		ws.writeJSON(w, run)

	case http.MethodDelete:
		if err := ws.store.Delete(runID); err != nil {
			ws.writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		ws.writeJSON(w, map[string]string{"deleted": runID})

	default:
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
