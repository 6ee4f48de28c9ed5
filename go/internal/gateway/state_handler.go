package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StateHandler handles HTTP requests for session sync snapshots
type StateHandler struct {
	sessions *SessionManager
}

// NewStateHandler creates a new state handler
func NewStateHandler(sessions *SessionManager) *StateHandler {
	return &StateHandler{
		sessions: sessions,
	}
}

// HandleGetSyncState handles GET /api/sessions/{id}/sync
func (h *StateHandler) HandleGetSyncState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionIDStr := extractSessionIDFromPath(r.URL.Path)
	if sessionIDStr == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "Invalid session ID format", http.StatusBadRequest)
		return
	}

	state := h.sessions.SyncState(sessionID)
	if state == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode sync state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	// Register pattern for session sync - note the trailing slash
	mux.HandleFunc("/api/sessions/", func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("path", r.URL.Path).Msg("state handler received request")

		// Check if path ends with /sync
		if len(r.URL.Path) > len("/api/sessions/") && r.URL.Path[len(r.URL.Path)-5:] == "/sync" {
			h.HandleGetSyncState(w, r)
		} else {
			http.NotFound(w, r)
		}
	})
}

// extractSessionIDFromPath extracts session ID from path like /api/sessions/{id}/sync
func extractSessionIDFromPath(path string) string {
	const prefix = "/api/sessions/"
	const suffix = "/sync"

	if len(path) <= len(prefix)+len(suffix) {
		return ""
	}

	if path[:len(prefix)] != prefix || path[len(path)-len(suffix):] != suffix {
		return ""
	}

	return path[len(prefix) : len(path)-len(suffix)]
}
