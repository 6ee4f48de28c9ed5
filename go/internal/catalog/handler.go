package catalog

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler exposes the catalog over HTTP
type Handler struct {
	app *App
}

// NewHandler creates a new catalog HTTP handler
func NewHandler(app *App) *Handler {
	return &Handler{
		app: app,
	}
}

// RegisterRoutes registers catalog routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tracks", h.handleTracks)
	mux.HandleFunc("/api/tracks/", h.handleTrack)
}

// handleTracks handles GET (list) and POST (create) on /api/tracks
func (h *Handler) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tracks, err := h.app.ListTracks(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to list tracks")
			http.Error(w, "Failed to list tracks", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tracks)

	case http.MethodPost:
		var req CreateTrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		track, err := h.app.CreateTrack(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, track)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTrack handles GET and DELETE on /api/tracks/{id}
func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid track ID format", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		track, err := h.app.GetTrack(r.Context(), id)
		if err != nil {
			http.Error(w, "Track not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, track)

	case http.MethodDelete:
		if err := h.app.DeleteTrack(r.Context(), id); err != nil {
			log.Error().Err(err).Str("track_id", id.String()).Msg("failed to delete track")
			http.Error(w, "Failed to delete track", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
