package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Track is one playable item in the shared catalog. DurationSec is what
// session projections clamp against.
type Track struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	DurationSec float64   `json:"duration_sec"`
	MediaURL    string    `json:"media_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTrackRequest carries the fields needed to register a track
type CreateTrackRequest struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	DurationSec float64 `json:"duration_sec"`
	MediaURL    string  `json:"media_url"`
}
