package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TracksRepository defines what the app layer needs from the repository
type TracksRepository interface {
	CreateTrack(ctx context.Context, req CreateTrackRequest) (*Track, error)
	GetTrack(ctx context.Context, id uuid.UUID) (*Track, error)
	ListTracks(ctx context.Context) ([]Track, error)
	DeleteTrack(ctx context.Context, id uuid.UUID) error
}

// App handles catalog business logic
type App struct {
	repo TracksRepository
}

// NewApp creates a new catalog App
func NewApp(repo TracksRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateTrack registers a new track with validation
func (a *App) CreateTrack(ctx context.Context, req CreateTrackRequest) (*Track, error) {
	if err := a.validateCreateTrackRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	track, err := a.repo.CreateTrack(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}

	log.Info().
		Str("track_id", track.ID.String()).
		Str("title", track.Title).
		Float64("duration_sec", track.DurationSec).
		Msg("track created")
	return track, nil
}

// GetTrack retrieves a track by ID
func (a *App) GetTrack(ctx context.Context, id uuid.UUID) (*Track, error) {
	track, err := a.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return track, nil
}

// ListTracks lists all tracks
func (a *App) ListTracks(ctx context.Context) ([]Track, error) {
	tracks, err := a.repo.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

// DeleteTrack removes a track
func (a *App) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteTrack(ctx, id); err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return nil
}

// TrackDuration returns the duration of a track in seconds. This is the
// gateway's TrackCatalog dependency.
func (a *App) TrackDuration(ctx context.Context, trackID string) (float64, error) {
	id, err := uuid.Parse(trackID)
	if err != nil {
		return 0, fmt.Errorf("invalid track ID %q: %w", trackID, err)
	}

	track, err := a.repo.GetTrack(ctx, id)
	if err != nil {
		return 0, err
	}
	return track.DurationSec, nil
}

func (a *App) validateCreateTrackRequest(req CreateTrackRequest) error {
	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if req.DurationSec <= 0 {
		return fmt.Errorf("duration_sec must be positive")
	}
	if req.MediaURL == "" {
		return fmt.Errorf("media_url is required")
	}
	return nil
}
