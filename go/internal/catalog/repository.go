package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements track data access against Postgres
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new catalog repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// CreateTrack inserts a new track and returns it
func (r *Repository) CreateTrack(ctx context.Context, req CreateTrackRequest) (*Track, error) {
	const query = `
		INSERT INTO tracks (id, title, artist, duration_sec, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, title, artist, duration_sec, media_url, created_at`

	var track Track
	err := r.pool.QueryRow(ctx, query, uuid.New(), req.Title, req.Artist, req.DurationSec, req.MediaURL).Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&track.DurationSec,
		&track.MediaURL,
		&track.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	return &track, nil
}

// GetTrack retrieves a track by ID
func (r *Repository) GetTrack(ctx context.Context, id uuid.UUID) (*Track, error) {
	const query = `
		SELECT id, title, artist, duration_sec, media_url, created_at
		FROM tracks
		WHERE id = $1`

	var track Track
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&track.ID,
		&track.Title,
		&track.Artist,
		&track.DurationSec,
		&track.MediaURL,
		&track.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return &track, nil
}

// ListTracks lists all tracks, newest first
func (r *Repository) ListTracks(ctx context.Context) ([]Track, error) {
	const query = `
		SELECT id, title, artist, duration_sec, media_url, created_at
		FROM tracks
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var track Track
		if err := rows.Scan(
			&track.ID,
			&track.Title,
			&track.Artist,
			&track.DurationSec,
			&track.MediaURL,
			&track.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}
	return tracks, nil
}

// DeleteTrack removes a track by ID
func (r *Repository) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM tracks WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	return nil
}
