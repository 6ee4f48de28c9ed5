package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/groupcast/go/internal/dbconfig"
)

// Track mirrors the JSON snapshot structure
type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	DurationSec float64 `json:"duration_sec"`
	MediaURL    string  `json:"media_url"`
	CreatedAt   string  `json:"created_at"`
}

func main() {
	// 1) Load the JSON snapshot
	data, err := os.ReadFile("go/internal/assets/tracks.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(tracks)
		inserted int
		skipped  int
		errs     int
	)

	for _, t := range tracks {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO tracks (
              id, title, artist, duration_sec, media_url, created_at
            ) VALUES (
              $1,$2,$3,$4,$5,$6
            )
            ON CONFLICT (id) DO NOTHING
        `,
			t.ID, t.Title, t.Artist, t.DurationSec, t.MediaURL, t.CreatedAt,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting track %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Tracks seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
