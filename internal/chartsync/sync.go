package chartsync

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"video-warehouse/internal/config"
	"video-warehouse/internal/database"
	"video-warehouse/internal/metrics"
)

// Run fetches the leaderboard, matches it against the warehouse sound
// dimension and rewrites the hit flags. Fetch or parse failure aborts with
// no state change; once matching starts, the reset and the updates commit
// in one transaction (full-replace semantics: zero matches leaves every
// track unflagged).
func Run(ctx context.Context, db database.Driver, settings config.ChartSettings, log zerolog.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, settings.URL, nil)
	if err != nil {
		return fmt.Errorf("building leaderboard request: %w", err)
	}
	req.Header.Set("User-Agent", settings.UserAgent)

	client := &http.Client{Timeout: settings.FetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		metrics.ScraperBatches.WithLabelValues("chart_sync", "error").Inc()
		return fmt.Errorf("fetching leaderboard: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.ScraperBatches.WithLabelValues("chart_sync", "error").Inc()
		return fmt.Errorf("fetching leaderboard: unexpected status %d", resp.StatusCode)
	}

	hits, err := ParseHits(resp.Body)
	if err != nil {
		metrics.ScraperBatches.WithLabelValues("chart_sync", "error").Inc()
		return err
	}
	log.Info().Int("hits", len(hits)).Msg("leaderboard parsed")

	return Apply(ctx, db, hits, settings, log)
}

// Apply resets every track's hit state and reapplies the current matches,
// all inside one transaction.
func Apply(ctx context.Context, db database.Driver, hits []Hit, settings config.ChartSettings, log zerolog.Logger) error {
	return db.ExecuteTx(ctx, func(tx database.Executor) error {
		if _, err := tx.ExecContext(ctx, "UPDATE dim_sound SET is_global_hit = 0, chart_rank = NULL"); err != nil {
			return fmt.Errorf("resetting hit flags: %w", err)
		}

		tracks, err := readTracks(ctx, tx)
		if err != nil {
			return err
		}

		updates := Match(tracks, hits, settings.MatchThreshold)
		if len(updates) == 0 {
			log.Warn().Msg("no warehouse tracks match today's hits")
			return nil
		}

		query := database.Rebind(db, "UPDATE dim_sound SET is_global_hit = 1, chart_rank = ? WHERE sound_id = ?")
		batchSize := settings.UpdateBatchSize
		if batchSize <= 0 {
			batchSize = 100
		}
		for start := 0; start < len(updates); start += batchSize {
			end := start + batchSize
			if end > len(updates) {
				end = len(updates)
			}
			for _, u := range updates[start:end] {
				if _, err := tx.ExecContext(ctx, query, u.Rank, u.SoundID); err != nil {
					return fmt.Errorf("flagging sound %d: %w", u.SoundID, err)
				}
			}
		}

		metrics.ScraperBatches.WithLabelValues("chart_sync", "ok").Inc()
		log.Info().Int("matches", len(updates)).Msg("hit flags synchronized")
		return nil
	})
}

func readTracks(ctx context.Context, tx database.Executor) ([]Track, error) {
	rows, err := tx.QueryContext(ctx, "SELECT sound_id, music_track FROM dim_sound")
	if err != nil {
		return nil, fmt.Errorf("reading dim_sound: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var id int64
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning dim_sound: %w", err)
		}
		tracks = append(tracks, Track{SoundID: id, Name: name.String})
	}
	return tracks, rows.Err()
}
