package etl

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"video-warehouse/internal/database"
	"video-warehouse/internal/metrics"
	"video-warehouse/internal/warehouse"
)

const bridgeBatchSize = 500

// LoadBridges resolves row_id → video_id from the freshly loaded fact table
// and populates the hashtag and tag many-to-many bridges. Elements that fail
// to upsert or resolve are dropped silently; a failed bridge insert is
// logged and does not abort the sibling bridge.
func LoadBridges(ctx context.Context, db database.Driver, records []Record, log zerolog.Logger) error {
	videoIDs, err := readVideoIDs(ctx, db)
	if err != nil {
		return err
	}

	if hasColumn(records, "hashtag") {
		if err := loadBridge(ctx, db, records, bridgeSpec{
			column:      "hashtag",
			multiValued: false,
			dim:         warehouse.Hashtag,
			table:       "bridge_video_hashtag",
		}, videoIDs, log); err != nil {
			metrics.BatchErrors.WithLabelValues("bridge_video_hashtag").Inc()
			log.Error().Err(err).Msg("hashtag bridge failed")
		}
	}

	if hasColumn(records, "tags") {
		if err := loadBridge(ctx, db, records, bridgeSpec{
			column:      "tags",
			multiValued: true,
			dim:         warehouse.Tag,
			table:       "bridge_video_tag",
		}, videoIDs, log); err != nil {
			metrics.BatchErrors.WithLabelValues("bridge_video_tag").Inc()
			log.Error().Err(err).Msg("tag bridge failed")
		}
	}
	return nil
}

type bridgeSpec struct {
	column      string
	multiValued bool
	dim         warehouse.Dimension
	table       string
}

func loadBridge(ctx context.Context, db database.Driver, records []Record, spec bridgeSpec, videoIDs Lookup, log zerolog.Logger) error {
	type pair struct {
		videoID   int64
		elementID int64
	}

	// Explode the column into (row_id, element) pairs, deduplicated per video.
	type exploded struct {
		rowID   string
		element string
	}
	var values []exploded
	elementSeen := make(map[string]bool)
	var elementRecords []Record
	for _, rec := range records {
		rowID, ok := rec["row_id"].(string)
		if !ok {
			continue
		}
		raw, ok := rec[spec.column].(string)
		if !ok {
			continue
		}
		perVideo := make(map[string]bool)
		for _, element := range splitValues(raw, spec.multiValued) {
			if perVideo[element] {
				continue
			}
			perVideo[element] = true
			values = append(values, exploded{rowID: rowID, element: element})
			if !elementSeen[element] {
				elementSeen[element] = true
				elementRecords = append(elementRecords, Record{spec.dim.Key[0]: element})
			}
		}
	}
	if len(values) == 0 {
		return nil
	}

	mapping := ColumnMapping{{Source: spec.dim.Key[0], Target: spec.dim.Key[0]}}
	elements, err := LoadDimension(ctx, db, elementRecords, mapping, spec.dim)
	if err != nil {
		return err
	}

	pairSeen := make(map[pair]bool)
	var pairs []pair
	for _, v := range values {
		videoID, ok := videoIDs[v.rowID]
		if !ok {
			continue
		}
		elementID, ok := elements[v.element]
		if !ok {
			continue
		}
		p := pair{videoID: videoID, elementID: elementID}
		if pairSeen[p] {
			continue
		}
		pairSeen[p] = true
		pairs = append(pairs, p)
	}

	cols := []string{"video_id", spec.dim.IDColumn}
	for start := 0; start < len(pairs); start += bridgeBatchSize {
		end := start + bridgeBatchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := pairs[start:end]

		query := database.InsertSQL(db, spec.table, cols, len(batch))
		args := make([]interface{}, 0, len(batch)*2)
		for _, p := range batch {
			args = append(args, p.videoID, p.elementID)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", spec.table, err)
		}
	}

	log.Info().Str("bridge", spec.table).Int("pairs", len(pairs)).Msg("bridge loaded")
	return nil
}

// splitValues turns a raw cell into its elements: the whole trimmed cell
// for single-valued columns, comma-separated parts for multi-valued ones.
// Empty strings are discarded.
func splitValues(raw string, multiValued bool) []string {
	if !multiValued {
		if v := strings.TrimSpace(raw); v != "" {
			return []string{v}
		}
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func readVideoIDs(ctx context.Context, db database.Driver) (Lookup, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		database.QuoteIdent(db, "row_id"), database.QuoteIdent(db, "video_id"), warehouse.FactTable)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading fact_video ids: %w", err)
	}
	defer rows.Close()

	lookup := make(Lookup)
	for rows.Next() {
		var rowID string
		var videoID int64
		if err := rows.Scan(&rowID, &videoID); err != nil {
			return nil, fmt.Errorf("scanning fact_video ids: %w", err)
		}
		lookup[rowID] = videoID
	}
	return lookup, rows.Err()
}

func hasColumn(records []Record, col string) bool {
	if len(records) == 0 {
		return false
	}
	_, ok := records[0][col]
	return ok
}
