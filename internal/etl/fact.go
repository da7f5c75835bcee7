package etl

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"video-warehouse/internal/database"
	"video-warehouse/internal/metrics"
	"video-warehouse/internal/warehouse"
)

// FactColumns maps source columns (CSV names plus resolved foreign keys) to
// fact_video columns. Only pairs whose source is actually present are
// loaded, so a narrower extract still works.
var FactColumns = ColumnMapping{
	{"row_id", "row_id"},
	{"platform_id", "platform_id"},
	{"country_id", "country_id"},
	{"language_id", "language_id"},
	{"category_id", "category_id"},
	{"creator_id", "creator_id"},
	{"sound_id", "sound_id"},
	{"device_id", "device_id"},
	{"traffic_source_id", "traffic_source_id"},
	{"region_id", "region_id"},
	{"time_bucket_id", "time_bucket_id"},
	{"publish_date_approx", "publish_date_approx"},
	{"publish_dayofweek", "publish_dayofweek"},
	{"publish_period", "publish_period"},
	{"week_of_year", "week_of_year"},
	{"upload_hour", "upload_hour"},
	{"is_weekend", "is_weekend"},
	{"title", "title"},
	{"title_keywords", "title_keywords"},
	{"title_length", "title_length"},
	{"has_emoji", "has_emoji"},
	{"duration_sec", "duration_sec"},
	{"genre", "genre"},
	{"category", "category_text"},
	{"trend_label", "trend_label"},
	{"trend_type", "trend_type"},
	{"trend_duration_days", "trend_duration_days"},
	{"engagement_velocity", "engagement_velocity"},
	{"season", "season"},
	{"event_season", "event_season"},
	{"source_hint", "source_hint"},
	{"notes", "notes"},
	{"tags", "tags_raw"},
	{"sample_comments", "sample_comments"},
	{"device_type", "device_type_raw"},
	{"device_brand", "device_brand_raw"},
	{"views", "views"},
	{"likes", "likes"},
	{"comments", "comments"},
	{"shares", "shares"},
	{"saves", "saves"},
	{"dislikes", "dislikes"},
	{"creator_avg_views", "creator_avg_views"},
	{"engagement_total", "engagement_total"},
	{"engagement_rate", "engagement_rate"},
	{"like_rate", "like_rate"},
	{"dislike_rate", "dislike_rate"},
	{"comment_ratio", "comment_ratio"},
	{"share_rate", "share_rate"},
	{"save_rate", "save_rate"},
	{"like_dislike_ratio", "like_dislike_ratio"},
	{"engagement_per_1k", "engagement_per_1k"},
	{"engagement_like_rate", "engagement_like_rate"},
	{"engagement_comment_rate", "engagement_comment_rate"},
	{"engagement_share_rate", "engagement_share_rate"},
	{"avg_watch_time_sec", "avg_watch_time_sec"},
	{"completion_rate", "completion_rate"},
}

const factBatchSize = 500

// LoadFact bulk-appends the key-resolved rows to fact_video. Foreign keys
// were already resolved (or nulled) upstream, so no further validation
// happens here. A failed batch is logged and counted; remaining batches
// still run, which can leave referential gaps for the bridges — accepted
// best-effort behavior.
func LoadFact(ctx context.Context, db database.Driver, records []Record, observe func(time.Duration), log zerolog.Logger) error {
	if len(records) == 0 {
		return nil
	}

	mapping := presentColumns(records[0], FactColumns)
	targets := make([]string, len(mapping))
	for i, col := range mapping {
		targets[i] = col.Target
	}

	loaded := 0
	for start := 0; start < len(records); start += factBatchSize {
		end := start + factBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		query := database.InsertSQL(db, warehouse.FactTable, targets, len(batch))
		args := make([]interface{}, 0, len(batch)*len(mapping))
		for _, rec := range batch {
			for _, col := range mapping {
				args = append(args, rec[col.Source])
			}
		}

		began := time.Now()
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			metrics.BatchErrors.WithLabelValues("fact").Inc()
			log.Error().Err(err).Int("rows", len(batch)).Msg("fact batch failed")
			continue
		}
		if observe != nil {
			observe(time.Since(began))
		}
		loaded += len(batch)
	}

	metrics.FactRows.Add(float64(loaded))
	log.Info().Int("rows", loaded).Msg("fact_video loaded")
	return nil
}

func presentColumns(sample Record, mapping ColumnMapping) ColumnMapping {
	present := make(ColumnMapping, 0, len(mapping))
	for _, col := range mapping {
		if _, ok := sample[col.Source]; ok {
			present = append(present, col)
		}
	}
	return present
}
