package warehouse

import (
	"context"
	"fmt"

	"video-warehouse/internal/database"
)

// DDL returns the CREATE TABLE statements for the full star schema, in
// dependency order. Only the surrogate-key fragment differs per dialect.
func DDL(db database.Driver) []string {
	pk := database.AutoIncrementPK(db)
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_region (
			region_id %s,
			name VARCHAR(255),
			UNIQUE (name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_country (
			country_id %s,
			country_code VARCHAR(16),
			name VARCHAR(255),
			region_id INT,
			UNIQUE (country_code),
			FOREIGN KEY (region_id) REFERENCES dim_region(region_id)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_platform (
			platform_id %s,
			name VARCHAR(255),
			UNIQUE (name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_language (
			language_id %s,
			language_code VARCHAR(16),
			UNIQUE (language_code)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_category (
			category_id %s,
			name VARCHAR(255),
			UNIQUE (name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_traffic_source (
			traffic_source_id %s,
			name VARCHAR(255),
			UNIQUE (name)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_creator (
			creator_id %s,
			handle VARCHAR(255),
			avg_views DOUBLE PRECISION,
			tier VARCHAR(64),
			UNIQUE (handle)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_sound (
			sound_id %s,
			sound_type VARCHAR(64),
			music_track VARCHAR(255),
			is_global_hit SMALLINT DEFAULT 0,
			chart_rank INT,
			UNIQUE (sound_type, music_track)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_device (
			device_id %s,
			device_type VARCHAR(64),
			device_brand VARCHAR(64),
			UNIQUE (device_type, device_brand)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_time_bucket (
			time_bucket_id %s,
			year_month VARCHAR(7),
			season VARCHAR(32),
			event_season VARCHAR(64),
			UNIQUE (year_month, season, event_season)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_hashtag (
			hashtag_id %s,
			hashtag VARCHAR(255),
			UNIQUE (hashtag)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dim_tag (
			tag_id %s,
			tag VARCHAR(255),
			UNIQUE (tag)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fact_video (
			video_id %s,
			row_id VARCHAR(64),
			platform_id INT,
			country_id INT,
			language_id INT,
			category_id INT,
			creator_id INT,
			sound_id INT,
			device_id INT,
			traffic_source_id INT,
			region_id INT,
			time_bucket_id INT,
			publish_date_approx DATE,
			publish_dayofweek VARCHAR(16),
			publish_period VARCHAR(32),
			week_of_year INT,
			upload_hour INT,
			is_weekend SMALLINT,
			title TEXT,
			title_keywords TEXT,
			title_length INT,
			has_emoji SMALLINT,
			duration_sec DOUBLE PRECISION,
			genre VARCHAR(128),
			category_text VARCHAR(255),
			trend_label VARCHAR(128),
			trend_type VARCHAR(128),
			trend_duration_days DOUBLE PRECISION,
			engagement_velocity DOUBLE PRECISION,
			season VARCHAR(32),
			event_season VARCHAR(64),
			source_hint VARCHAR(255),
			notes TEXT,
			tags_raw TEXT,
			sample_comments TEXT,
			device_type_raw VARCHAR(64),
			device_brand_raw VARCHAR(64),
			views DOUBLE PRECISION,
			likes DOUBLE PRECISION,
			comments DOUBLE PRECISION,
			shares DOUBLE PRECISION,
			saves DOUBLE PRECISION,
			dislikes DOUBLE PRECISION,
			creator_avg_views DOUBLE PRECISION,
			engagement_total DOUBLE PRECISION,
			engagement_rate DOUBLE PRECISION,
			like_rate DOUBLE PRECISION,
			dislike_rate DOUBLE PRECISION,
			comment_ratio DOUBLE PRECISION,
			share_rate DOUBLE PRECISION,
			save_rate DOUBLE PRECISION,
			like_dislike_ratio DOUBLE PRECISION,
			engagement_per_1k DOUBLE PRECISION,
			engagement_like_rate DOUBLE PRECISION,
			engagement_comment_rate DOUBLE PRECISION,
			engagement_share_rate DOUBLE PRECISION,
			avg_watch_time_sec DOUBLE PRECISION,
			completion_rate DOUBLE PRECISION,
			UNIQUE (row_id),
			FOREIGN KEY (platform_id) REFERENCES dim_platform(platform_id),
			FOREIGN KEY (country_id) REFERENCES dim_country(country_id),
			FOREIGN KEY (language_id) REFERENCES dim_language(language_id),
			FOREIGN KEY (category_id) REFERENCES dim_category(category_id),
			FOREIGN KEY (creator_id) REFERENCES dim_creator(creator_id),
			FOREIGN KEY (sound_id) REFERENCES dim_sound(sound_id),
			FOREIGN KEY (device_id) REFERENCES dim_device(device_id),
			FOREIGN KEY (traffic_source_id) REFERENCES dim_traffic_source(traffic_source_id),
			FOREIGN KEY (region_id) REFERENCES dim_region(region_id),
			FOREIGN KEY (time_bucket_id) REFERENCES dim_time_bucket(time_bucket_id)
		)`, pk),
		`CREATE TABLE IF NOT EXISTS bridge_video_hashtag (
			video_id INT,
			hashtag_id INT,
			FOREIGN KEY (video_id) REFERENCES fact_video(video_id),
			FOREIGN KEY (hashtag_id) REFERENCES dim_hashtag(hashtag_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bridge_video_tag (
			video_id INT,
			tag_id INT,
			FOREIGN KEY (video_id) REFERENCES fact_video(video_id),
			FOREIGN KEY (tag_id) REFERENCES dim_tag(tag_id)
		)`,
	}
}

// EnsureSchema creates any missing warehouse tables. Existing tables are
// left untouched.
func EnsureSchema(ctx context.Context, db database.Driver) error {
	for _, stmt := range DDL(db) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
