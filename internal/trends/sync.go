package trends

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"video-warehouse/internal/config"
	"video-warehouse/internal/database"
	"video-warehouse/internal/metrics"
)

// Run mines the warehouse for query keywords, fetches their interest
// series in batches and replaces the trends fact table. A failed batch is
// logged and skipped; partial results are acceptable, the affected
// keywords are simply absent until the next successful run.
func Run(ctx context.Context, db database.Driver, client *Client, settings config.TrendsSettings, log zerolog.Logger) error {
	keywords, err := TopKeywords(ctx, db, settings.TopKeywords)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		log.Warn().Msg("no keywords found in warehouse titles")
		return nil
	}
	log.Info().Strs("keywords", keywords).Msg("top keywords extracted")

	var points []Point
	batches := batchKeywords(keywords, settings.BatchSize)
	for i, batch := range batches {
		log.Info().Int("batch", i+1).Int("batches", len(batches)).Strs("keywords", batch).Msg("querying interest over time")

		var batchPoints []Point
		fetch := func() error {
			var err error
			batchPoints, err = client.InterestOverTime(ctx, batch, settings.Window)
			return err
		}
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(settings.ErrorBackoff), 1), ctx)
		if err := backoff.Retry(fetch, policy); err != nil {
			metrics.ScraperBatches.WithLabelValues("trends", "error").Inc()
			log.Error().Err(err).Int("batch", i+1).Msg("batch failed, continuing")
			continue
		}

		metrics.ScraperBatches.WithLabelValues("trends", "ok").Inc()
		if len(batchPoints) == 0 {
			log.Warn().Int("batch", i+1).Msg("batch returned no data")
		}
		points = append(points, batchPoints...)

		if i < len(batches)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settings.BatchDelay):
			}
		}
	}

	return Save(ctx, db, points, log)
}

func batchKeywords(keywords []string, size int) [][]string {
	if size <= 0 {
		size = 5
	}
	var batches [][]string
	for start := 0; start < len(keywords); start += size {
		end := start + size
		if end > len(keywords) {
			end = len(keywords)
		}
		batches = append(batches, keywords[start:end])
	}
	return batches
}
