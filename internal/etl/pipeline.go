package etl

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"video-warehouse/internal/database"
	"video-warehouse/internal/metrics"
	"video-warehouse/internal/runner"
	"video-warehouse/internal/warehouse"
)

const dateColumn = "publish_date_approx"

// Pipeline is one truncate-and-reload run: reset, extract, date repair,
// dimension loads in dependency order, fact load, bridges. Dimension and
// fact inserts commit independently, so an abort partway leaves the
// already-committed loads in place — best-effort semantics with the
// partial state visible in the report.
type Pipeline struct {
	DB      database.Driver
	CSVPath string
	Log     zerolog.Logger
	Report  *runner.Report
}

func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Report.Stage("ensure_schema", func() error {
		return warehouse.EnsureSchema(ctx, p.DB)
	}); err != nil {
		return err
	}

	if err := p.Report.Stage("reset", func() error {
		return warehouse.Reset(ctx, p.DB, p.Log)
	}); err != nil {
		return err
	}

	var records []Record
	if err := p.Report.Stage("extract", func() error {
		var err error
		_, records, err = ReadCSV(p.CSVPath)
		return err
	}); err != nil {
		return err
	}
	metrics.RowsRead.Add(float64(len(records)))
	p.Log.Info().Int("rows", len(records)).Str("file", p.CSVPath).Msg("extract read")

	p.Report.Stage("normalize_dates", func() error {
		var dropped int
		records, dropped = NormalizeDates(records, dateColumn)
		if dropped > 0 {
			metrics.RowsDropped.Add(float64(dropped))
			p.Log.Warn().Int("rows_removed", dropped).Msg("rows with unrecoverable dates removed")
		}
		return nil
	})

	if err := p.Report.Stage("dimensions", func() error {
		return p.loadDimensions(ctx, records)
	}); err != nil {
		return err
	}

	if err := p.Report.Stage("fact", func() error {
		return LoadFact(ctx, p.DB, records, p.Report.ObserveBatch, p.Log)
	}); err != nil {
		return err
	}

	return p.Report.Stage("bridges", func() error {
		return LoadBridges(ctx, p.DB, records, p.Log)
	})
}

// loadDimensions runs every dimension load in dependency order: region
// first so country rows can carry region_id, then the independent
// dimensions. Each load commits on its own; an error aborts the pipeline
// but leaves prior dimension loads in place.
func (p *Pipeline) loadDimensions(ctx context.Context, records []Record) error {
	loads := []struct {
		dim     warehouse.Dimension
		mapping ColumnMapping
		// require lists non-key columns that must be non-null for a row to
		// feed the dimension insert. Country needs it: dedup keeps the first
		// occurrence per key, and a first row without a resolved region would
		// pin the country to a NULL region_id for the whole load.
		require []string
	}{
		{dim: warehouse.Region, mapping: ColumnMapping{{"region", "name"}}},
		{dim: warehouse.Country, mapping: ColumnMapping{{"country", "country_code"}, {"country", "name"}, {"region_id", "region_id"}}, require: []string{"region_id"}},
		{dim: warehouse.Platform, mapping: ColumnMapping{{"platform", "name"}}},
		{dim: warehouse.Language, mapping: ColumnMapping{{"language", "language_code"}}},
		{dim: warehouse.Category, mapping: ColumnMapping{{"category", "name"}}},
		{dim: warehouse.TrafficSource, mapping: ColumnMapping{{"traffic_source", "name"}}},
		{dim: warehouse.Creator, mapping: ColumnMapping{{"author_handle", "handle"}, {"creator_avg_views", "avg_views"}, {"creator_tier", "tier"}}},
		{dim: warehouse.Sound, mapping: ColumnMapping{{"sound_type", "sound_type"}, {"music_track", "music_track"}}},
		{dim: warehouse.Device, mapping: ColumnMapping{{"device_type", "device_type"}, {"device_brand", "device_brand"}}},
		{dim: warehouse.TimeBucket, mapping: ColumnMapping{{"year_month", "year_month"}, {"season", "season"}, {"event_season", "event_season"}}},
	}

	for _, load := range loads {
		source := records
		if len(load.require) > 0 {
			source = withNonNull(records, load.require)
		}
		lookup, err := LoadDimension(ctx, p.DB, source, load.mapping, load.dim)
		if err != nil {
			return fmt.Errorf("loading %s: %w", load.dim.Table, err)
		}

		keySources, err := keySourceColumns(load.mapping, load.dim)
		if err != nil {
			return err
		}
		lookup.Apply(records, keySources, load.dim.IDColumn)

		metrics.DimensionRows.WithLabelValues(load.dim.Name).Add(float64(len(lookup)))
		p.Log.Info().Str("dimension", load.dim.Table).Int("keys", len(lookup)).Msg("dimension loaded")
	}
	return nil
}

func withNonNull(records []Record, cols []string) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		keep := true
		for _, col := range cols {
			if rec[col] == nil {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}
