package trends

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"video-warehouse/internal/database"
	"video-warehouse/internal/warehouse"
)

const insertBatchSize = 500

// Save fully replaces the trends fact table with this run's series: drop,
// recreate with an explicit primary key, bulk insert. It is a rolling
// snapshot — keywords absent from the current run lose their history until
// they surface again. An empty result set leaves the existing table alone.
func Save(ctx context.Context, db database.Driver, points []Point, log zerolog.Logger) error {
	if len(points) == 0 {
		log.Warn().Msg("no trend data to save")
		return nil
	}

	return db.ExecuteTx(ctx, func(tx database.Executor) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+warehouse.TrendsTable); err != nil {
			return fmt.Errorf("dropping %s: %w", warehouse.TrendsTable, err)
		}

		ddl := fmt.Sprintf(`CREATE TABLE %s (
			id %s,
			search_date DATE,
			keyword VARCHAR(255),
			interest_score INTEGER
		)`, warehouse.TrendsTable, database.AutoIncrementPK(db))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating %s: %w", warehouse.TrendsTable, err)
		}

		cols := []string{"search_date", "keyword", "interest_score"}
		for start := 0; start < len(points); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(points) {
				end = len(points)
			}
			batch := points[start:end]

			query := database.InsertSQL(db, warehouse.TrendsTable, cols, len(batch))
			args := make([]interface{}, 0, len(batch)*3)
			for _, p := range batch {
				args = append(args, p.Date, p.Keyword, p.Score)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("inserting into %s: %w", warehouse.TrendsTable, err)
			}
		}

		log.Info().Int("rows", len(points)).Msg("trend series replaced")
		return nil
	})
}
