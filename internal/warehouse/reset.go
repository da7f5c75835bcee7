package warehouse

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"video-warehouse/internal/database"
)

// Reset empties every registered table so the load starts from a clean
// warehouse. Constraint checks are disabled for the duration; a truncate
// failure on an individual table is swallowed, because a fresh database
// without that table yet must not abort the pipeline.
func Reset(ctx context.Context, db database.Driver, log zerolog.Logger) error {
	log.Info().Msg("emptying warehouse tables")

	create, rollback, release := database.SavepointSQL(db, "truncate_guard")

	return db.ExecuteTx(ctx, func(tx database.Executor) error {
		if _, err := tx.ExecContext(ctx, database.DisableFKChecksSQL(db)); err != nil {
			return fmt.Errorf("disabling constraint checks: %w", err)
		}
		for _, table := range AllTables {
			if create != "" {
				if _, err := tx.ExecContext(ctx, create); err != nil {
					return fmt.Errorf("creating savepoint: %w", err)
				}
			}
			if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
				log.Debug().Str("table", table).Err(err).Msg("truncate skipped")
				if rollback != "" {
					if _, err := tx.ExecContext(ctx, rollback); err != nil {
						return fmt.Errorf("recovering from failed truncate: %w", err)
					}
				}
				continue
			}
			if release != "" {
				if _, err := tx.ExecContext(ctx, release); err != nil {
					return fmt.Errorf("releasing savepoint: %w", err)
				}
			}
		}
		if _, err := tx.ExecContext(ctx, database.EnableFKChecksSQL(db)); err != nil {
			return fmt.Errorf("re-enabling constraint checks: %w", err)
		}
		return nil
	})
}
