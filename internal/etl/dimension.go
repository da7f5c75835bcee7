package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"video-warehouse/internal/database"
	"video-warehouse/internal/warehouse"
)

// Column pairs a source column with its target column in the warehouse.
// Mappings are ordered so the generated SQL is stable.
type Column struct {
	Source string
	Target string
}

type ColumnMapping []Column

// keySep joins multi-column natural keys into one lookup key. Callers never
// see it; they go through Key.
const keySep = "\x1f"

func Key(vals ...string) string {
	return strings.Join(vals, keySep)
}

// Lookup maps a natural key to its surrogate id.
type Lookup map[string]int64

const dimensionBatchSize = 500

// LoadDimension inserts every unique natural-key combination from the
// source rows into the dimension table with insert-if-absent semantics,
// then re-reads the table and returns the natural-key → surrogate-id map.
// Rows with a null in any key column are skipped. Re-running the load never
// duplicates dimension rows.
func LoadDimension(ctx context.Context, db database.Driver, records []Record, mapping ColumnMapping, dim warehouse.Dimension) (Lookup, error) {
	keySources, err := keySourceColumns(mapping, dim)
	if err != nil {
		return nil, err
	}

	targets := make([]string, len(mapping))
	for i, col := range mapping {
		targets[i] = col.Target
	}

	seen := make(map[string]bool)
	var rows [][]interface{}
	for _, rec := range records {
		vals, ok := stringValues(rec, keySources)
		if !ok {
			continue
		}
		key := Key(vals...)
		if seen[key] {
			continue
		}
		seen[key] = true

		row := make([]interface{}, len(mapping))
		for i, col := range mapping {
			row[i] = rec[col.Source]
		}
		rows = append(rows, row)
	}

	for start := 0; start < len(rows); start += dimensionBatchSize {
		end := start + dimensionBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		query := database.InsertIgnoreSQL(db, dim.Table, targets, len(batch))
		args := make([]interface{}, 0, len(batch)*len(targets))
		for _, row := range batch {
			args = append(args, row...)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("inserting into %s: %w", dim.Table, err)
		}
	}

	return readLookup(ctx, db, dim)
}

// readLookup re-selects the full dimension and builds the surrogate-id map.
// The two-step insert-then-select keeps insert-if-absent portable across
// dialects; at this batch scale the full re-read is cheap.
func readLookup(ctx context.Context, db database.Driver, dim warehouse.Dimension) (Lookup, error) {
	cols := make([]string, 0, len(dim.Key)+1)
	cols = append(cols, database.QuoteIdent(db, dim.IDColumn))
	for _, k := range dim.Key {
		cols = append(cols, database.QuoteIdent(db, k))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), dim.Table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dim.Table, err)
	}
	defer rows.Close()

	lookup := make(Lookup)
	for rows.Next() {
		var id int64
		keyVals := make([]sql.NullString, len(dim.Key))
		dest := make([]interface{}, 0, len(dim.Key)+1)
		dest = append(dest, &id)
		for i := range keyVals {
			dest = append(dest, &keyVals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dim.Table, err)
		}
		parts := make([]string, len(keyVals))
		for i, v := range keyVals {
			parts[i] = v.String
		}
		lookup[Key(parts...)] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", dim.Table, err)
	}
	return lookup, nil
}

// Apply resolves each record's natural key through the lookup and stores
// the surrogate id under idColumn. Unmatched or null keys resolve to a null
// foreign key, never an error.
func (l Lookup) Apply(records []Record, keySources []string, idColumn string) {
	for _, rec := range records {
		vals, ok := stringValues(rec, keySources)
		if !ok {
			rec[idColumn] = nil
			continue
		}
		if id, found := l[Key(vals...)]; found {
			rec[idColumn] = id
		} else {
			rec[idColumn] = nil
		}
	}
}

func keySourceColumns(mapping ColumnMapping, dim warehouse.Dimension) ([]string, error) {
	sources := make([]string, len(dim.Key))
	for i, target := range dim.Key {
		found := false
		for _, col := range mapping {
			if col.Target == target {
				sources[i] = col.Source
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("dimension %s: key column %s missing from mapping", dim.Name, target)
		}
	}
	return sources, nil
}

func stringValues(rec Record, cols []string) ([]string, bool) {
	vals := make([]string, len(cols))
	for i, col := range cols {
		s, ok := rec[col].(string)
		if !ok {
			return nil, false
		}
		vals[i] = s
	}
	return vals, true
}
