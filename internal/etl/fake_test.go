package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"video-warehouse/internal/database"
	"video-warehouse/internal/warehouse"
)

// fakeDriver is an in-memory stand-in for the warehouse, understanding just
// enough of the generated SQL (multi-row inserts, full-table selects) to
// exercise the loaders.
type fakeDriver struct {
	tables map[string]*fakeTable
}

type fakeTable struct {
	idCol  string
	key    []string
	autoID int64
	rows   []map[string]interface{}
	byKey  map[string]int64
}

func newFakeDriver() *fakeDriver {
	fd := &fakeDriver{tables: map[string]*fakeTable{}}
	for _, dim := range []warehouse.Dimension{
		warehouse.Region, warehouse.Country, warehouse.Platform, warehouse.Language,
		warehouse.Category, warehouse.TrafficSource, warehouse.Creator, warehouse.Sound,
		warehouse.Device, warehouse.TimeBucket, warehouse.Hashtag, warehouse.Tag,
	} {
		fd.tables[dim.Table] = &fakeTable{idCol: dim.IDColumn, key: dim.Key, byKey: map[string]int64{}}
	}
	fd.tables[warehouse.FactTable] = &fakeTable{idCol: "video_id", byKey: map[string]int64{}}
	fd.tables["bridge_video_hashtag"] = &fakeTable{byKey: map[string]int64{}}
	fd.tables["bridge_video_tag"] = &fakeTable{byKey: map[string]int64{}}
	return fd
}

func (f *fakeDriver) Connect(string) error { return nil }
func (f *fakeDriver) Close() error         { return nil }

func (f *fakeDriver) ExecuteTx(ctx context.Context, fn func(tx database.Executor) error) error {
	return fn(f)
}

func (f *fakeDriver) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	q := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(q, "INSERT IGNORE INTO "):
		return nil, f.insert(strings.TrimPrefix(q, "INSERT IGNORE INTO "), args, true)
	case strings.HasPrefix(q, "INSERT INTO "):
		return nil, f.insert(strings.TrimPrefix(q, "INSERT INTO "), args, false)
	default:
		// DDL, truncates and constraint toggles are no-ops here.
		return nil, nil
	}
}

func (f *fakeDriver) insert(rest string, args []interface{}, ignore bool) error {
	open := strings.Index(rest, "(")
	closing := strings.Index(rest, ")")
	if open < 0 || closing < 0 {
		return fmt.Errorf("fake: unparseable insert %q", rest)
	}
	table := strings.TrimSpace(rest[:open])
	t, ok := f.tables[table]
	if !ok {
		return fmt.Errorf("fake: unknown table %q", table)
	}
	var cols []string
	for _, c := range strings.Split(rest[open+1:closing], ",") {
		cols = append(cols, strings.Trim(strings.TrimSpace(c), "`"))
	}
	if len(args)%len(cols) != 0 {
		return fmt.Errorf("fake: arg count %d not divisible by %d columns", len(args), len(cols))
	}

	for start := 0; start < len(args); start += len(cols) {
		rec := make(map[string]interface{}, len(cols)+1)
		for i, col := range cols {
			rec[col] = args[start+i]
		}
		if len(t.key) > 0 {
			key := t.keyOf(rec)
			if _, exists := t.byKey[key]; exists && ignore {
				continue
			}
			t.autoID++
			if t.idCol != "" {
				rec[t.idCol] = t.autoID
			}
			t.byKey[key] = t.autoID
			t.rows = append(t.rows, rec)
			continue
		}
		t.autoID++
		if t.idCol != "" {
			rec[t.idCol] = t.autoID
		}
		t.rows = append(t.rows, rec)
	}
	return nil
}

func (t *fakeTable) keyOf(rec map[string]interface{}) string {
	parts := make([]string, len(t.key))
	for i, col := range t.key {
		parts[i] = fmt.Sprintf("%v", rec[col])
	}
	return strings.Join(parts, "\x1f")
}

func (f *fakeDriver) QueryContext(_ context.Context, query string, _ ...interface{}) (database.Rows, error) {
	q := strings.TrimSpace(query)
	if !strings.HasPrefix(q, "SELECT ") {
		return nil, fmt.Errorf("fake: unsupported query %q", q)
	}
	rest := strings.TrimPrefix(q, "SELECT ")
	fromIdx := strings.Index(rest, " FROM ")
	if fromIdx < 0 {
		return nil, fmt.Errorf("fake: unsupported query %q", q)
	}
	table := strings.TrimSpace(rest[fromIdx+len(" FROM "):])
	if whereIdx := strings.Index(table, " WHERE"); whereIdx >= 0 {
		table = strings.TrimSpace(table[:whereIdx])
	}
	t, ok := f.tables[table]
	if !ok {
		return nil, fmt.Errorf("fake: unknown table %q", table)
	}
	var cols []string
	for _, c := range strings.Split(rest[:fromIdx], ",") {
		cols = append(cols, strings.Trim(strings.TrimSpace(c), "`"))
	}

	data := make([][]interface{}, 0, len(t.rows))
	for _, rec := range t.rows {
		row := make([]interface{}, len(cols))
		for i, col := range cols {
			row[i] = rec[col]
		}
		data = append(data, row)
	}
	return &fakeRows{data: data}, nil
}

func (f *fakeDriver) QueryRowContext(context.Context, string, ...interface{}) database.Row {
	return fakeRow{}
}

type fakeRow struct{}

func (fakeRow) Scan(...interface{}) error { return sql.ErrNoRows }

type fakeRows struct {
	data [][]interface{}
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("fake: scan wants %d values, row has %d", len(dest), len(row))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *int64:
			v, ok := row[i].(int64)
			if !ok {
				return fmt.Errorf("fake: column %d is %T, not int64", i, row[i])
			}
			*d = v
		case *string:
			v, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("fake: column %d is %T, not string", i, row[i])
			}
			*d = v
		case *sql.NullString:
			if row[i] == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: fmt.Sprintf("%v", row[i]), Valid: true}
			}
		default:
			return fmt.Errorf("fake: unsupported scan target %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }
