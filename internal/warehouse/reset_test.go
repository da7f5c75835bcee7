package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-warehouse/internal/database"
)

// fakeResetDriver records every statement and fails the truncates named in
// failTables, the way a fresh database without those tables would.
type fakeResetDriver struct {
	queries    []string
	failTables map[string]bool
}

func (f *fakeResetDriver) Connect(string) error { return nil }
func (f *fakeResetDriver) Close() error         { return nil }

func (f *fakeResetDriver) ExecuteTx(ctx context.Context, fn func(tx database.Executor) error) error {
	return fn(f)
}

func (f *fakeResetDriver) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	f.queries = append(f.queries, query)
	if table, ok := strings.CutPrefix(query, "TRUNCATE TABLE "); ok && f.failTables[table] {
		return nil, fmt.Errorf("table %q does not exist", table)
	}
	return nil, nil
}

func (f *fakeResetDriver) QueryContext(context.Context, string, ...interface{}) (database.Rows, error) {
	return nil, nil
}

func (f *fakeResetDriver) QueryRowContext(context.Context, string, ...interface{}) database.Row {
	return nil
}

func TestResetSurvivesMissingTables(t *testing.T) {
	fd := &fakeResetDriver{failTables: map[string]bool{"fact_video": true, "dim_tag": true}}

	require.NoError(t, Reset(context.Background(), fd, zerolog.Nop()),
		"a fresh database without some tables must not abort the reload")

	assert.Equal(t, database.DisableFKChecksSQL(fd), fd.queries[0])
	assert.Equal(t, database.EnableFKChecksSQL(fd), fd.queries[len(fd.queries)-1],
		"constraint checks come back on even after failed truncates")

	truncated := 0
	for _, q := range fd.queries {
		if strings.HasPrefix(q, "TRUNCATE TABLE ") {
			truncated++
		}
	}
	assert.Equal(t, len(AllTables), truncated, "every registered table is attempted")
}
