package trends

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-warehouse/internal/database"
)

// fakeStore records the statements Save issues.
type fakeStore struct {
	queries []string
	rows    int
}

func (f *fakeStore) Connect(string) error { return nil }
func (f *fakeStore) Close() error         { return nil }

func (f *fakeStore) ExecuteTx(ctx context.Context, fn func(tx database.Executor) error) error {
	return fn(f)
}

func (f *fakeStore) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.queries = append(f.queries, query)
	if strings.HasPrefix(query, "INSERT INTO") {
		f.rows += len(args) / 3
	}
	return nil, nil
}

func (f *fakeStore) QueryContext(context.Context, string, ...interface{}) (database.Rows, error) {
	return nil, nil
}

func (f *fakeStore) QueryRowContext(context.Context, string, ...interface{}) database.Row {
	return nil
}

func TestSaveReplacesTable(t *testing.T) {
	fs := &fakeStore{}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{Date: day, Keyword: "dance", Score: 42},
		{Date: day, Keyword: "makeup", Score: 7},
		{Date: day.AddDate(0, 0, 7), Keyword: "dance", Score: 55},
	}

	require.NoError(t, Save(context.Background(), fs, points, zerolog.Nop()))

	require.GreaterOrEqual(t, len(fs.queries), 3)
	assert.Contains(t, fs.queries[0], "DROP TABLE IF EXISTS fact_google_trends")
	assert.Contains(t, fs.queries[1], "CREATE TABLE fact_google_trends")
	assert.Contains(t, fs.queries[1], "INT AUTO_INCREMENT PRIMARY KEY")
	assert.Equal(t, 3, fs.rows)
}

func TestSaveEmptyLeavesTableAlone(t *testing.T) {
	fs := &fakeStore{}
	require.NoError(t, Save(context.Background(), fs, nil, zerolog.Nop()))
	assert.Empty(t, fs.queries, "an empty run must not drop the previous snapshot")
}
