package database

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDriver runs the warehouse on Postgres through the pgx stdlib
// adapter, so loaders see the same database/sql surface as MySQL.
type PostgresDriver struct {
	db *sql.DB
}

func (pd *PostgresDriver) Connect(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	pd.db = db
	return nil
}

func (pd *PostgresDriver) Close() error {
	return pd.db.Close()
}

func (pd *PostgresDriver) ExecuteTx(ctx context.Context, txFunc func(tx Executor) error) error {
	return executeTx(ctx, pd.db, txFunc)
}

func (pd *PostgresDriver) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return sqlExecutor{q: pd.db}.ExecContext(ctx, query, args...)
}

func (pd *PostgresDriver) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return sqlExecutor{q: pd.db}.QueryContext(ctx, query, args...)
}

func (pd *PostgresDriver) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return sqlExecutor{q: pd.db}.QueryRowContext(ctx, query, args...)
}
