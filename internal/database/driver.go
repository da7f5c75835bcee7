package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
)

// Row is the single-row scan surface shared by *sql.Row and test fakes.
type Row interface {
	Scan(dest ...interface{}) error
}

// Rows is satisfied by *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close() error
}

// Executor is the statement surface available both on a bare connection and
// inside a transaction. Loaders are written against this so they can run in
// either scope.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) Row
}

type Driver interface {
	Executor
	Connect(dsn string) error
	Close() error
	ExecuteTx(ctx context.Context, txFunc func(tx Executor) error) error
}

// Credentials identify one warehouse. The recognized keys match the
// DB_CREDENTIALS JSON blob: user, password, host, port, database.
type Credentials struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func New(name string) (Driver, error) {
	switch name {
	case "mysql":
		return &MySQLDriver{}, nil
	case "postgres":
		return &PostgresDriver{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", name)
}

func DSN(name string, c Credentials) (string, error) {
	switch name {
	case "mysql":
		return mysqlDSN(c), nil
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			url.QueryEscape(c.User), url.QueryEscape(c.Password),
			c.Host, c.Port, c.Database), nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", name)
}

// queryable abstracts *sql.DB and *sql.Tx.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type sqlExecutor struct {
	q queryable
}

func (e sqlExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return e.q.ExecContext(ctx, query, args...)
}

func (e sqlExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return e.q.QueryContext(ctx, query, args...)
}

func (e sqlExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return e.q.QueryRowContext(ctx, query, args...)
}

func executeTx(ctx context.Context, db *sql.DB, txFunc func(tx Executor) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // re-panic after rollback
		} else if err != nil {
			tx.Rollback() // err is non-nil; don't change it
		} else {
			err = tx.Commit() // err is nil; if Commit returns error, update err
		}
	}()

	err = txFunc(sqlExecutor{q: tx})
	return err
}
