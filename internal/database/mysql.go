package database

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
)

type MySQLDriver struct {
	db *sql.DB
}

func mysqlDSN(c Credentials) string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host + ":" + c.Port
	cfg.DBName = c.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (md *MySQLDriver) Connect(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	md.db = db
	return nil
}

func (md *MySQLDriver) Close() error {
	return md.db.Close()
}

func (md *MySQLDriver) ExecuteTx(ctx context.Context, txFunc func(tx Executor) error) error {
	return executeTx(ctx, md.db, txFunc)
}

func (md *MySQLDriver) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return sqlExecutor{q: md.db}.ExecContext(ctx, query, args...)
}

func (md *MySQLDriver) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return sqlExecutor{q: md.db}.QueryContext(ctx, query, args...)
}

func (md *MySQLDriver) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return sqlExecutor{q: md.db}.QueryRowContext(ctx, query, args...)
}
