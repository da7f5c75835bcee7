package database

import (
	"fmt"
	"strings"
)

// Dialect differences are resolved where the SQL is built, keyed off the
// concrete driver type. Anything that is not Postgres gets the MySQL flavor.

func isPostgres(db Driver) bool {
	_, ok := db.(*PostgresDriver)
	return ok
}

func QuoteIdent(db Driver, ident string) string {
	if isPostgres(db) {
		return `"` + ident + `"`
	}
	return "`" + ident + "`"
}

// Placeholders returns the parameter list for one row of width n, numbering
// Postgres placeholders from offset+1.
func Placeholders(db Driver, n, offset int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		if isPostgres(db) {
			parts[i] = fmt.Sprintf("$%d", offset+i+1)
		} else {
			parts[i] = "?"
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// InsertIgnoreSQL builds a multi-row insert that silently no-ops on a
// natural-key conflict instead of erroring or overwriting.
func InsertIgnoreSQL(db Driver, table string, cols []string, rowCount int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdent(db, c)
	}
	values := make([]string, rowCount)
	for i := 0; i < rowCount; i++ {
		values[i] = Placeholders(db, len(cols), i*len(cols))
	}
	if isPostgres(db) {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING",
			table, strings.Join(quoted, ", "), strings.Join(values, ", "))
	}
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES %s",
		table, strings.Join(quoted, ", "), strings.Join(values, ", "))
}

// InsertSQL is the plain-append variant used for fact and bridge rows.
func InsertSQL(db Driver, table string, cols []string, rowCount int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdent(db, c)
	}
	values := make([]string, rowCount)
	for i := 0; i < rowCount; i++ {
		values[i] = Placeholders(db, len(cols), i*len(cols))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(quoted, ", "), strings.Join(values, ", "))
}

func DisableFKChecksSQL(db Driver) string {
	if isPostgres(db) {
		return "SET session_replication_role = replica"
	}
	return "SET FOREIGN_KEY_CHECKS = 0"
}

func EnableFKChecksSQL(db Driver) string {
	if isPostgres(db) {
		return "SET session_replication_role = DEFAULT"
	}
	return "SET FOREIGN_KEY_CHECKS = 1"
}

// SavepointSQL returns the statements guarding a fallible statement inside a
// transaction. Postgres aborts the whole transaction on any error, so the
// statement must run under a savepoint to be recoverable; MySQL leaves the
// transaction usable (and runs TRUNCATE with an implicit commit anyway), so
// no guard is needed and all three strings are empty.
func SavepointSQL(db Driver, name string) (create, rollback, release string) {
	if !isPostgres(db) {
		return "", "", ""
	}
	return "SAVEPOINT " + name, "ROLLBACK TO SAVEPOINT " + name, "RELEASE SAVEPOINT " + name
}

// AutoIncrementPK is the surrogate-key column DDL fragment.
func AutoIncrementPK(db Driver) string {
	if isPostgres(db) {
		return "SERIAL PRIMARY KEY"
	}
	return "INT AUTO_INCREMENT PRIMARY KEY"
}

// Rebind rewrites ? placeholders for the target dialect. Handy for one-off
// statements written in the MySQL style.
func Rebind(db Driver, query string) string {
	if !isPostgres(db) {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
