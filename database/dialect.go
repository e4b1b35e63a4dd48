// database/dialect.go
package database

import (
	"fmt"
	"strings"
)

const (
	driverMySQL  = "mysql"
	driverSQLite = "sqlite"
)

// dialect hides the two places MySQL and SQLite disagree: upsert clauses and DDL.
type dialect interface {
	name() string
	// upsert returns the clause appended to an INSERT so that a conflict on
	// conflictCols updates updateCols. No updateCols means "keep the existing row".
	upsert(conflictCols, updateCols []string) string
	insertIgnore() string
	schema() []string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case driverMySQL:
		return mysqlDialect{}, nil
	case driverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) name() string { return driverMySQL }

func (mysqlDialect) upsert(conflictCols, updateCols []string) string {
	if len(updateCols) == 0 {
		return fmt.Sprintf("ON DUPLICATE KEY UPDATE %s = %s", conflictCols[0], conflictCols[0])
	}
	sets := make([]string, 0, len(updateCols)+1)
	for _, c := range updateCols {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

func (mysqlDialect) insertIgnore() string { return "INSERT IGNORE INTO" }

type sqliteDialect struct{}

func (sqliteDialect) name() string { return driverSQLite }

func (sqliteDialect) upsert(conflictCols, updateCols []string) string {
	target := strings.Join(conflictCols, ", ")
	if len(updateCols) == 0 {
		return fmt.Sprintf("ON CONFLICT(%s) DO NOTHING", target)
	}
	sets := make([]string, 0, len(updateCols)+1)
	for _, c := range updateCols {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	return fmt.Sprintf("ON CONFLICT(%s) DO UPDATE SET %s", target, strings.Join(sets, ", "))
}

func (sqliteDialect) insertIgnore() string { return "INSERT OR IGNORE INTO" }
