// database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/logger"
	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
	_ "modernc.org/sqlite"             // local runs and tests
)

// Store is the persistent store the ingestion pipeline writes to.
// Every write is an upsert keyed by a natural key.
type Store struct {
	DB      *sql.DB
	dialect dialect
	log     *logger.Logger
}

// NewStore wraps an already opened database. driver is "mysql" or "sqlite".
func NewStore(db *sql.DB, driver string, log *logger.Logger) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{DB: db, dialect: d, log: log}, nil
}

// Open opens and pings the configured database.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = driverMySQL
	}

	dsn := cfg.DSN
	if dsn == "" {
		switch driver {
		case driverMySQL:
			// DSN: username:password@protocol(address)/dbname?param=value
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
				cfg.User,
				cfg.Password,
				cfg.Host,
				cfg.Port,
				cfg.DBName,
			)
		case driverSQLite:
			dsn = cfg.Path
			if dsn == "" {
				dsn = "wiscflow.db"
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == driverSQLite {
		// One connection: sqlite serializes writers, and ":memory:" is per connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := NewStore(db, driver, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.log.Info("connected to database", "driver", driver, "dbname", cfg.DBName)
	return store, nil
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	err := s.DB.Close()
	s.log.Info("database connection closed")
	return err
}
