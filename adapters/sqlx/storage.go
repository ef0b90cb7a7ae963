package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"promptkit/core"
)

// Driver names a database/sql driver supported by the store.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite3"
)

// Config holds SQL connection configuration
type Config struct {
	Driver          Driver        `json:"driver" yaml:"driver" env:"DRIVER"`
	DSN             string        `json:"dsn" yaml:"dsn" env:"DSN"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// DefaultConfig returns pool defaults for driver. SQLite allows a single writer,
// so it gets one connection.
func DefaultConfig(driver Driver) Config {
	cfg := Config{
		Driver:          driver,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
	if driver == DriverSQLite {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	return cfg
}

// Validate checks the driver and DSN.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return errors.New("dsn cannot be empty")
	}
	return nil
}

const schema = `CREATE TABLE IF NOT EXISTS promptkit_kv (
	kv_key VARCHAR(255) NOT NULL PRIMARY KEY,
	kv_value BIGINT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Store implements core.Storage on a single promptkit_kv table.
//
// Values are stored in a signed BIGINT column by reinterpreting the uint64
// bits, since database/sql rejects uint64 arguments with the high bit set.
type Store struct {
	db     *sqlx.DB
	driver Driver
	read   string
	write  string
}

// New opens the database, applies the schema and returns the store.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sql config: %w", err)
	}
	db, err := sqlx.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := NewWithDB(db, cfg.Driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection without touching the schema.
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{
		db:     db,
		driver: driver,
		read:   db.Rebind(`SELECT kv_value FROM promptkit_kv WHERE kv_key = ?`),
		write:  db.Rebind(upsertQuery(driver)),
	}
}

func upsertQuery(driver Driver) string {
	if driver == DriverMySQL {
		return `INSERT INTO promptkit_kv (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated_at = VALUES(updated_at)`
	}
	return `INSERT INTO promptkit_kv (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at`
}

// Migrate creates the table if needed. SQLite also gets WAL pragmas.
func (s *Store) Migrate(ctx context.Context) error {
	if s.driver == DriverSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := s.db.ExecContext(ctx, pragma); err != nil {
				return fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ReadInt(ctx context.Context, key string) (uint64, bool, error) {
	var v int64
	err := s.db.GetContext(ctx, &v, s.read, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return uint64(v), true, nil
}

func (s *Store) WriteInt(ctx context.Context, key string, value uint64) error {
	if _, err := s.db.ExecContext(ctx, s.write, key, int64(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ core.Storage = (*Store)(nil)
