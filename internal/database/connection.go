package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DefaultQueryTimeout bounds storage calls when no timeout is configured
const DefaultQueryTimeout = 5 * time.Second

// Schema creates every table the service needs. Statements are idempotent.
//
//go:embed schema.sql
var Schema string

// DB interface defines database operations
type DB interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	PingContext(ctx context.Context) error
	Close() error
}

// PostgresDB implements the DB interface using sqlx
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	connectionURL, err := withServiceKey(cfg.URL, cfg.ServiceKey)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// withServiceKey uses the service key as the password when the URL has none
func withServiceKey(rawURL, serviceKey string) (string, error) {
	if serviceKey == "" {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid database URL: %w", err)
	}

	if parsed.User == nil {
		return rawURL, nil
	}
	if _, hasPassword := parsed.User.Password(); hasPassword {
		return rawURL, nil
	}

	parsed.User = url.UserPassword(parsed.User.Username(), serviceKey)
	return parsed.String(), nil
}

// Migrate applies the embedded schema
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// store is embedded by every repository
type store struct {
	db      DB
	timeout time.Duration
}

func newStore(db DB, timeout time.Duration) store {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return store{db: db, timeout: timeout}
}

// bounded derives a context that expires after the configured query timeout
func (s store) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// withTx runs fn inside a transaction and commits when it returns nil.
// Any error from fn rolls the transaction back.
func (s store) withTx(ctx context.Context, action string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateError(ctx, err, "begin transaction for "+action)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateError(ctx, err, "commit "+action)
	}
	return nil
}
