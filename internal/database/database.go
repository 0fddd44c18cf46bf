// FilePath: internal/database/database.go
package database

import (
	"context"
	"fmt"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

// DB is the database handle repositories are built on
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
}

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_events (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	labels     JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dashboard_events_created_at_idx ON dashboard_events (created_at DESC);`

// DSN builds the lib/pq connection string
func DSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

// NewPostgresDB connects to PostgreSQL and ensures the audit schema exists
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	pg := Wrap(db)
	if err := Migrate(ctx, pg); err != nil {
		db.Close()
		return nil, err
	}

	nuts.L.Infof("[PostgresDB] Connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return pg, nil
}

// Wrap adapts an existing connection
func Wrap(db *sqlx.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

// Migrate creates the dashboard_events table when missing
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.GetDB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error migrating schema: %w", err)
	}
	return nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) GetDB() *sqlx.DB {
	return p.db
}
