package postgres

import (
	"context"
	"database/sql"

	"github.com/itsatony/roomwatch/internal/database"
	"github.com/itsatony/roomwatch/internal/errors"
)

type PostgresBaseRepo struct {
	db database.DB
}

func (r *PostgresBaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to execute query", err)
	}
	return result, nil
}

func (r *PostgresBaseRepo) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := r.db.GetDB().SelectContext(ctx, dest, query, args...); err != nil {
		return errors.NewDatabaseError("failed to execute query", err)
	}
	return nil
}

func (r *PostgresBaseRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}
