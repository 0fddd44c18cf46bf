package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{Host: "db", Port: 5432, User: "rw", Password: "pw", DBName: "roomwatch", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=rw password=pw dbname=roomwatch sslmode=disable", dsn)
}

func TestMigrate(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS dashboard_events`).WillReturnResult(sqlmock.NewResult(0, 0))

	db := Wrap(sqlx.NewDb(raw, "postgres"))
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateError(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(assert.AnError)

	err = Migrate(context.Background(), Wrap(sqlx.NewDb(raw, "postgres")))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPing(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	db := Wrap(sqlx.NewDb(raw, "postgres"))
	require.NoError(t, db.Ping(context.Background()))

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
