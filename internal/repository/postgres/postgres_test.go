package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/itsatony/roomwatch/internal/database"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *EventRepo) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	return mock, NewEventRepository(database.Wrap(sqlx.NewDb(raw, "postgres")))
}

func TestAppend(t *testing.T) {
	mock, repo := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO dashboard_events`).
		WithArgs(sqlmock.AnyArg(), "login", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.DashboardEvent{Name: "login", Labels: models.JSON{"session": "abc"}}
	require.NoError(t, repo.Append(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendRequiresName(t *testing.T) {
	_, repo := setupMockDB(t)
	err := repo.Append(context.Background(), &models.DashboardEvent{})
	assert.True(t, errors.IsValidation(err))
}

func TestAppendDatabaseError(t *testing.T) {
	mock, repo := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO dashboard_events`).WillReturnError(assert.AnError)

	err := repo.Append(context.Background(), &models.DashboardEvent{Name: "logout"})
	require.Error(t, err)
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeDatabase, apiErr.Type)
}

func TestRecent(t *testing.T) {
	mock, repo := setupMockDB(t)
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "name", "labels", "created_at"}).
		AddRow("evt_2", "view_mounted", []byte(`{"view":"vw_1"}`), now).
		AddRow("evt_1", "login", []byte(`{}`), now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT id, name, labels, created_at`).WithArgs(10).WillReturnRows(rows)

	events, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "view_mounted", events[0].Name)
	assert.Equal(t, "vw_1", events[0].Labels["view"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountSince(t *testing.T) {
	mock, repo := setupMockDB(t)
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"name", "count"}).
		AddRow("login", 3).
		AddRow("push_update", 42)
	mock.ExpectQuery(`SELECT name, COUNT\(\*\) AS count`).WithArgs(since).WillReturnRows(rows)

	counts, err := repo.CountSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"login": 3, "push_update": 42}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
