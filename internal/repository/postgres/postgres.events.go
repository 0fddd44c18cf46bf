// FilePath: internal/repository/postgres/postgres.events.go
package postgres

import (
	"context"
	"time"

	"github.com/itsatony/roomwatch/internal/database"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/models"
	"github.com/itsatony/roomwatch/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// EventRepo implements repository.AuditRepository on the dashboard_events table
type EventRepo struct {
	PostgresBaseRepo
}

var _ repository.AuditRepository = (*EventRepo)(nil)

// NewEventRepository creates a new PostgreSQL-backed audit repository
func NewEventRepository(db database.DB) *EventRepo {
	return &EventRepo{PostgresBaseRepo{db: db}}
}

// Append inserts an event, assigning ID and timestamp when unset
func (r *EventRepo) Append(ctx context.Context, event *models.DashboardEvent) error {
	if event == nil || event.Name == "" {
		return errors.NewValidationError("event name is required", repository.ErrInvalidInput)
	}
	if event.ID == "" {
		event.ID = nuts.NID("evt", 16)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO dashboard_events (
			id, name, labels, created_at
		) VALUES (
			$1, $2, $3, $4
		)`

	if _, err := r.ExecContext(ctx, query, event.ID, event.Name, event.Labels, event.CreatedAt); err != nil {
		nuts.L.Errorf("[EventRepository] Failed to append %s: %v", event.Name, err)
		return err
	}
	return nil
}

// Recent returns the newest events first
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]*models.DashboardEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, labels, created_at
		FROM dashboard_events
		ORDER BY created_at DESC
		LIMIT $1`

	events := []*models.DashboardEvent{}
	if err := r.SelectContext(ctx, &events, query, limit); err != nil {
		nuts.L.Errorf("[EventRepository] Failed to list events: %v", err)
		return nil, err
	}
	return events, nil
}

type eventCount struct {
	Name  string `db:"name"`
	Count int64  `db:"count"`
}

// CountSince returns the number of events per name recorded at or after since
func (r *EventRepo) CountSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT name, COUNT(*) AS count
		FROM dashboard_events
		WHERE created_at >= $1
		GROUP BY name`

	rows := []eventCount{}
	if err := r.SelectContext(ctx, &rows, query, since); err != nil {
		nuts.L.Errorf("[EventRepository] Failed to count events: %v", err)
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}
