// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/itsatony/roomwatch/internal/models"
)

// ErrInvalidInput indicates that the input data is invalid
var ErrInvalidInput = errors.New("invalid input")

// EventCounter keeps a running count per monitoring event
type EventCounter interface {
	Increment(ctx context.Context, name string) error
	Counts(ctx context.Context) (map[string]int64, error)
}

// AuditRepository stores the dashboard event trail
type AuditRepository interface {
	Append(ctx context.Context, event *models.DashboardEvent) error
	Recent(ctx context.Context, limit int) ([]*models.DashboardEvent, error)
	CountSince(ctx context.Context, since time.Time) (map[string]int64, error)
}
