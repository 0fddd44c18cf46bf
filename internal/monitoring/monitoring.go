package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/itsatony/roomwatch/internal/models"
	"github.com/itsatony/roomwatch/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Service provides monitoring functionality
type Service struct {
	counter repository.EventCounter
	audit   repository.AuditRepository

	mu    sync.Mutex
	local map[string]int64
}

// NewService creates a new monitoring service. counter and audit are optional.
func NewService(counter repository.EventCounter, audit repository.AuditRepository) *Service {
	return &Service{
		counter: counter,
		audit:   audit,
		local:   make(map[string]int64),
	}
}

// RecordEvent records a monitored event with labels.
// Storage failures are logged and never reach the caller.
func (s *Service) RecordEvent(ctx context.Context, eventName string, labels map[string]string) {
	ts := time.Now().UTC()
	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts.Format(time.RFC3339), labels)

	s.mu.Lock()
	s.local[eventName]++
	s.mu.Unlock()

	if s.counter != nil {
		if err := s.counter.Increment(ctx, eventName); err != nil {
			nuts.L.Warnf("[Monitoring] Failed to count %s: %v", eventName, err)
		}
	}
	if s.audit != nil {
		event := &models.DashboardEvent{Name: eventName, Labels: models.JSON(labels), CreatedAt: ts}
		if err := s.audit.Append(ctx, event); err != nil {
			nuts.L.Warnf("[Monitoring] Failed to audit %s: %v", eventName, err)
		}
	}
}

// GetEventMetrics returns event counts, optionally for one event type.
// A positive duration counts audit rows within that window; otherwise the running counters are used.
func (s *Service) GetEventMetrics(ctx context.Context, eventType string, duration time.Duration) (map[string]int64, error) {
	var (
		counts map[string]int64
		err    error
	)
	switch {
	case duration > 0 && s.audit != nil:
		counts, err = s.audit.CountSince(ctx, time.Now().UTC().Add(-duration))
	case s.counter != nil:
		counts, err = s.counter.Counts(ctx)
	default:
		counts = s.localCounts()
	}
	if err != nil {
		return nil, err
	}

	if eventType == "" {
		return counts, nil
	}
	return map[string]int64{eventType: counts[eventType]}, nil
}

// Recent returns the latest audit events, or nothing when no database is configured
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.DashboardEvent, error) {
	if s.audit == nil {
		return []*models.DashboardEvent{}, nil
	}
	return s.audit.Recent(ctx, limit)
}

func (s *Service) localCounts() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.local))
	for k, v := range s.local {
		out[k] = v
	}
	return out
}
