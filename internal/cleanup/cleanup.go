package cleanup

import (
	"context"

	"github.com/itsatony/roomwatch/internal/dashboard"
	nuts "github.com/vaudience/go-nuts"
)

const (
	// EventSessionEnded fires with the session key after a session's views were reset
	EventSessionEnded = "session.ended"
	// EventViewsReset fires with the session key when at least one live view was reset
	EventViewsReset = "views.reset"
)

// ViewResetter resets every live view of a session token
type ViewResetter interface {
	Reset(token string) int
}

// CleanupService tears down server-side state tied to a session
type CleanupService struct {
	views  ViewResetter
	events *nuts.EventEmitter
}

// New creates a new CleanupService
func New(views ViewResetter) *CleanupService {
	return &CleanupService{
		views:  views,
		events: nuts.NewEventEmitter(),
	}
}

// EndSession empties and closes every live view of the session; their streams redirect to login.
// It returns the number of views reset.
func (s *CleanupService) EndSession(ctx context.Context, token string) int {
	if token == "" {
		return 0
	}
	key := dashboard.SessionKey(token)

	n := s.views.Reset(token)
	if n > 0 {
		s.events.Emit(EventViewsReset, key)
	}
	s.events.Emit(EventSessionEnded, key)
	nuts.L.Infof("[Cleanup] Session %s ended, %d live views reset", key, n)
	return n
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, nuts.NID("cleanup", 8), func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
