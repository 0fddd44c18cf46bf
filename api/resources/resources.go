// FilePath: api/resources/resources.go
package resources

import (
	"context"
	"net/http"
	"time"

	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/internal/backend"
	"github.com/itsatony/roomwatch/internal/dashboard"
	"github.com/itsatony/roomwatch/internal/models"
	"github.com/itsatony/roomwatch/internal/render"
)

// Authenticator exchanges credentials for a backend token
type Authenticator interface {
	Login(ctx context.Context, creds backend.Credentials) (string, error)
}

// ViewMounter owns the live dashboard views
type ViewMounter interface {
	Mount(token string) *dashboard.View
	Unmount(v *dashboard.View)
	Count() int
	Sessions() int
}

// SessionEnder tears down everything tied to a session
type SessionEnder interface {
	EndSession(ctx context.Context, token string) int
}

// Monitor records and reports dashboard events
type Monitor interface {
	RecordEvent(ctx context.Context, name string, labels map[string]string)
	GetEventMetrics(ctx context.Context, eventType string, duration time.Duration) (map[string]int64, error)
	Recent(ctx context.Context, limit int) ([]*models.DashboardEvent, error)
}

// HealthCheck reports one dependency
type HealthCheck func(ctx context.Context) error

// Paths are the browser-facing routes handlers redirect between
type Paths struct {
	Login     string
	Dashboard string
	Stream    string
	Logout    string
}

// DefaultPaths returns the standard routes
func DefaultPaths() Paths {
	return Paths{Login: "/login", Dashboard: "/dashboard", Stream: "/dashboard/stream", Logout: "/logout"}
}

// Deps bundles what the handlers need
type Deps struct {
	Store     middleware.SessionStore
	Auth      Authenticator
	Source    dashboard.SnapshotSource
	Views     ViewMounter
	Sessions  SessionEnder
	Renderer  *render.Renderer
	Monitor   Monitor
	Heartbeat time.Duration
	Checks    map[string]HealthCheck
	Paths     Paths
}

// Resources holds all HTTP resource handlers
type Resources struct {
	Pages  *PageHandlers
	Stream *StreamHandlers
	State  *StateHandlers
	System *SystemHandlers
}

// NewResources creates a new Resources instance
func NewResources(d Deps) *Resources {
	if d.Paths == (Paths{}) {
		d.Paths = DefaultPaths()
	}
	if d.Heartbeat <= 0 {
		d.Heartbeat = 5 * time.Second
	}
	return &Resources{
		Pages: &PageHandlers{
			store:    d.Store,
			auth:     d.Auth,
			sessions: d.Sessions,
			renderer: d.Renderer,
			monitor:  d.Monitor,
			paths:    d.Paths,
		},
		Stream: &StreamHandlers{
			store:     d.Store,
			views:     d.Views,
			renderer:  d.Renderer,
			monitor:   d.Monitor,
			heartbeat: d.Heartbeat,
			paths:     d.Paths,
		},
		State: &StateHandlers{
			store:   d.Store,
			source:  d.Source,
			monitor: d.Monitor,
		},
		System: &SystemHandlers{
			views:   d.Views,
			monitor: d.Monitor,
			checks:  d.Checks,
		},
	}
}

// Root sends every visitor to the login page
func (r *Resources) Root(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, r.Pages.paths.Login, http.StatusFound)
}
