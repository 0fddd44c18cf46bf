// FilePath: internal/dashboard/dashboard.registry.go
package dashboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/itsatony/roomwatch/internal/push"
	nuts "github.com/vaudience/go-nuts"
)

// Recorder receives monitoring events
type Recorder interface {
	RecordEvent(ctx context.Context, name string, labels map[string]string)
}

// Registry tracks the live views of every session so a logout can reach them
type Registry struct {
	source   SnapshotSource
	channel  push.Channel
	event    string
	recorder Recorder

	mu       sync.Mutex
	sessions map[string]map[string]*View
}

func NewRegistry(source SnapshotSource, channel push.Channel, event string, recorder Recorder) *Registry {
	return &Registry{
		source:   source,
		channel:  channel,
		event:    event,
		recorder: recorder,
		sessions: make(map[string]map[string]*View),
	}
}

// SessionKey identifies a session without keeping the token itself as a map key
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// Mount creates and registers a new view for token
func (r *Registry) Mount(token string) *View {
	v := NewView(token, r.source, r.channel, r.event)
	key := SessionKey(token)

	r.mu.Lock()
	views, ok := r.sessions[key]
	if !ok {
		views = make(map[string]*View)
		r.sessions[key] = views
	}
	views[v.ID] = v
	r.mu.Unlock()

	if r.recorder != nil {
		v.OnApplied("registry_monitor", func(origin Origin, count int) {
			if origin != OriginPush {
				return
			}
			r.recorder.RecordEvent(context.Background(), "push_update", map[string]string{
				"view":      v.ID,
				"snapshots": fmt.Sprint(count),
			})
		})
		r.recorder.RecordEvent(context.Background(), "view_mounted", map[string]string{"view": v.ID, "session": key})
	}
	nuts.L.Infof("[Dashboard] Mounted view %s for session %s", v.ID, key)
	return v
}

// Unmount closes v and forgets it
func (r *Registry) Unmount(v *View) {
	v.Unmount()

	key := SessionKey(v.token)
	r.mu.Lock()
	if views, ok := r.sessions[key]; ok {
		delete(views, v.ID)
		if len(views) == 0 {
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	if r.recorder != nil {
		r.recorder.RecordEvent(context.Background(), "view_unmounted", map[string]string{"view": v.ID, "session": key})
	}
	nuts.L.Infof("[Dashboard] Unmounted view %s", v.ID)
}

// Reset empties and closes every view of the session and returns how many were reset.
// The views stay registered until their streams unmount them.
func (r *Registry) Reset(token string) int {
	key := SessionKey(token)

	r.mu.Lock()
	views := make([]*View, 0, len(r.sessions[key]))
	for _, v := range r.sessions[key] {
		views = append(views, v)
	}
	r.mu.Unlock()

	for _, v := range views {
		v.Reset()
	}
	if len(views) > 0 {
		nuts.L.Infof("[Dashboard] Reset %d views for session %s", len(views), key)
	}
	return len(views)
}

// Count returns the number of registered views
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, views := range r.sessions {
		n += len(views)
	}
	return n
}

// Sessions returns the number of sessions with at least one view
func (r *Registry) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
