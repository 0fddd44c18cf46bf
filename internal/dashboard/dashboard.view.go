// Package dashboard holds the server-side state of mounted dashboard screens.
//
// A View is created when a browser opens the dashboard stream and lives until that stream
// ends. Both the initial fetch and every push delivery go through Apply, which keeps the most
// recent snapshot list by createdAt rather than by arrival order.
package dashboard

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/models"
	"github.com/itsatony/roomwatch/internal/push"
	nuts "github.com/vaudience/go-nuts"
)

// Origin tells where an applied snapshot list came from
type Origin string

const (
	OriginFetch Origin = "fetch"
	OriginPush  Origin = "push"
)

// EventApplied is emitted on the view's emitter with (viewID string, origin Origin, count int)
const EventApplied = "view.applied"

var (
	ErrAlreadySubscribed = stderrors.New("view already has a push subscription")
	ErrViewClosed        = stderrors.New("view is closed")
)

// SnapshotSource loads the current snapshot list for a session token
type SnapshotSource interface {
	FetchSnapshots(ctx context.Context, token string) ([]models.SensorSnapshot, error)
}

// State is a copy of everything a screen renders
type State struct {
	Loading   bool
	Snapshots []models.SensorSnapshot
	Latest    models.LatestReadings
	Series    []models.ChartPoint
	Version   time.Time
	Closed    bool
}

type View struct {
	ID string

	token   string
	source  SnapshotSource
	channel push.Channel
	event   string

	mu         sync.RWMutex
	state      State
	sub        push.Subscription
	subscribed bool

	changed chan struct{}
	events  *nuts.EventEmitter
}

// NewView creates a view in the loading state
func NewView(token string, source SnapshotSource, channel push.Channel, event string) *View {
	return &View{
		ID:      nuts.NID("vw", 16),
		token:   token,
		source:  source,
		channel: channel,
		event:   event,
		state:   State{Loading: true},
		changed: make(chan struct{}, 1),
		events:  nuts.NewEventEmitter(),
	}
}

// Load fetches the snapshot list once and applies it.
// A failed fetch keeps any snapshots already shown. Unless the token was rejected the
// loading flag is cleared so the screen falls back to its placeholders.
func (v *View) Load(ctx context.Context) error {
	snapshots, err := v.source.FetchSnapshots(ctx, v.token)
	if err != nil {
		if !errors.IsAuth(err) {
			v.Apply(nil, OriginFetch)
		}
		return err
	}
	v.Apply(snapshots, OriginFetch)
	return nil
}

// Subscribe opens the view's push channel. A view holds at most one subscription.
func (v *View) Subscribe(ctx context.Context) error {
	v.mu.Lock()
	if v.state.Closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.subscribed {
		v.mu.Unlock()
		return ErrAlreadySubscribed
	}
	v.subscribed = true
	v.mu.Unlock()

	sub, err := v.channel.Subscribe(ctx, v.event, func(snapshots []models.SensorSnapshot) {
		v.Apply(snapshots, OriginPush)
	})
	if err != nil {
		v.mu.Lock()
		v.subscribed = false
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Closed {
		sub.Close()
		return ErrViewClosed
	}
	v.sub = sub
	return nil
}

// Apply replaces the state with snapshots unless they are older than what is shown.
// A list is ordered by its head snapshot's createdAt; ties replace. Empty lists carry no
// version and are ignored, though a fetch still ends the loading state.
func (v *View) Apply(snapshots []models.SensorSnapshot, origin Origin) bool {
	v.mu.Lock()
	if v.state.Closed {
		v.mu.Unlock()
		return false
	}

	if len(snapshots) == 0 {
		wasLoading := v.state.Loading
		if origin == OriginFetch {
			v.state.Loading = false
		}
		v.mu.Unlock()
		if wasLoading && origin == OriginFetch {
			v.notify()
		}
		return false
	}

	head := snapshots[0].CreatedAt
	if !v.state.Loading && head.Before(v.state.Version) {
		v.mu.Unlock()
		nuts.L.Infof("[Dashboard] View %s dropped stale %s list (head %s < %s)", v.ID, origin, head.Format(time.RFC3339), v.state.Version.Format(time.RFC3339))
		return false
	}

	v.state = State{
		Snapshots: snapshots,
		Latest:    models.DeriveLatest(snapshots),
		Series:    models.DeriveMotionSeries(snapshots),
		Version:   head,
	}
	v.mu.Unlock()

	v.notify()
	v.events.Emit(EventApplied, v.ID, origin, len(snapshots))
	return true
}

// OnApplied registers fn for every accepted snapshot list
func (v *View) OnApplied(listenerID string, fn func(origin Origin, count int)) {
	v.events.On(EventApplied, listenerID, func(args ...interface{}) {
		if len(args) < 3 {
			return
		}
		origin, _ := args[1].(Origin)
		count, _ := args[2].(int)
		fn(origin, count)
	})
}

// Reset drops all data and closes the view. Watchers see a closed state.
func (v *View) Reset() {
	v.close(true)
}

// Unmount releases the push subscription and closes the view
func (v *View) Unmount() {
	v.close(false)
}

func (v *View) close(clear bool) {
	v.mu.Lock()
	if v.state.Closed {
		v.mu.Unlock()
		return
	}
	if clear {
		v.state = State{}
	}
	v.state.Closed = true
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	v.notify()
}

// State returns a snapshot of the view state
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Watch signals state changes. Signals coalesce: a reader always renders the latest State.
func (v *View) Watch() <-chan struct{} {
	return v.changed
}

// PushDone is closed when the push subscription ends; nil when none is open
func (v *View) PushDone() <-chan struct{} {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sub == nil {
		return nil
	}
	return v.sub.Done()
}

func (v *View) notify() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}
