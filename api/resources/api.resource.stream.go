package resources

import (
	"net/http"
	"time"

	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/internal/dashboard"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/render"
	"github.com/itsatony/roomwatch/internal/sse"
	nuts "github.com/vaudience/go-nuts"
)

// browsers reconnect a dropped stream after this delay
const streamRetry = 3 * time.Second

// StreamHandlers serves the live dashboard stream
type StreamHandlers struct {
	store     middleware.SessionStore
	views     ViewMounter
	renderer  *render.Renderer
	monitor   Monitor
	heartbeat time.Duration
	paths     Paths
}

// Stream mounts a view for the request and pushes its rendered state as Server-Sent Events
// until the browser leaves or the session is reset.
//
// Events: loading, cards, chart, heartbeat, redirect. The first frame sets the reconnect delay.
func (h *StreamHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	ctx := r.Context()

	view := h.views.Mount(token)
	defer h.views.Unmount(view)

	if err := view.Subscribe(ctx); err != nil {
		nuts.L.Warnf("[Stream] View %s has no push channel: %v", view.ID, err)
	}

	if err := view.Load(ctx); err != nil {
		if errors.IsAuth(err) {
			if clearErr := h.store.Clear(w); clearErr != nil {
				nuts.L.Errorf("[Stream] Failed to clear rejected session: %v", clearErr)
			}
			h.monitor.RecordEvent(ctx, "session_rejected", map[string]string{"view": view.ID})
			respondWithError(w, err)
			return
		}
		nuts.L.Warnf("[Stream] View %s initial fetch failed: %v", view.ID, err)
	}

	if err := sse.Prepare(w); err != nil {
		nuts.L.Warnf("[Stream] Response for view %s cannot stream: %v", view.ID, err)
		return
	}
	// long-lived response: lift the server write timeout where supported
	http.NewResponseController(w).SetWriteDeadline(time.Time{})

	if err := sse.AddRetry(w, streamRetry); err != nil {
		return
	}

	select {
	case <-view.Watch():
	default:
	}
	if done := h.send(w, view.State()); done {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	pushDone := view.PushDone()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pushDone:
			// the screen keeps its last state; updates stop until the page is reloaded
			nuts.L.Warnf("[Stream] Push channel of view %s ended", view.ID)
			h.monitor.RecordEvent(ctx, "push_ended", map[string]string{"view": view.ID})
			pushDone = nil
		case <-heartbeat.C:
			if err := sse.SendEvent(w, "heartbeat", ""); err != nil {
				return
			}
		case <-view.Watch():
			if done := h.send(w, view.State()); done {
				return
			}
		}
	}
}

// send writes state as events and reports whether the stream is over
func (h *StreamHandlers) send(w http.ResponseWriter, st dashboard.State) bool {
	if st.Closed {
		sse.SendEvent(w, "redirect", h.paths.Login)
		return true
	}
	if st.Loading {
		return sse.SendEvent(w, "loading", h.renderer.Placeholder()) != nil
	}

	cards, err := h.renderer.Cards(st.Latest)
	if err != nil {
		nuts.L.Errorf("[Stream] %v", err)
		return true
	}
	chart, err := h.renderer.Chart(st.Series)
	if err != nil {
		nuts.L.Errorf("[Stream] %v", err)
		return true
	}
	if err := sse.AddEvent(w, "cards", cards); err != nil {
		return true
	}
	if err := sse.AddEvent(w, "chart", chart); err != nil {
		return true
	}
	return sse.Send(w) != nil
}
