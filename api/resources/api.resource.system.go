package resources

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

// SystemHandlers serve health, metrics, audit events and API docs
type SystemHandlers struct {
	views   ViewMounter
	monitor Monitor
	checks  map[string]HealthCheck
}

// HealthResponse reports service and dependency status
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Views    int               `json:"views"`
	Sessions int               `json:"sessions"`
	Checks   map[string]string `json:"checks,omitempty"`
}

// MetricsResponse holds event counters
type MetricsResponse struct {
	Window string           `json:"window,omitempty"`
	Views  int              `json:"views"`
	Events map[string]int64 `json:"events"`
}

// @Summary Health check
// @Description Service status, version, live view count and dependency checks
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Success 503 {object} HealthResponse
// @Router /health [get]
func (h *SystemHandlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: nuts.GetVersion(), Views: h.views.Count(), Sessions: h.views.Sessions()}
	status := http.StatusOK

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}
	respondWithJSON(w, status, resp)
}

// @Summary Event metrics
// @Description Event counters, optionally for one event and within a time window
// @Tags system
// @Produce json
// @Param event query string false "Event name (login, logout, push_update, ...)"
// @Param window query string false "Time window, e.g. 1h or 30m"
// @Success 200 {object} MetricsResponse
// @Failure 400 {object} errors.APIError
// @Router /metrics [get]
func (h *SystemHandlers) Metrics(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	q := r.URL.Query()

	var window time.Duration
	if raw := q.Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			respondWithError(w, errors.NewValidationError("invalid window", err).WithRequestID(requestID))
			return
		}
		window = d
	}

	counts, err := h.monitor.GetEventMetrics(r.Context(), q.Get("event"), window)
	if err != nil {
		respondWithError(w, errors.NewDatabaseError("failed to read metrics", err).WithRequestID(requestID))
		return
	}
	resp := MetricsResponse{Views: h.views.Count(), Events: counts}
	if window > 0 {
		resp.Window = window.String()
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// @Summary Recent dashboard events
// @Description Latest audit trail entries, newest first
// @Tags system
// @Produce json
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {array} models.DashboardEvent
// @Failure 400 {object} errors.APIError
// @Router /events [get]
func (h *SystemHandlers) Events(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondWithError(w, errors.NewValidationError("limit must be between 1 and 500", err).WithRequestID(requestID))
			return
		}
		limit = n
	}

	events, err := h.monitor.Recent(r.Context(), limit)
	if err != nil {
		respondWithError(w, errors.NewDatabaseError("failed to list events", err).WithRequestID(requestID))
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// Swagger serves the generated OpenAPI document
func (h *SystemHandlers) Swagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		respondWithError(w, errors.NewNotFoundError("api documentation not registered", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
