package resources

import (
	"net/http"

	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/internal/dashboard"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// StateHandlers expose the derived dashboard state as JSON
type StateHandlers struct {
	store   middleware.SessionStore
	source  dashboard.SnapshotSource
	monitor Monitor
}

// StateResponse is the derived dashboard state
type StateResponse struct {
	Latest    models.LatestReadings   `json:"latest"`
	Series    []models.ChartPoint     `json:"series"`
	Snapshots []models.SensorSnapshot `json:"snapshots"`
}

// @Summary Current dashboard state
// @Description Fetch the snapshot list with the session token and derive the latest readings and motion series
// @Tags dashboard
// @Produce json
// @Success 200 {object} StateResponse
// @Failure 401 {object} errors.APIError
// @Failure 502 {object} errors.APIError
// @Router /state [get]
// @Security CookieAuth
func (h *StateHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	token := middleware.TokenFromContext(r.Context())

	snapshots, err := h.source.FetchSnapshots(r.Context(), token)
	if err != nil {
		apiErr, ok := errors.As(err)
		if !ok {
			apiErr = errors.NewUpstreamError("failed to fetch sensor state", 0, err)
		}
		if errors.IsAuth(err) {
			h.store.Clear(w)
			h.monitor.RecordEvent(r.Context(), "session_rejected", map[string]string{"request_id": requestID})
		}
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, StateResponse{
		Latest:    models.DeriveLatest(snapshots),
		Series:    models.DeriveMotionSeries(snapshots),
		Snapshots: snapshots,
	})
}
