package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/roomwatch/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		nuts.L.Errorf("[API] Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		apiErr = errors.NewInternalError("internal server error", err)
	}
	if apiErr.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %v", apiErr)
	}
	respondWithJSON(w, apiErr.Code, apiErr)
}
