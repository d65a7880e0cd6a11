// Package httpapi exposes the chest, display, sent-chest and rocket
// operations over JSON/HTTP. Responses share one envelope:
//
//	{"status": <http status>, "message": "...", "data": <payload>}
//
// Service sentinel errors translate to HTTP statuses in writeError.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/melly/timerocket/internal/common"
)

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, common.ErrorCapacityExceeded), errors.Is(err, common.ErrorInvalidState):
		writeJSON(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, err.Error(), nil)
	default:
		writeJSON(w, http.StatusInternalServerError, "internal error", nil)
	}
}
