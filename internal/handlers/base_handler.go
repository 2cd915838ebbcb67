package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to its HTTP status.
// Unknown errors are logged and reported as 500 without details.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, models.ErrInvalidLessonID), errors.Is(err, models.ErrInvalidProgress):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrLessonLocked):
		h.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrLessonNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("failed to "+action, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
