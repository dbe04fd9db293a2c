package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

// Machine-readable error categories.
const (
	codeValidation       = "validation_error"
	codeConflict         = "conflict"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal_error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(context.Background(), "failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		h.logger.Error(context.Background(), "failed to write HTTP response", "error", err)
	}
}

func (h *handler) respondWithError(w http.ResponseWriter, code int, category, message string, details any) {
	h.respondWithJSON(w, code, errorResponse{Error: category, Message: message, Details: details})
}

// respondWithServiceError maps a service error onto its HTTP category.
// resource names the thing that was looked up, for the not-found message.
// Unexpected errors are logged and reported without any of their text.
func (h *handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var conflict *common.ConflictError

	switch {
	case errors.As(err, &conflict):
		h.respondWithError(w, http.StatusConflict, codeConflict, conflict.Error(), nil)
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		h.respondWithError(w, http.StatusBadRequest, codeValidation, "Validation failed", map[string]string{"error": msg})
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Token has expired", nil)
	case errors.Is(err, common.ErrInvalidToken):
		h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid token", nil)
	case errors.Is(err, common.ErrorUnauthorized):
		h.respondWithError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized", nil)
	case errors.Is(err, common.ErrorNotFound):
		if resource == "" {
			resource = "Resource"
		}
		h.respondWithError(w, http.StatusNotFound, codeNotFound, resource+" not found", nil)
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		h.respondWithError(w, http.StatusInternalServerError, codeInternal, "Internal server error", nil)
	}
}
