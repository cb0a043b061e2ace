package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devpubio/devpub/core/registry"
	"github.com/devpubio/devpub/core/topic"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps domain errors onto HTTP statuses and machine-readable codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, registry.ErrEmptyName),
		errors.Is(err, registry.ErrNameTooLong):
		return http.StatusBadRequest, "INVALID_NAME"
	case errors.Is(err, registry.ErrTopicExists):
		return http.StatusConflict, "TOPIC_EXISTS"
	case errors.Is(err, registry.ErrTopicNotFound):
		return http.StatusNotFound, "TOPIC_NOT_FOUND"
	case errors.Is(err, registry.ErrTooManyTopics):
		return http.StatusInsufficientStorage, "TOPIC_LIMIT_REACHED"
	case errors.Is(err, registry.ErrTopicBusy), errors.Is(err, topic.ErrBusy):
		return http.StatusConflict, "TOPIC_BUSY"
	case errors.Is(err, topic.ErrInvalidSlotSize),
		errors.Is(err, topic.ErrInvalidSlotCount),
		errors.Is(err, topic.ErrInvalidMessageSize),
		errors.Is(err, topic.ErrMessageTooLarge):
		return http.StatusUnprocessableEntity, "INVALID_ARGUMENT"
	case errors.Is(err, topic.ErrNotConfigured):
		return http.StatusConflict, "TOPIC_NOT_CONFIGURED"
	case errors.Is(err, topic.ErrOutOfMemory):
		return http.StatusInsufficientStorage, "OUT_OF_MEMORY"
	case errors.Is(err, topic.ErrAccessDenied):
		return http.StatusForbidden, "ACCESS_DENIED"
	case errors.Is(err, topic.ErrWouldBlock):
		return http.StatusConflict, "WOULD_BLOCK"
	case errors.Is(err, topic.ErrClosed):
		return http.StatusGone, "TOPIC_CLOSED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// writeError renders err as the JSON envelope with its mapped status.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: err.Error()})
}
