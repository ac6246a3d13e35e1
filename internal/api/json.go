package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/ansuz/internal/httperr"
	"github.com/starford/ansuz/internal/schema"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errorResponse struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Field         string `json:"field,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// writeError serializes err. Registered failure categories keep their fixed
// status pair; schema violations carry the offending field alongside the bad
// request pair; anything else is logged and collapsed to the internal server
// category so no detail leaks.
func writeError(w http.ResponseWriter, err error) {
	var httpErr httperr.Error
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.StatusCode, httpErr)
		return
	}

	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		bad := httperr.BadRequest()
		writeJSON(w, bad.StatusCode, errorResponse{
			StatusCode:    bad.StatusCode,
			StatusMessage: bad.StatusMessage,
			Field:         schemaErr.Field,
			Reason:        schemaErr.Reason,
		})
		return
	}

	slog.Error("request failed", slog.String("error", err.Error()))
	internal := httperr.InternalServer()
	writeJSON(w, internal.StatusCode, internal)
}

// writeConflict reports an optimistic concurrency or duplicate path failure.
// Conflicts are not one of the registered categories; the pair is fixed here.
func writeConflict(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusConflict, errorResponse{
		StatusCode:    http.StatusConflict,
		StatusMessage: "Conflict",
		Reason:        reason,
	})
}
