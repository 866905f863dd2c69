package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zyvod/zyapi/internal/gateway"
)

// errorBody is the wire shape of every non-2xx gateway response. error and
// code repeat the same value; machine callers historically read either.
type errorBody struct {
	Error   gateway.Code `json:"error"`
	Code    gateway.Code `json:"code"`
	Message string       `json:"message"`
}

// adminResult is the envelope used by the source-management endpoints.
type adminResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", slog.Any("error", err))
	}
}

// writeAPIError renders a classified failure with its mapped HTTP status.
func writeAPIError(w http.ResponseWriter, apiErr *gateway.APIError) {
	writeJSON(w, apiErr.HTTPStatus(), errorBody{
		Error:   apiErr.Code,
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}
