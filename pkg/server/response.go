package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/trek/pkg/utils/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Error("failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logging.From(ctx).Warn(message, "error", err, "status", status)
	}
	writeJSON(ctx, w, status, errorResponse{Error: message})
}
