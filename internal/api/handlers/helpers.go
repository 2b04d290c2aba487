package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/services"

	"go.uber.org/zap"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Status: "error", Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// writePipelineError maps a service error to its HTTP status and client message.
// Unknown errors are logged and hidden behind a generic 500.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *services.PipelineError
	if !errors.As(err, &pe) {
		zap.L().Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case services.KindValidation, services.KindPrecondition:
		status = http.StatusBadRequest
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindSolver:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("kind", string(pe.Kind)),
			zap.Error(pe),
		)
	}

	writeError(w, r, status, pe.Message)
}
