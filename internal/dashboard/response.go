package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vaultfire/internal/engine"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encode_response_failed", "error", err)
		}
	}
}

// writeError maps engine errors to HTTP. Internal details never reach the
// client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve engine.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: ve.Error()})
		return
	}
	s.log.Error("dashboard_request_failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: msg})
}
