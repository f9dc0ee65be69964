package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/core"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteServiceError maps a service error to its HTTP status. Infrastructure
// failures are logged and answered with a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status := StatusFor(kind)
	if kind == core.KindInfrastructure {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		WriteJSON(w, status, ErrorResponse{Error: "internal server error", Kind: string(kind)})
		return
	}
	WriteJSON(w, status, ErrorResponse{Error: core.MessageOf(err), Kind: string(kind)})
}

// StatusFor returns the HTTP status of an error kind.
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindUnauthorized:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
