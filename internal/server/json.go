package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/bracketeer/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps an error code to an HTTP status and writes the user-facing
// message.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), errors.UserMessage(err))
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle:
		return http.StatusBadRequest
	case errors.ErrCodeNoBracket, errors.ErrCodeNotFound, errors.ErrCodeMatchNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMalformedTopology:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
