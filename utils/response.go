package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"foodgram/apperr"
	"foodgram/logging"
)

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

// RespondWithAppError renders err with the status and body of its kind.
// Internal errors are logged with their cause and returned as a generic 500.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Kind == apperr.KindInternal {
		logging.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	RespondWithJSON(w, ae.HTTPStatus(), ae.Body())
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 20<<20))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON payload")
	}
	return nil
}
