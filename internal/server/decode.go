package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"security-code-service/internal/verdict"
)

// maxBodyBytes caps request bodies; every request in this API is tiny.
const maxBodyBytes = 1 << 16

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// StatusForVerdict maps a verify outcome to an HTTP status. Outcomes are part
// of the response body either way; the status is a convenience for clients.
func StatusForVerdict(kind verdict.Kind) int {
	switch kind {
	case verdict.Success:
		return http.StatusOK
	case verdict.NotFound:
		return http.StatusNotFound
	case verdict.TooManyAttempts:
		return http.StatusTooManyRequests
	case verdict.Expired, verdict.AlreadyUsed:
		return http.StatusGone
	default:
		return http.StatusUnprocessableEntity
	}
}
