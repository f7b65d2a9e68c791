package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"safe-space/errors"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error class to its HTTP status.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrAccessDenied):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrStorage):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"error": "..."}. Unclassified errors are not
// echoed to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "internal error"
	case http.StatusServiceUnavailable:
		message = errors.ErrStorage.Error()
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return stderrors.Join(errors.ErrValidation, err)
	}
	return nil
}
