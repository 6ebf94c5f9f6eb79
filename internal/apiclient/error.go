package apiclient

import (
	"fmt"
	"net/http"

	"github.com/dtroode/gophsocial/internal/model"
)

// APIError is a non-2xx answer from the remote service.
type APIError struct {
	StatusCode int
	Method     string
	Route      string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Route, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Route, e.StatusCode, e.Message)
}

// Is maps HTTP statuses onto the model sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case model.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case model.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case model.ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	default:
		return false
	}
}
