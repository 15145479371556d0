// Package server provides the HTTP REST API for the content curation
// service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mgkim1976-spec/research-based-wm/internal/workflow"
)

// ErrUnknownRoutine indicates the request named a routine type the service
// does not recognize.
type ErrUnknownRoutine struct {
	Name string
}

func (e *ErrUnknownRoutine) Error() string {
	return fmt.Sprintf("unknown routine type: %s", e.Name)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	if errors.Is(err, workflow.ErrNotImplemented) {
		return http.StatusNotImplemented
	}
	var unknownRoutine *ErrUnknownRoutine
	var validation *ErrValidation
	switch {
	case errors.As(err, &unknownRoutine), errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		// Remaining run failures come from the upstream research board.
		return http.StatusBadGateway
	}
}
