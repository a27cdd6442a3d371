package services

import (
	"errors"
	"net/http"
)

// Machine-readable reason tags carried in error responses. Clients branch on
// these, so they are part of the API surface.
const (
	ReasonNotFound   = "NOT_FOUND"
	ReasonConflict   = "CONFLICT"
	ReasonValidation = "VALIDATION"
	ReasonForbidden  = "FORBIDDEN"
	ReasonMaxRetries = "MAX_RETRIES"
)

// MaxRetriesMessage is the fixed user-facing message for a throttled join
// request attempt.
const MaxRetriesMessage = "You have reached the limit of join requests for this family. Please try again later."

// Error is a domain error that controllers translate into an HTTP response.
type Error struct {
	Status  int    `json:"-"`
	Reason  string `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Reason: ReasonNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Reason: ReasonConflict, Message: message}
}

func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Reason: ReasonValidation, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Reason: ReasonForbidden, Message: message}
}

// MaxRetries is a conflict distinguishable from other conflicts by its
// reason tag.
func MaxRetries() *Error {
	return &Error{Status: http.StatusConflict, Reason: ReasonMaxRetries, Message: MaxRetriesMessage}
}

// AsError unwraps a domain error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
