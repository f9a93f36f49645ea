package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoRefreshToken is returned by Refresh when nothing is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrSessionExpired wraps the refresh failure that tore the session down.
	// Callers should send the user back to login.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidResponse marks a 2xx body that did not match the expected
	// contract.
	ErrInvalidResponse = errors.New("invalid response")
)

// APIError is a non-2xx response that the pipeline did not recover from.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("lms api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("lms api: status %d", e.Status)
}

// errorBody covers the error shapes the API emits: {"message": ...},
// {"error": ...} and {"errors": {"field": ["..."]}}.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		e.Message = eb.Message
		if e.Message == "" {
			e.Message = eb.Error
		}
		e.Errors = eb.Errors
	}
	return e
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

// ErrorInfo is the display form of an error: a fixed message per status
// class plus field errors where the API supplied them.
type ErrorInfo struct {
	Message string
	Status  int
	Errors  map[string][]string
}

// Describe classifies err for display.  The pipeline never calls it; the
// command line front-end does.
func Describe(err error) ErrorInfo {
	var ae *APIError
	if !errors.As(err, &ae) {
		msg := "An unexpected error occurred"
		if err != nil {
			msg = err.Error()
		}
		return ErrorInfo{Message: msg, Status: http.StatusInternalServerError}
	}
	switch ae.Status {
	case http.StatusBadRequest:
		return ErrorInfo{Message: "Invalid request", Status: ae.Status, Errors: ae.Errors}
	case http.StatusUnauthorized:
		return ErrorInfo{Message: "Unauthorized access", Status: ae.Status}
	case http.StatusForbidden:
		return ErrorInfo{Message: "Access forbidden", Status: ae.Status}
	case http.StatusNotFound:
		return ErrorInfo{Message: "Resource not found", Status: ae.Status}
	case http.StatusUnprocessableEntity:
		return ErrorInfo{Message: "Validation error", Status: ae.Status, Errors: ae.Errors}
	default:
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return ErrorInfo{Message: "An unexpected error occurred", Status: status}
	}
}
