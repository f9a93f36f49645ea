package apiclient

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	fieldErrs := map[string][]string{"email": {"invalid"}}
	cases := []struct {
		err     error
		message string
		status  int
		errs    map[string][]string
	}{
		{&APIError{Status: 400, Errors: fieldErrs}, "Invalid request", 400, fieldErrs},
		{&APIError{Status: 401}, "Unauthorized access", 401, nil},
		{&APIError{Status: 403}, "Access forbidden", 403, nil},
		{&APIError{Status: 404}, "Resource not found", 404, nil},
		{&APIError{Status: 422, Errors: fieldErrs}, "Validation error", 422, fieldErrs},
		{&APIError{Status: 503}, "An unexpected error occurred", 503, nil},
		{errors.New("dial tcp: refused"), "dial tcp: refused", 500, nil},
	}
	for _, tc := range cases {
		info := Describe(tc.err)
		assert.Equal(t, tc.message, info.Message)
		assert.Equal(t, tc.status, info.Status)
		assert.Equal(t, tc.errs, info.Errors)
	}
}

func TestNewAPIError_ParsesBodies(t *testing.T) {
	e := newAPIError(http.StatusNotFound, []byte(`{"error":"course not found"}`))
	assert.Equal(t, "course not found", e.Message)
	assert.Contains(t, e.Error(), "404")

	e = newAPIError(http.StatusBadGateway, []byte(`<html>`))
	assert.Empty(t, e.Message)
	assert.Equal(t, "lms api: status 502", e.Error())
}

func TestIsStatus_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("ctx"), &APIError{Status: 409})
	assert.True(t, IsStatus(err, 409))
	assert.False(t, IsStatus(err, 404))
}
