package nexway

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Errors returned by this package match one of these via
// errors.Is; a MissingParameterError, AuthError, TransportError or
// InvalidRequestError matches exactly its own sentinel.
var (
	ErrMissingParameter  = errors.New("missing parameter")
	ErrAuth              = errors.New("authentication failed")
	ErrTokenNotFound     = errors.New("token not found in response")
	ErrEmptyResponse     = errors.New("empty response")
	ErrTransport         = errors.New("transport failure")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnsupportedFormat = errors.New("unsupported response format")
)

// MissingParameterError reports required inputs that were absent, empty or
// malformed. It is always returned before any network call.
type MissingParameterError struct {
	Operation string
	Fields    []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf(
		"%s: missing or invalid parameters: %s",
		e.Operation,
		strings.Join(e.Fields, ", "),
	)
}

// Is matches ErrMissingParameter.
func (*MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// AuthError carries the error payload returned by the token endpoint.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token endpoint error %q: %s", e.Code, e.Message)
}

// Is matches ErrAuth.
func (*AuthError) Is(target error) bool {
	return target == ErrAuth
}

// TransportError is returned when the HTTP exchange itself failed or the
// server answered 400 Bad Request. StatusCode is 0 for connection-level
// failures.
type TransportError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport failure (status %d): %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

// Unwrap returns the underlying network error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (*TransportError) Is(target error) bool {
	return target == ErrTransport
}

// InvalidRequestError is returned before any network call for an unsupported
// HTTP verb, an empty URL, or a body or parameter set that cannot be encoded.
type InvalidRequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *InvalidRequestError) Error() string {
	if e.Err != nil {
		return "invalid request: " + e.Err.Error()
	}
	if e.URL == "" {
		return "invalid request: empty URL"
	}
	return fmt.Sprintf("invalid request: unsupported method %q", e.Method)
}

func (e *InvalidRequestError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidRequest.
func (*InvalidRequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}
