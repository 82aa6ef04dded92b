package omdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrMissingCredential indicates no API key is configured
	ErrMissingCredential = errors.New("omdb API key is not configured")
	// ErrNoResults indicates the upstream found no matches
	ErrNoResults = errors.New("no results")
	// ErrNotFound indicates the upstream does not know the requested id
	ErrNotFound = errors.New("title not found")
	// ErrTransport indicates a network or HTTP level failure
	ErrTransport = errors.New("omdb request failed")
)

// ErrorKind classifies an APIError
type ErrorKind int

const (
	// KindTransport covers network failures, non-2xx statuses and bad bodies
	KindTransport ErrorKind = iota
	// KindMissingCredential means the request was never sent
	KindMissingCredential
	// KindNoResults is a logical "nothing matched" answer
	KindNoResults
	// KindNotFound is a logical "unknown id" answer
	KindNotFound
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "MissingCredential"
	case KindNoResults:
		return "NoResults"
	case KindNotFound:
		return "NotFound"
	default:
		return "Transport"
	}
}

// Logical reports whether the kind is an expected "nothing to show" answer
func (k ErrorKind) Logical() bool {
	return k == KindNoResults || k == KindNotFound
}

// sentinel returns the package error matching the kind
func (k ErrorKind) sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindNoResults:
		return ErrNoResults
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrTransport
	}
}

// APIError represents a failed OMDb call
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	// Message is the user facing text, taken from the upstream when it sent one
	Message string
	Err     error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("omdb API error (%s): status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("omdb API error (%s): %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for the kind
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsLogical reports whether the upstream answered but had nothing to give
func (e *APIError) IsLogical() bool {
	return e.Kind.Logical()
}

// IsUnauthorized checks if the upstream rejected the API key
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// KindOf returns the kind of err, or KindTransport for foreign errors
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// MessageOf returns the user facing message carried by err, or fallback
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func missingCredential() *APIError {
	return &APIError{
		Kind:    KindMissingCredential,
		Message: "API key is not configured. Set OMDB_API_KEY or omdb.api_key in the config file.",
	}
}
