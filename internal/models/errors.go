package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProductID indicates that the provided product identifier is empty or malformed
	ErrInvalidProductID = errors.New("invalid product identifier")

	// ErrCacheMiss indicates that no valid entry exists for the requested key
	ErrCacheMiss = errors.New("cache miss")

	// ErrSecretNotFound indicates that no secret is stored for the requested slot
	ErrSecretNotFound = errors.New("secret not found")

	// ErrMalformedResponse indicates that a live response body could not be decoded
	ErrMalformedResponse = errors.New("malformed assessment response")

	// ErrInvalidCredential indicates a token that failed structural validation
	ErrInvalidCredential = errors.New("credential failed structural validation")

	// ErrRateLimitExceeded indicates that the facade's rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrStorageFailure indicates a secure-store or disk I/O failure on write
	ErrStorageFailure = errors.New("storage failure")
)

// FetchErrorKind identifies the terminal outcome of a resilient fetch
type FetchErrorKind string

const (
	FetchErrTimeoutExhausted       FetchErrorKind = "timeout_exhausted"
	FetchErrServiceUnavailable     FetchErrorKind = "service_unavailable"
	FetchErrNotFound               FetchErrorKind = "not_found"
	FetchErrTemporarilyUnavailable FetchErrorKind = "temporarily_unavailable"
	FetchErrDecodeFailure          FetchErrorKind = "decode_failure"
)

// UserMessages maps each terminal fetch error kind to one distinct,
// non-technical message so the UI layer can render without inspecting
// internals.
var UserMessages = map[FetchErrorKind]string{
	FetchErrTimeoutExhausted:       "The request timed out. Please check your connection and try again.",
	FetchErrServiceUnavailable:     "The assessment service is temporarily unavailable. Please try again later.",
	FetchErrNotFound:               "A full assessment is not available for this product. Basic details may still be shown.",
	FetchErrTemporarilyUnavailable: "This product's assessment could not be loaded right now.",
	FetchErrDecodeFailure:          "The assessment could not be read. Please try again.",
}

// FetchError is a terminal failure of the resilient fetch path
type FetchError struct {
	Kind        FetchErrorKind
	UserMessage string
	Err         error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a terminal fetch error with its user-facing message
func NewFetchError(kind FetchErrorKind, err error) *FetchError {
	return &FetchError{
		Kind:        kind,
		UserMessage: UserMessages[kind],
		Err:         err,
	}
}

// HTTPStatusError represents a non-2xx response from the assessment endpoint
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d", e.Code)
}
