package services

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a required API key is not present
// in the settings store.
var ErrMissingCredential = errors.New("missing credential")

// CredentialError names the missing key. Err is set when the key could not
// be read at all, in which case it is treated as absent.
type CredentialError struct {
	Key string
	Err error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s unreadable: %v", ErrMissingCredential, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s not configured", ErrMissingCredential, e.Key)
}

func (e *CredentialError) Unwrap() error {
	return ErrMissingCredential
}

// GenerationError wraps any failure of the generative-AI call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate travel plan: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-2xx response from the flight-search service.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("flight search error (%d): %s", e.StatusCode, e.Body)
}
