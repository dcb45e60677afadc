package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for conversation failures.
var (
	// ErrUpstreamUnavailable means the model call itself failed. The current
	// mention's flow is aborted and a failure notice is posted; there is no
	// automatic retry.
	ErrUpstreamUnavailable = errors.New("llm upstream unavailable")

	// ErrMalformedResponse means the reply could not be classified into one
	// of the response variants.
	ErrMalformedResponse = errors.New("llm response could not be classified")
)

// ConversationError wraps an upstream failure with classification context.
type ConversationError struct {
	// Kind is one of the sentinel errors above.
	Kind       error
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the sentinel so errors.Is works against the taxonomy.
func (e *ConversationError) Unwrap() error {
	return e.Kind
}
