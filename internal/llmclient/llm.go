// Package llmclient wraps the reasoning service. Clients focus on the API
// call itself; cross-cutting concerns (retries, logging) are applied via
// middleware in the llm package.
package llmclient

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the reasoning service returned no usable text.
var ErrEmptyResponse = errors.New("empty response from reasoning service")

// CompleteOptions tune a single completion call.
type CompleteOptions struct {
	MaxTokens int
}

// ReasoningClient is the single call pattern the pipeline depends on:
// prompt in, free text out. All structure is recovered downstream.
type ReasoningClient interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
	Close() error
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
