// Package textgen provides a thin chat-completion interface over hosted
// language model APIs.
//
// A [Completer] takes a system prompt and a user prompt and returns the
// model's text reply. This is the surface the note pipeline needs for
// normalization, query classification, and answer synthesis; conversation
// state, tool calling, and streaming are out of scope.
package textgen

import (
	"context"
	"errors"
)

// Request is a single-turn chat completion request.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// User is the user prompt.
	User string

	// Temperature controls sampling randomness. Zero means the provider
	// default.
	Temperature float32
}

// Completer produces a text completion for a single-turn request.
type Completer interface {
	// Complete returns the model's reply text.
	Complete(ctx context.Context, req Request) (string, error)
}

// Common errors.
var (
	// ErrEmptyPrompt is returned when the request has no user prompt.
	ErrEmptyPrompt = errors.New("textgen: empty prompt")

	// ErrNoCompletion is returned when the API response carries no usable
	// text.
	ErrNoCompletion = errors.New("textgen: no completion in response")
)
