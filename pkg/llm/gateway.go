// Package llm adapts hosted language models to a single completion call.
package llm

import (
	"context"
	"errors"
)

// ErrNoCompletion is returned when a provider answers without any candidate.
var ErrNoCompletion = errors.New("llm returned no choices")

// Request is one completion call: a system and a user message, a sampling
// temperature and whether the provider's native JSON mode is requested.
type Request struct {
	System      string
	User        string
	Temperature float64
	JSON        bool
}

// Gateway sends a Request to a model and returns the generated text.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// GatewayFunc lets a plain function act as a Gateway.
type GatewayFunc func(ctx context.Context, req Request) (string, error)

func (f GatewayFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
