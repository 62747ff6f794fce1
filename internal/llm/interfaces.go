package llm

import (
	"context"

	"github.com/frontdesk-ai/frontdesk/internal/llm/contract"
)

// Completer routes completion requests to a configured model.
type Completer interface {
	Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error)
	ListModels() []string
}

// Provider generates completions for a single configured model.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error)
}
