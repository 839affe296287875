package driven

import (
	"context"

	"github.com/custodia-labs/insight-cli/internal/core/domain"
)

// LLMService provides optional answer enrichment via an external
// generative provider. This is an optional service - when nil, the
// engine's own synthesised summary is used verbatim. Any provider
// failure or timeout is swallowed by the caller, never fatal.
type LLMService interface {
	// RephraseAnswer rewrites the executive summary of a synthesis
	// result into a more natural answer to the original query.
	RephraseAnswer(ctx context.Context, query string, result *domain.SynthesisResult) (string, error)

	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
