package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider abstracts the external LLM service behind the two operations the
// engine needs. Implementations are cheap to construct and carry a single
// credential, so the pool can build one per call with whichever secret it
// selected.
type Provider interface {
	// Embed returns the embedding vector for the given text. Dimensionality
	// is fixed per model across calls.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Generate sends a plain-text prompt and returns the generated reply.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Factory builds a Provider bound to one credential secret.
type Factory func(secret string) Provider

// Config selects and parameterizes a provider backend.
type Config struct {
	Backend       string // "gemini" or "openai"
	GenerateModel string
	EmbedModel    string
	BaseURL       string // override for tests and proxies; empty = backend default
}

// NewFactory returns a Factory for the configured backend.
func NewFactory(cfg Config) (Factory, error) {
	switch cfg.Backend {
	case "", "gemini":
		return func(secret string) Provider {
			c := NewGeminiClient(secret, cfg.GenerateModel, cfg.EmbedModel)
			if cfg.BaseURL != "" {
				c.baseURL = cfg.BaseURL
			}
			return c
		}, nil
	case "openai":
		return func(secret string) Provider {
			return newOpenAIClient(secret, cfg.GenerateModel, cfg.EmbedModel, cfg.BaseURL)
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider backend %q", cfg.Backend)
	}
}

// APIError is an upstream failure carrying the HTTP status code, so callers
// can distinguish rate limits (429), auth failures (401/403), and server
// errors (5xx).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.StatusCode, e.Body)
}

// StatusOf extracts the HTTP status from err if it is (or wraps) an APIError.
// Returns 0 when no status is available.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
