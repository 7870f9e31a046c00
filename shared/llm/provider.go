// Package llm is the completion-provider layer. A Provider turns one prompt
// into model text; failures come back inside the Result rather than as a
// separate error path so callers branch on a single value.
package llm

import (
	"context"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Request is a single-turn, user-role completion request.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
}

// Result is either Text or Err, never both.
type Result struct {
	Text string
	Err  *UpstreamError
}

// OK reports whether the provider produced text.
func (r Result) OK() bool { return r.Err == nil }

// UpstreamError collapses every provider failure (network, auth, quota,
// malformed response) into one kind. Message is what callers may show.
type UpstreamError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Failure builds a failed Result.
func Failure(provider, message string, cause error) Result {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return Result{Err: &UpstreamError{Provider: provider, Message: message, Cause: cause}}
}

// Provider is an abstraction for different LLM API providers.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) Result
}

// New returns the provider registered under name. baseURL may be empty to use
// the provider's public endpoint.
func New(name, apiKey, baseURL string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key cannot be empty", name)
	}
	switch name {
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, baseURL), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, baseURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
