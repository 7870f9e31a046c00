package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API,
// OpenRouter included when baseURL points there.
type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(config)}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

// Complete sends the prompt as a single user message.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) Result {
	log.Debug().Str("model", req.Model).Float64("temperature", req.Temperature).Msg("openai chat completion")

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return Failure(ProviderOpenAI, openAIMessage(err), err)
	}
	if len(resp.Choices) == 0 {
		return Failure(ProviderOpenAI, "OpenAI response contained no choices", nil)
	}
	return Result{Text: resp.Choices[0].Message.Content}
}

// openAIMessage prefers the API's own message over the SDK's decorated one.
func openAIMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
