package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatCompletionsClient is the part of the SDK's chat service the provider uses.
type ChatCompletionsClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// NewChatCompletionsClient builds the SDK client. A non-empty baseURL points it at any
// OpenAI-compatible endpoint.
func NewChatCompletionsClient(apiKey, baseURL string) ChatCompletionsClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client.Chat.Completions
}
