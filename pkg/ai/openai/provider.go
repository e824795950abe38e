// Package openai provides an AI provider backed by the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/watacorp/botflow/pkg/protocol"
)

const defaultModel = openai.ChatModelGPT4oMini

// Provider calls the OpenAI chat completions endpoint. It replaces the
// deterministic static provider when an API key is configured.
type Provider struct {
	client openai.Client
	model  openai.ChatModel
}

// NewProvider creates an OpenAI-backed provider. An empty model selects a
// small default chat model.
func NewProvider(apiKey, model string) *Provider {
	client := openai.NewClient(option.WithAPIKey(apiKey))

	chatModel := openai.ChatModel(model)
	if chatModel == "" {
		chatModel = defaultModel
	}

	return &Provider{client: client, model: chatModel}
}

// Complete performs one chat completion call.
func (p *Provider) Complete(ctx context.Context, request protocol.AIRequest) (*protocol.AIResult, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if request.Prompt != "" {
		messages = append(messages, openai.SystemMessage(request.Prompt))
	}

	if request.Message != "" {
		messages = append(messages, openai.UserMessage(request.Message))
	}

	if len(messages) == 0 {
		return nil, errors.New("ai request has neither prompt nor message")
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &protocol.AIResult{
		Text:       completion.Choices[0].Message.Content,
		Model:      string(p.model),
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}
