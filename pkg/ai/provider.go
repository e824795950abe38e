// Package ai provides AI provider implementations for ai-* nodes.
package ai

import (
	"context"
	"fmt"

	"github.com/watacorp/botflow/pkg/protocol"
)

const staticTokenCount = 50

// StaticProvider is the default, deterministic AI provider. It composes a
// placeholder response from the configured prompt and the current message
// without any network call, which keeps runs reproducible when no real
// provider is configured.
type StaticProvider struct{}

// NewStaticProvider creates the offline provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// Complete returns a deterministic response referencing the prompt and the
// user message.
func (p *StaticProvider) Complete(_ context.Context, request protocol.AIRequest) (*protocol.AIResult, error) {
	model := request.Model
	if model == "" {
		model = "static"
	}

	var text string
	if request.Model == "" && request.Message != "" {
		text = fmt.Sprintf("AI Response: I understand you said '%s'. %s", request.Message, request.Prompt)
	} else {
		text = "AI response for: " + request.Prompt
	}

	return &protocol.AIResult{
		Text:       text,
		Model:      model,
		TokensUsed: staticTokenCount,
	}, nil
}
