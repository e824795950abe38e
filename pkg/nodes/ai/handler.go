// Package ai provides the handler for the ai-* node family.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/protocol"
)

const defaultConfidence = 0.85

// Handler executes ai-* nodes through an AI provider collaborator. The
// provider defaults to a deterministic offline implementation; wiring a real
// provider changes the text, not the output contract.
type Handler struct {
	provider protocol.AIProvider
}

// NewHandler creates an AI node handler backed by the given provider.
func NewHandler(provider protocol.AIProvider) *Handler {
	return &Handler{provider: provider}
}

// Execute dispatches on the ai-* subtype.
func (h *Handler) Execute(ctx context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error) {
	config := node.Config()
	nodeType := node.NodeType()

	prompt, _ := config["prompt"].(string)
	userMessage, _ := executionCtx.Values["message"].(string)

	switch {
	case nodeType == "ai-reply":
		return h.reply(ctx, prompt, userMessage)
	case nodeType == "ai-classify":
		if result, ok := classify(config); ok {
			return result, nil
		}

		return h.suggest(ctx, nodeType, prompt, userMessage)
	default:
		return h.suggest(ctx, nodeType, prompt, userMessage)
	}
}

func (h *Handler) reply(ctx context.Context, prompt, userMessage string) (map[string]any, error) {
	result, err := h.provider.Complete(ctx, protocol.AIRequest{Prompt: prompt, Message: userMessage})
	if err != nil {
		return nil, fmt.Errorf("ai provider call failed: %w", err)
	}

	return map[string]any{
		"response":    result.Text,
		"model":       result.Model,
		"tokens_used": result.TokensUsed,
	}, nil
}

func (h *Handler) suggest(ctx context.Context, nodeType, prompt, userMessage string) (map[string]any, error) {
	model := strings.TrimPrefix(nodeType, "ai-")

	result, err := h.provider.Complete(ctx, protocol.AIRequest{Prompt: prompt, Message: userMessage, Model: model})
	if err != nil {
		return nil, fmt.Errorf("ai provider call failed: %w", err)
	}

	return map[string]any{
		"suggestion":  result.Text,
		"model":       model,
		"tokens_used": result.TokensUsed,
	}, nil
}

func classify(config map[string]any) (map[string]any, bool) {
	categories, ok := config["categories"].([]any)
	if !ok || len(categories) == 0 {
		return nil, false
	}

	return map[string]any{
		"category":   categories[0],
		"confidence": defaultConfidence,
	}, true
}
