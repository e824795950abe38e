// Package message provides the handler for message and send-message nodes.
package message

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/template"
)

// DefaultGreeting is used when a message node has no configured text.
const DefaultGreeting = "Hello!"

// Handler renders the configured message text against the execution context.
type Handler struct{}

// NewHandler creates a message node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute substitutes {{variable}} placeholders in the configured message and
// returns the rendered text.
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error) {
	text, ok := node.Config()["message"].(string)
	if !ok || text == "" {
		text = DefaultGreeting
	}

	rendered := template.SubstituteWithContext(text, executionCtx)

	return map[string]any{"message": rendered}, nil
}
