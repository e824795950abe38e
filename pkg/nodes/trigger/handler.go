// Package trigger provides the handler for trigger-* entry nodes.
package trigger

import (
	"context"
	"time"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler acknowledges that a trigger node fired. Trigger nodes mark run
// entry points; the triggering event itself arrives from outside the graph.
type Handler struct{}

// NewHandler creates a trigger node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute returns the trigger acknowledgment.
func (h *Handler) Execute(_ context.Context, _ *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	return map[string]any{
		"triggered": true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
