// Package start provides the handler for explicit start nodes.
package start

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler marks the entry of a run. It has no side effects and ignores the
// node configuration.
type Handler struct{}

// NewHandler creates a start node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute returns the start acknowledgment.
func (h *Handler) Execute(_ context.Context, _ *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	return map[string]any{"started": true}, nil
}
