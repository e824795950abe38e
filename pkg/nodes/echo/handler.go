// Package echo provides the fallback handler for unrecognized node types.
package echo

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler acknowledges nodes whose type matches no registered handler, so
// unknown types never fall through silently.
type Handler struct{}

// NewHandler creates the default handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute echoes the node type.
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	return map[string]any{
		"executed":  true,
		"node_type": node.NodeType(),
	}, nil
}
