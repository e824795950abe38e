// Package action provides the handler for action-* nodes.
//
// action-http and action-code are a stub boundary: they return structural
// acknowledgments without performing the request or running the code. Making
// them real requires sandboxing and outbound-call policy that belongs to a
// dedicated execution service.
package action

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler acknowledges action nodes without executing them.
type Handler struct{}

// NewHandler creates an action node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute returns the per-subtype structural acknowledgment.
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	config := node.Config()

	switch node.NodeType() {
	case "action-http":
		method, _ := config["method"].(string)
		if method == "" {
			method = "GET"
		}

		url, _ := config["url"].(string)

		return map[string]any{"executed": true, "url": url, "method": method}, nil
	case "action-code":
		code, _ := config["code"].(string)

		return map[string]any{"executed": true, "code_length": len(code)}, nil
	default:
		return map[string]any{"executed": true, "node_type": node.NodeType()}, nil
	}
}
