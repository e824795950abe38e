// Package n8n provides the handler for n8n-* integration nodes.
package n8n

import (
	"context"
	"errors"
	"fmt"

	"github.com/watacorp/botflow/pkg/gateway"
	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/protocol"
)

// Handler delegates integration nodes to the gateway. This is the only node
// family with network side effects in the core.
type Handler struct {
	gateway protocol.IntegrationGateway
}

// NewHandler creates an n8n node handler.
func NewHandler(gw protocol.IntegrationGateway) *Handler {
	return &Handler{gateway: gw}
}

// Execute calls the gateway with the node's type and config. A soft
// "unconfigured" result from the gateway is promoted to a node failure here;
// the scheduler's continue_on_error policy decides whether that aborts the
// run.
func (h *Handler) Execute(ctx context.Context, node *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	result, err := h.gateway.Call(ctx, node.NodeType(), node.Config())
	if err != nil {
		return nil, fmt.Errorf("integration node %s: %w", node.ID, err)
	}

	if message, unconfigured := gateway.Unconfigured(result); unconfigured {
		return nil, errors.New(message)
	}

	return result, nil
}
