// Package protocol defines the interfaces and contracts for pluggable node
// handlers and external collaborators.
package protocol

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// NodeHandler executes one node family. Handlers receive the node (with its
// configuration document) and the run's execution context, and return an
// output map that the scheduler merges back into the context. Handlers must
// validate config shapes defensively: node types form an open taxonomy and
// config is schema-less.
type NodeHandler interface {
	Execute(ctx context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error)
}

// NodeHandlerFunc adapts a plain function to the NodeHandler interface.
type NodeHandlerFunc func(ctx context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error)

// Execute implements NodeHandler.
func (f NodeHandlerFunc) Execute(ctx context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error) {
	return f(ctx, node, executionCtx)
}
