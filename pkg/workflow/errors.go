// Package workflow provides standardized error types for flow execution.
package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNodes indicates the flow graph has no nodes to execute.
	ErrNoNodes = errors.New("flow has no nodes")

	// ErrNoStartNode indicates no entry point could be selected for the graph.
	ErrNoStartNode = errors.New("flow has no start node")

	// ErrDanglingEdge indicates an edge points at a node id that does not exist.
	ErrDanglingEdge = errors.New("edge targets unknown node")

	// ErrBotInactive indicates the bot addressed by an inbound message is disabled.
	ErrBotInactive = errors.New("bot is not active")

	// ErrBotHasNoFlow indicates the bot has no flow bound to it.
	ErrBotHasNoFlow = errors.New("bot has no flow configured")
)

// NodeExecutionError wraps a handler failure with the node it happened on.
type NodeExecutionError struct {
	NodeID   string
	NodeType string
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// GraphError wraps a structural graph problem found before or during traversal.
type GraphError struct {
	FlowID string
	Err    error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("flow %s: %v", e.FlowID, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// IsGraphError checks whether an error indicates a structural graph problem.
func IsGraphError(err error) bool {
	return errors.Is(err, ErrNoNodes) ||
		errors.Is(err, ErrNoStartNode) ||
		errors.Is(err, ErrDanglingEdge)
}
