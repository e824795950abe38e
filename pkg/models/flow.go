// Package models defines the core domain models for conversational flow execution
package models

import (
	"strings"
	"time"
)

// FlowStatus represents the lifecycle state of a flow definition.
type FlowStatus string

const (
	FlowStatusDraft     FlowStatus = "draft"     // Editable, not executable
	FlowStatusPublished FlowStatus = "published" // Current active, executable
	FlowStatusArchived  FlowStatus = "archived"  // Historical, not executable
)

// Flow is a stored graph definition (nodes + edges) representing an
// automation or conversational workflow. Flows are read-only during a run.
type Flow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"       validate:"required,min=3"`
	Version   int        `json:"version"`
	Status    FlowStatus `json:"status"     validate:"required"`
	Data      FlowData   `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FlowData holds the graph itself.
type FlowData struct {
	Nodes []*FlowNode `json:"nodes"`
	Edges []*FlowEdge `json:"edges"`
}

// FlowNode is a typed unit of work within a flow. The node type is an open
// string taxonomy; config schema varies per type and is validated defensively
// by each handler.
type FlowNode struct {
	ID       string    `json:"id"                 validate:"required"`
	Type     string    `json:"type,omitempty"`
	Position *Position `json:"position,omitempty"` // presentation only, ignored by the executor
	Data     NodeData  `json:"data"`
}

// NodeData carries the node's label, semantic type and configuration document.
type NodeData struct {
	Label  string         `json:"label"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Position is the canvas placement of a node in the flow editor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FlowEdge is a directed connection from one node to another.
type FlowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Type   string `json:"type,omitempty"`
}

// NodeType returns the semantic node type, preferring data.type over the
// top-level presentation type.
func (n *FlowNode) NodeType() string {
	if n.Data.Type != "" {
		return n.Data.Type
	}

	return n.Type
}

// NodeLabel returns the display label, falling back to the node type.
func (n *FlowNode) NodeLabel() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}

	return n.NodeType()
}

// Config returns the node configuration document, never nil.
func (n *FlowNode) Config() map[string]any {
	if n.Data.Config == nil {
		return map[string]any{}
	}

	return n.Data.Config
}

// IsStartMarker reports whether the node is explicitly marked as an entry
// point: a "start" node or any "trigger-*" node.
func (n *FlowNode) IsStartMarker() bool {
	nodeType := n.NodeType()

	return nodeType == "start" || strings.HasPrefix(nodeType, "trigger-")
}

// NodeByID finds a node by its id.
func (d FlowData) NodeByID(id string) (*FlowNode, bool) {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// OutgoingEdges returns the outgoing edges of a node in definition order.
func (d FlowData) OutgoingEdges(nodeID string) []*FlowEdge {
	edges := make([]*FlowEdge, 0)

	for _, edge := range d.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// MarkerStartNodes returns nodes explicitly marked as entry points.
func (d FlowData) MarkerStartNodes() []*FlowNode {
	nodes := make([]*FlowNode, 0)

	for _, node := range d.Nodes {
		if node.IsStartMarker() {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// EntryNodes returns nodes with no incoming edge.
func (d FlowData) EntryNodes() []*FlowNode {
	hasIncoming := make(map[string]bool, len(d.Edges))
	for _, edge := range d.Edges {
		hasIncoming[edge.Target] = true
	}

	nodes := make([]*FlowNode, 0)

	for _, node := range d.Nodes {
		if !hasIncoming[node.ID] {
			nodes = append(nodes, node)
		}
	}

	return nodes
}
