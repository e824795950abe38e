package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowData_Unmarshal_IgnoresPosition(t *testing.T) {
	raw := `{
		"nodes": [
			{"id": "t1", "type": "custom", "position": {"x": 10, "y": 20}, "data": {"label": "Start", "type": "start"}},
			{"id": "m1", "data": {"label": "Greet", "type": "message", "config": {"message": "Hello {{customer_name}}"}}}
		],
		"edges": [
			{"id": "e1", "source": "t1", "target": "m1", "type": "default"}
		]
	}`

	var data FlowData

	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	require.Len(t, data.Nodes, 2)
	require.Len(t, data.Edges, 1)

	assert.Equal(t, "start", data.Nodes[0].NodeType())
	assert.Equal(t, "Start", data.Nodes[0].NodeLabel())
	assert.Equal(t, "message", data.Nodes[1].NodeType())
	assert.Equal(t, "Hello {{customer_name}}", data.Nodes[1].Config()["message"])
}

func TestFlowNode_NodeType_FallsBackToTopLevelType(t *testing.T) {
	node := &FlowNode{ID: "n1", Type: "message"}

	assert.Equal(t, "message", node.NodeType())
	assert.Equal(t, "message", node.NodeLabel())
}

func TestFlowNode_IsStartMarker(t *testing.T) {
	assert.True(t, (&FlowNode{ID: "a", Data: NodeData{Type: "start"}}).IsStartMarker())
	assert.True(t, (&FlowNode{ID: "b", Data: NodeData{Type: "trigger-webhook"}}).IsStartMarker())
	assert.False(t, (&FlowNode{ID: "c", Data: NodeData{Type: "message"}}).IsStartMarker())
	assert.False(t, (&FlowNode{ID: "d", Data: NodeData{Type: "triggerless"}}).IsStartMarker())
}

func TestFlowData_OutgoingEdges_PreservesDefinitionOrder(t *testing.T) {
	data := FlowData{
		Nodes: []*FlowNode{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []*FlowEdge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
			{ID: "e3", Source: "b", Target: "c"},
		},
	}

	edges := data.OutgoingEdges("a")
	require.Len(t, edges, 2)
	assert.Equal(t, "b", edges[0].Target)
	assert.Equal(t, "c", edges[1].Target)
}

func TestFlowData_EntryNodes(t *testing.T) {
	data := FlowData{
		Nodes: []*FlowNode{
			{ID: "a", Data: NodeData{Type: "message"}},
			{ID: "b", Data: NodeData{Type: "message"}},
		},
		Edges: []*FlowEdge{{ID: "e1", Source: "a", Target: "b"}},
	}

	entries := data.EntryNodes()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
}

func TestFlow_Validation_RequiresName(t *testing.T) {
	flow := &Flow{ID: "flow-1", Name: "ab", Status: FlowStatusPublished}

	validate := validator.New()
	err := validate.Struct(flow)
	assert.Error(t, err)
}

func TestWorkflowExecution_Complete_SetsTerminalFields(t *testing.T) {
	execution := &WorkflowExecution{
		ID:         "exec-1",
		FlowID:     "flow-1",
		Status:     ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		TotalNodes: 3,
	}

	assert.False(t, execution.IsTerminal())

	execution.Complete(map[string]any{"response": "ok"}, 3)

	assert.True(t, execution.IsTerminal())
	assert.Equal(t, ExecutionStatusCompleted, execution.Status)
	require.NotNil(t, execution.CompletedAt)
	assert.Equal(t, 3, execution.CompletedNodes)
	assert.LessOrEqual(t, execution.CompletedNodes, execution.TotalNodes)
}

func TestWorkflowExecution_Fail_RecordsErrorMessage(t *testing.T) {
	execution := &WorkflowExecution{
		ID:         "exec-2",
		FlowID:     "flow-1",
		Status:     ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		TotalNodes: 5,
	}

	execution.Fail("node m1 exploded", 2)

	assert.Equal(t, ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "node m1 exploded", execution.ErrorMessage)
	require.NotNil(t, execution.CompletedAt)
	assert.Less(t, execution.CompletedNodes, execution.TotalNodes)
}

func TestNodeExecution_Complete_StampsDuration(t *testing.T) {
	node := &NodeExecution{
		ID:                  "nexec-1",
		WorkflowExecutionID: "exec-1",
		NodeID:              "m1",
		NodeType:            "message",
		Status:              NodeExecutionStatusRunning,
		StartedAt:           time.Now().UTC().Add(-50 * time.Millisecond),
	}

	node.Complete(map[string]any{"message": "hi"})

	assert.Equal(t, NodeExecutionStatusCompleted, node.Status)
	require.NotNil(t, node.ExecutionTimeMS)
	assert.GreaterOrEqual(t, *node.ExecutionTimeMS, int64(0))
}

func TestExecutionContext_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"message": "hi"}
	ctx := NewExecutionContext("exec-1", "flow-1", seed)

	ctx.Set("extra", true)

	_, leaked := seed["extra"]
	assert.False(t, leaked)

	value, ok := ctx.Get("message")
	require.True(t, ok)
	assert.Equal(t, "hi", value)
}

func TestExecutionContext_Snapshot_IsIndependent(t *testing.T) {
	ctx := NewExecutionContext("exec-1", "flow-1", map[string]any{"a": 1})

	snapshot := ctx.Snapshot()
	ctx.Set("b", 2)

	_, ok := snapshot["b"]
	assert.False(t, ok)
}
