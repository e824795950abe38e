package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watacorp/botflow/pkg/models"
)

func TestHandler_Execute_SubstitutesVariables(t *testing.T) {
	node := &models.FlowNode{
		ID: "m1",
		Data: models.NodeData{
			Type:   "message",
			Config: map[string]any{"message": "Hello {{customer_name}}"},
		},
	}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{
		"customer_name": "Ana",
	})

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, "Hello Ana", result["message"])
}

func TestHandler_Execute_DefaultGreeting(t *testing.T) {
	node := &models.FlowNode{ID: "m1", Data: models.NodeData{Type: "message"}}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, DefaultGreeting, result["message"])
}

func TestHandler_Execute_UnresolvedPlaceholderKept(t *testing.T) {
	node := &models.FlowNode{
		ID: "m1",
		Data: models.NodeData{
			Type:   "send-message",
			Config: map[string]any{"message": "Hi {{unknown}}"},
		},
	}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, "Hi {{unknown}}", result["message"])
}
