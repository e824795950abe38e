package condition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watacorp/botflow/pkg/models"
)

func conditionNode(config map[string]any) *models.FlowNode {
	return &models.FlowNode{
		ID:   "c1",
		Data: models.NodeData{Type: "condition", Config: config},
	}
}

func TestHandler_Execute_EqualsDefaultOperator(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{"message": "hi"})
	node := conditionNode(map[string]any{"left": "{{message}}", "right": "hi"})

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])
	assert.Equal(t, true, result["result"])
	assert.Equal(t, OperatorEquals, result["operator"])
}

func TestHandler_Execute_Contains(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{"message": "I need a refund"})
	node := conditionNode(map[string]any{"left": "{{message}}", "operator": OperatorContains, "right": "refund"})

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])
}

func TestHandler_Execute_NumericComparison(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{"total": 42})
	node := conditionNode(map[string]any{"left": "{{total}}", "operator": OperatorGreaterThan, "right": "10"})

	result, err := NewHandler().Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])
}

func TestHandler_Execute_NumericComparisonRejectsNonNumbers(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)
	node := conditionNode(map[string]any{"left": "abc", "operator": OperatorLessThan, "right": "10"})

	_, err := NewHandler().Execute(context.Background(), node, executionCtx)

	assert.Error(t, err)
}

func TestHandler_Execute_Exists(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{"customer_name": "Ana"})

	result, err := NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "{{customer_name}}", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])

	result, err = NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "{{missing_key}}", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, false, result["condition_met"])
}

func TestHandler_Execute_ExistsLooksUpContext(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", map[string]any{
		"empty": "",
		"note":  "{{literal braces}}",
	})

	result, err := NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "{{empty}}", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])

	result, err = NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "{{note}}", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])

	result, err = NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "plain text", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, true, result["condition_met"])

	result, err = NewHandler().Execute(context.Background(),
		conditionNode(map[string]any{"left": "", "operator": OperatorExists}), executionCtx)
	require.NoError(t, err)
	assert.Equal(t, false, result["condition_met"])
}

func TestHandler_Execute_UnsupportedOperator(t *testing.T) {
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)
	node := conditionNode(map[string]any{"left": "a", "operator": "matches", "right": "b"})

	_, err := NewHandler().Execute(context.Background(), node, executionCtx)

	assert.ErrorContains(t, err, "unsupported condition operator")
}
