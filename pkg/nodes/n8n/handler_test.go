package n8n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watacorp/botflow/pkg/gateway"
	"github.com/watacorp/botflow/pkg/models"
)

type fakeGateway struct {
	result   map[string]any
	err      error
	lastType string
	lastCfg  map[string]any
}

func (f *fakeGateway) Call(_ context.Context, nodeType string, config map[string]any) (map[string]any, error) {
	f.lastType = nodeType
	f.lastCfg = config

	return f.result, f.err
}

func TestHandler_Execute_PassesThroughGatewayResult(t *testing.T) {
	gw := &fakeGateway{result: map[string]any{"executed": true, "status": "queued"}}
	handler := NewHandler(gw)

	node := &models.FlowNode{
		ID: "v1",
		Data: models.NodeData{
			Type:   "n8n-video-generator",
			Config: map[string]any{"prompt": "robot"},
		},
	}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)

	result, err := handler.Execute(context.Background(), node, executionCtx)

	require.NoError(t, err)
	assert.Equal(t, "queued", result["status"])
	assert.Equal(t, "n8n-video-generator", gw.lastType)
	assert.Equal(t, "robot", gw.lastCfg["prompt"])
}

func TestHandler_Execute_UnconfiguredBecomesNodeFailure(t *testing.T) {
	gw := &fakeGateway{result: map[string]any{gateway.ErrorKey: "n8n webhook URL not configured for n8n-video-generator (environment staging)"}}
	handler := NewHandler(gw)

	node := &models.FlowNode{ID: "v1", Data: models.NodeData{Type: "n8n-video-generator"}}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)

	_, err := handler.Execute(context.Background(), node, executionCtx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestHandler_Execute_WrapsGatewayError(t *testing.T) {
	gw := &fakeGateway{err: &gateway.IntegrationError{NodeType: "n8n-seo-writer", StatusCode: 502, Body: "boom"}}
	handler := NewHandler(gw)

	node := &models.FlowNode{ID: "s1", Data: models.NodeData{Type: "n8n-seo-writer"}}
	executionCtx := models.NewExecutionContext("exec-1", "flow-1", nil)

	_, err := handler.Execute(context.Background(), node, executionCtx)

	var integrationErr *gateway.IntegrationError

	require.ErrorAs(t, err, &integrationErr)
	assert.Contains(t, err.Error(), "s1")
}
