package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/protocol"
)

func taggedHandler(tag string) protocol.NodeHandler {
	return protocol.NodeHandlerFunc(func(_ context.Context, _ *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
		return map[string]any{"handler": tag}, nil
	})
}

func dispatch(t *testing.T, r *Registry, nodeType string) string {
	t.Helper()

	handler := r.Resolve(nodeType)
	require.NotNil(t, handler)

	result, err := handler.Execute(context.Background(), &models.FlowNode{Type: nodeType}, models.NewExecutionContext("exec", "flow", nil))
	require.NoError(t, err)

	tag, ok := result["handler"].(string)
	require.True(t, ok)

	return tag
}

func TestRegistryExactBeatsPrefix(t *testing.T) {
	r := NewRegistry(slog.Default())
	r.RegisterExact("send-message", taggedHandler("exact"))
	r.RegisterPrefix("send-", taggedHandler("prefix"))
	r.SetDefault(taggedHandler("default"))

	assert.Equal(t, "exact", dispatch(t, r, "send-message"))
	assert.Equal(t, "prefix", dispatch(t, r, "send-whatsapp"))
}

func TestRegistryPrefixRegistrationOrder(t *testing.T) {
	r := NewRegistry(slog.Default())
	r.RegisterPrefix("ai-", taggedHandler("first"))
	r.RegisterPrefix("ai-reply", taggedHandler("second"))
	r.SetDefault(taggedHandler("default"))

	assert.Equal(t, "first", dispatch(t, r, "ai-reply-long"))
}

func TestRegistryDefaultFallback(t *testing.T) {
	r := NewRegistry(slog.Default())
	r.RegisterExact("start", taggedHandler("start"))
	r.RegisterPrefix("ai-", taggedHandler("ai"))
	r.SetDefault(taggedHandler("default"))

	assert.Equal(t, "default", dispatch(t, r, "totally-unknown"))
	assert.Equal(t, "default", dispatch(t, r, ""))
}

func TestRegistryHealthCheck(t *testing.T) {
	r := NewRegistry(slog.Default())

	_, healthy := r.HealthCheck()
	assert.False(t, healthy)

	r.SetDefault(taggedHandler("default"))

	message, healthy := r.HealthCheck()
	assert.True(t, healthy)
	assert.Equal(t, "Registry is healthy", message)
}
