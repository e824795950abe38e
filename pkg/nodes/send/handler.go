// Package send provides the handler for send-* channel nodes.
package send

import (
	"context"
	"strings"
	"time"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler acknowledges an outbound message for a channel platform. Actual
// channel delivery is an external collaborator concern; this handler is pure.
type Handler struct{}

// NewHandler creates a send node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute returns the delivery acknowledgment for the platform encoded in the
// node type suffix (send-whatsapp → whatsapp).
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	platform := strings.TrimPrefix(node.NodeType(), "send-")
	messageText, _ := node.Config()["message"].(string)

	return map[string]any{
		"sent":      true,
		"platform":  platform,
		"message":   messageText,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
