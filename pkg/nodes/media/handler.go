// Package media provides the handler for media-* nodes.
package media

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// Handler acknowledges media processing. Storage and transformation of the
// media itself happen in external collaborators.
type Handler struct{}

// NewHandler creates a media node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute returns the processing acknowledgment with the configured media URL.
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, _ *models.ExecutionContext) (map[string]any, error) {
	mediaURL, _ := node.Config()["media_url"].(string)

	return map[string]any{
		"processed": true,
		"media_url": mediaURL,
		"type":      node.NodeType(),
	}, nil
}
