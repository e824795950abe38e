// Package registry maps node types to their handlers.
package registry

import (
	"log/slog"
	"strings"

	"github.com/watacorp/botflow/pkg/protocol"
)

type prefixEntry struct {
	prefix  string
	handler protocol.NodeHandler
}

// Registry resolves a node type tag to a handler. Resolution is total: exact
// matches take priority, then prefix matches in registration order, then the
// default handler. Unknown types never fall through silently.
type Registry struct {
	logger         *slog.Logger
	exactHandlers  map[string]protocol.NodeHandler
	prefixHandlers []prefixEntry
	defaultHandler protocol.NodeHandler
}

// NewRegistry creates an empty registry. A default handler must be set before
// the registry is used for dispatch.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		exactHandlers: make(map[string]protocol.NodeHandler),
	}
}

// RegisterExact binds a handler to an exact node type tag.
func (r *Registry) RegisterExact(nodeType string, handler protocol.NodeHandler) {
	r.exactHandlers[nodeType] = handler
}

// RegisterPrefix binds a handler to a node type prefix. Earlier registrations
// win when prefixes overlap.
func (r *Registry) RegisterPrefix(prefix string, handler protocol.NodeHandler) {
	r.prefixHandlers = append(r.prefixHandlers, prefixEntry{prefix: prefix, handler: handler})
}

// SetDefault binds the handler used when no exact or prefix match applies.
func (r *Registry) SetDefault(handler protocol.NodeHandler) {
	r.defaultHandler = handler
}

// Resolve returns the handler for a node type tag.
func (r *Registry) Resolve(nodeType string) protocol.NodeHandler {
	if handler, ok := r.exactHandlers[nodeType]; ok {
		return handler
	}

	for _, entry := range r.prefixHandlers {
		if strings.HasPrefix(nodeType, entry.prefix) {
			return entry.handler
		}
	}

	r.logger.Debug("No handler registered for node type, using default", "node_type", nodeType)

	return r.defaultHandler
}

// HealthCheck reports whether the registry can dispatch every node type.
func (r *Registry) HealthCheck() (string, bool) {
	if r.defaultHandler == nil {
		return "Registry has no default handler", false
	}

	return "Registry is healthy", true
}
