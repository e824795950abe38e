package protocol

import "context"

// IntegrationGateway calls out to the external webhook-based automation
// backend on behalf of integration nodes. Implementations resolve the target
// URL per (node type, environment), build the provider payload and normalize
// the response. A missing endpoint surfaces as a normal error-shaped result,
// not an error return; network and non-2xx failures return an error.
type IntegrationGateway interface {
	Call(ctx context.Context, nodeType string, config map[string]any) (map[string]any, error)
}
