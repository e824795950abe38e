// Package cmd provides common initialization helpers for the command-line
// entrypoints.
package cmd

import (
	"log/slog"

	"github.com/watacorp/botflow/pkg/ai"
	"github.com/watacorp/botflow/pkg/ai/openai"
	"github.com/watacorp/botflow/pkg/gateway"
	"github.com/watacorp/botflow/pkg/nodes/action"
	ainode "github.com/watacorp/botflow/pkg/nodes/ai"
	"github.com/watacorp/botflow/pkg/nodes/condition"
	"github.com/watacorp/botflow/pkg/nodes/echo"
	"github.com/watacorp/botflow/pkg/nodes/media"
	"github.com/watacorp/botflow/pkg/nodes/message"
	"github.com/watacorp/botflow/pkg/nodes/n8n"
	"github.com/watacorp/botflow/pkg/nodes/send"
	"github.com/watacorp/botflow/pkg/nodes/start"
	"github.com/watacorp/botflow/pkg/nodes/trigger"
	"github.com/watacorp/botflow/pkg/protocol"
	"github.com/watacorp/botflow/pkg/registry"
)

// RegistryOptions carries the external configuration the node handlers need.
type RegistryOptions struct {
	N8NEnvironment string
	N8NAPIKey      string
	OpenAIAPIKey   string
	OpenAIModel    string
}

// NewNodeRegistry builds the dispatch table for every native node family.
// Exact registrations win over prefixes; prefixes match in registration
// order; anything unknown lands on the echo handler.
func NewNodeRegistry(logger *slog.Logger, options RegistryOptions) *registry.Registry {
	reg := registry.NewRegistry(logger)

	gatewayClient := gateway.NewClient(logger, gateway.Config{
		DefaultEnvironment: options.N8NEnvironment,
		APIKey:             options.N8NAPIKey,
	})

	var provider protocol.AIProvider = ai.NewStaticProvider()
	if options.OpenAIAPIKey != "" {
		provider = openai.NewProvider(options.OpenAIAPIKey, options.OpenAIModel)
	}

	reg.RegisterExact("start", start.NewHandler())
	reg.RegisterExact("message", message.NewHandler())
	reg.RegisterExact("send-message", message.NewHandler())
	reg.RegisterExact("condition", condition.NewHandler())

	reg.RegisterPrefix("ai-", ainode.NewHandler(provider))
	reg.RegisterPrefix("n8n-", n8n.NewHandler(gatewayClient))
	reg.RegisterPrefix("trigger-", trigger.NewHandler())
	reg.RegisterPrefix("send-", send.NewHandler())
	reg.RegisterPrefix("media-", media.NewHandler())
	reg.RegisterPrefix("action-", action.NewHandler())
	reg.RegisterPrefix("logic-", condition.NewHandler())

	reg.SetDefault(echo.NewHandler())

	return reg
}
