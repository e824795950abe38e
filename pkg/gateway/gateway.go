// Package gateway provides the adapter for the external n8n automation
// backend invoked by n8n-* nodes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single webhook call. Target automations may run
// long synchronous jobs, so the bound is generous.
const DefaultTimeout = 300 * time.Second

// Environments accepted by the endpoint table.
const (
	EnvironmentTest       = "test"
	EnvironmentProduction = "production"
)

// ErrorKey marks a soft configuration failure inside an otherwise normal
// result map.
const ErrorKey = "error"

// CustomWebhookType is the node type whose URL comes verbatim from config.
const CustomWebhookType = "n8n-webhook"

// Endpoints maps node type → environment → webhook URL.
type Endpoints map[string]map[string]string

// DefaultEndpoints returns the built-in integration catalog.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		"n8n-video-generator": {
			EnvironmentProduction: "https://n8n.srv1078465.hstgr.cloud/webhook/wh-generate-video-ugc-ads-autopost-social",
			EnvironmentTest:       "https://watacorp.app.n8n.cloud/webhook/video-ads",
		},
		"n8n-seo-writer": {
			EnvironmentProduction: "https://n8n.srv1078465.hstgr.cloud/webhook/seo-writer",
			EnvironmentTest:       "https://watacorp.app.n8n.cloud/webhook/seo-writer-test",
		},
		"n8n-omnipost": {
			EnvironmentProduction: "https://n8n.srv1078465.hstgr.cloud/webhook/omnipost",
			EnvironmentTest:       "https://watacorp.app.n8n.cloud/webhook/omnipost-test",
		},
	}
}

// Config carries the gateway's external configuration, injected once at
// process start.
type Config struct {
	Endpoints          Endpoints
	DefaultEnvironment string
	APIKey             string
	Timeout            time.Duration
}

// Client performs the webhook calls. One POST per call, no automatic retry;
// retry policy belongs to callers.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	defaultEnv string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(logger *slog.Logger, config Config) *Client {
	if config.Endpoints == nil {
		config.Endpoints = DefaultEndpoints()
	}

	if config.DefaultEnvironment == "" {
		config.DefaultEnvironment = EnvironmentTest
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		endpoints:  config.Endpoints,
		defaultEnv: config.DefaultEnvironment,
		apiKey:     config.APIKey,
		logger:     logger.With("module", "gateway"),
	}
}

// Call resolves the webhook URL for a node type, posts the provider payload
// and normalizes the response. A missing endpoint returns a soft
// "unconfigured" result rather than an error, so callers decide whether that
// fails the node.
func (c *Client) Call(ctx context.Context, nodeType string, config map[string]any) (map[string]any, error) {
	webhookURL := c.webhookURL(nodeType, config)
	if webhookURL == "" {
		return map[string]any{
			ErrorKey: fmt.Sprintf("n8n webhook URL not configured for %s (environment %s)",
				nodeType, c.environment(config)),
		}, nil
	}

	payload := buildPayload(nodeType, config)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &IntegrationError{NodeType: nodeType, URL: webhookURL, Err: err}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, &IntegrationError{NodeType: nodeType, URL: webhookURL, Err: err}
	}

	request.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.InfoContext(ctx, "Calling integration webhook", "node_type", nodeType, "url", webhookURL)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &IntegrationError{NodeType: nodeType, URL: webhookURL, Err: err}
	}

	defer func() {
		if err := response.Body.Close(); err != nil {
			c.logger.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &IntegrationError{NodeType: nodeType, URL: webhookURL, StatusCode: response.StatusCode, Err: err}
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, &IntegrationError{
			NodeType:   nodeType,
			URL:        webhookURL,
			StatusCode: response.StatusCode,
			Body:       string(responseBody),
		}
	}

	return normalizeResult(responseBody), nil
}

// Unconfigured reports whether a gateway result is the soft configuration
// failure shape.
func Unconfigured(result map[string]any) (string, bool) {
	message, ok := result[ErrorKey].(string)

	return message, ok
}

func (c *Client) webhookURL(nodeType string, config map[string]any) string {
	if nodeType == CustomWebhookType {
		url, _ := config["webhook_url"].(string)

		return url
	}

	return c.endpoints[nodeType][c.environment(config)]
}

func (c *Client) environment(config map[string]any) string {
	if env, ok := config["n8n_env"].(string); ok && env != "" {
		return env
	}

	return c.defaultEnv
}

func normalizeResult(responseBody []byte) map[string]any {
	var decoded map[string]any
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		decoded = map[string]any{}
	}

	result := map[string]any{
		"executed":     true,
		"n8n_response": decoded,
	}

	for _, key := range []string{"status", "message", "job_id", "video_url", "facebook_post_id"} {
		if value, ok := decoded[key]; ok {
			result[key] = value
		}
	}

	return result
}
