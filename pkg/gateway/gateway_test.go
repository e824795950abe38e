package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClient_Call_NormalizesResponse(t *testing.T) {
	var receivedPayload map[string]any

	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &receivedPayload))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "queued", "message": "rendering", "job_id": "job-7", "video_url": "https://cdn.example/v.mp4", "extra": 1}`))
	}))
	defer server.Close()

	client := NewClient(testLogger(), Config{
		Endpoints: Endpoints{
			"n8n-video-generator": {EnvironmentTest: server.URL},
		},
		APIKey: "sekret",
	})

	result, err := client.Call(context.Background(), "n8n-video-generator", map[string]any{
		"prompt":    "a dancing robot",
		"platforms": []any{"tiktok"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer sekret", receivedAuth)
	assert.Equal(t, "a dancing robot", receivedPayload["prompt"])
	assert.Equal(t, []any{"tiktok"}, receivedPayload["platforms"])
	assert.Equal(t, []any{}, receivedPayload["images"])

	assert.Equal(t, true, result["executed"])
	assert.Equal(t, "queued", result["status"])
	assert.Equal(t, "rendering", result["message"])
	assert.Equal(t, "job-7", result["job_id"])
	assert.Equal(t, "https://cdn.example/v.mp4", result["video_url"])

	raw, ok := result["n8n_response"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), raw["extra"])
}

func TestClient_Call_UnconfiguredEndpointIsSoft(t *testing.T) {
	client := NewClient(testLogger(), Config{Endpoints: Endpoints{}})

	result, err := client.Call(context.Background(), "n8n-video-generator", map[string]any{
		"n8n_env": "staging",
	})

	require.NoError(t, err)

	message, unconfigured := Unconfigured(result)
	require.True(t, unconfigured)
	assert.Contains(t, message, "n8n-video-generator")
	assert.Contains(t, message, "staging")
}

func TestClient_Call_Non2xxIsIntegrationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(testLogger(), Config{
		Endpoints: Endpoints{"n8n-seo-writer": {EnvironmentTest: server.URL}},
	})

	_, err := client.Call(context.Background(), "n8n-seo-writer", map[string]any{"topic": "golang"})

	var integrationErr *IntegrationError

	require.ErrorAs(t, err, &integrationErr)
	assert.Equal(t, http.StatusBadGateway, integrationErr.StatusCode)
	assert.Contains(t, integrationErr.Body, "upstream exploded")
}

func TestClient_Call_CustomWebhookUsesConfigURLAndBody(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &receivedPayload))
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	client := NewClient(testLogger(), Config{})

	result, err := client.Call(context.Background(), CustomWebhookType, map[string]any{
		"webhook_url": server.URL,
		"body":        `{"hello": "world"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, "world", receivedPayload["hello"])
	assert.Equal(t, "ok", result["status"])
}

func TestClient_Call_MalformedCustomBodyBecomesEmptyPayload(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &receivedPayload))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testLogger(), Config{})

	_, err := client.Call(context.Background(), CustomWebhookType, map[string]any{
		"webhook_url": server.URL,
		"body":        "{not json",
	})

	require.NoError(t, err)
	assert.Empty(t, receivedPayload)
}

func TestClient_Call_TransportFailure(t *testing.T) {
	client := NewClient(testLogger(), Config{})

	_, err := client.Call(context.Background(), CustomWebhookType, map[string]any{
		"webhook_url": "http://127.0.0.1:1/unreachable",
	})

	var integrationErr *IntegrationError

	require.True(t, errors.As(err, &integrationErr))
	assert.NotNil(t, integrationErr.Unwrap())
}
