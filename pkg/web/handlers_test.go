package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/nodes/echo"
	"github.com/watacorp/botflow/pkg/nodes/message"
	"github.com/watacorp/botflow/pkg/nodes/start"
	"github.com/watacorp/botflow/pkg/persistence/file"
	"github.com/watacorp/botflow/pkg/registry"
	"github.com/watacorp/botflow/pkg/web"
	"github.com/watacorp/botflow/pkg/workflow"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	logger := slog.Default()

	reg := registry.NewRegistry(logger)
	reg.RegisterExact("start", start.NewHandler())
	reg.RegisterExact("message", message.NewHandler())
	reg.SetDefault(echo.NewHandler())

	scheduler := workflow.NewScheduler(logger, reg, store.ExecutionRepository(),
		workflow.NewLifecyclePublisher(nil, logger), nil)
	service := workflow.NewService(logger, store, scheduler)
	handlers := web.NewAPIHandlers(service, validator.New(validator.WithRequiredStructEnabled()), reg)

	app := fiber.New()

	flows := app.Group("/flows")
	flows.Get("/", handlers.GetFlows)
	flows.Post("/", handlers.CreateFlow)
	flows.Get("/:id", handlers.GetFlow)
	flows.Patch("/:id", handlers.UpdateFlow)
	flows.Delete("/:id", handlers.DeleteFlow)
	flows.Post("/:id/run", handlers.RunFlow)
	flows.Get("/:id/executions", handlers.GetFlowExecutions)

	bots := app.Group("/bots")
	bots.Get("/", handlers.GetBots)
	bots.Post("/", handlers.CreateBot)
	bots.Post("/:id/messages", handlers.HandleInboundMessage)

	app.Get("/executions/:id", handlers.GetExecution)
	app.Get("/health", handlers.HealthCheck)

	return app, store
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func seedGreetingFlow(t *testing.T, store *file.Persistence) {
	t.Helper()

	flow := &models.Flow{
		ID:     "flow-greeting",
		Name:   "Greeting flow",
		Status: models.FlowStatusPublished,
		Data: models.FlowData{
			Nodes: []*models.FlowNode{
				{ID: "n1", Data: models.NodeData{Type: "start"}},
				{ID: "n2", Data: models.NodeData{
					Type:   "message",
					Config: map[string]any{"message": "Hello {{customer_name}}"},
				}},
			},
			Edges: []*models.FlowEdge{{ID: "e1", Source: "n1", Target: "n2"}},
		},
	}
	require.NoError(t, store.FlowRepository().SaveFlow(context.Background(), flow))
}

func TestCreateFlowEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/", web.CreateFlowRequest{Name: "Order flow"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var flow models.Flow

	decodeBody(t, resp, &flow)
	assert.NotEmpty(t, flow.ID)
	assert.Equal(t, "Order flow", flow.Name)
	assert.Equal(t, models.FlowStatusDraft, flow.Status)
}

func TestCreateFlowValidationError(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/", web.CreateFlowRequest{Name: "ab"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetFlowNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/flows/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunFlowEndpoint(t *testing.T) {
	app, store := setupTestApp(t)
	seedGreetingFlow(t, store)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/flow-greeting/run", web.RunFlowRequest{
		Input: map[string]any{"customer_name": "Ana"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result workflow.RunResult

	decodeBody(t, resp, &result)
	assert.Equal(t, "Hello Ana", result.Response)
	assert.Equal(t, 2, result.NodesExecuted)
	assert.NotEmpty(t, result.ExecutionID)
}

func TestRunFlowNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/ghost/run", web.RunFlowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInboundMessageEndpoint(t *testing.T) {
	app, store := setupTestApp(t)
	seedGreetingFlow(t, store)

	bot := &models.Bot{ID: "bot-1", Name: "Support bot", FlowID: "flow-greeting", IsActive: true}
	require.NoError(t, store.BotRepository().SaveBot(context.Background(), bot))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bots/bot-1/messages", web.InboundMessageRequest{
		Content:        "hi",
		ConversationID: "conv-1",
		CustomerName:   "Ana",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result workflow.RunResult

	decodeBody(t, resp, &result)
	assert.Equal(t, "Hello Ana", result.Response)
}

func TestInboundMessageInactiveBot(t *testing.T) {
	app, store := setupTestApp(t)
	seedGreetingFlow(t, store)

	bot := &models.Bot{ID: "bot-1", Name: "Support bot", FlowID: "flow-greeting", IsActive: false}
	require.NoError(t, store.BotRepository().SaveBot(context.Background(), bot))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bots/bot-1/messages", web.InboundMessageRequest{
		Content: "hi",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestInboundMessageMissingContent(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bots/bot-1/messages", web.InboundMessageRequest{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecutionEndpoints(t *testing.T) {
	app, store := setupTestApp(t)
	seedGreetingFlow(t, store)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/flow-greeting/run", web.RunFlowRequest{}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result workflow.RunResult

	decodeBody(t, resp, &result)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/flows/flow-greeting/executions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Executions []*models.WorkflowExecution `json:"executions"`
	}

	decodeBody(t, resp, &listing)
	require.Len(t, listing.Executions, 1)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/executions/"+result.ExecutionID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var detail web.ExecutionResponse

	decodeBody(t, resp, &detail)
	assert.Equal(t, models.ExecutionStatusCompleted, detail.Execution.Status)
	assert.Len(t, detail.NodeExecutions, 2)
}

func TestCreateBotEndpoint(t *testing.T) {
	app, store := setupTestApp(t)
	seedGreetingFlow(t, store)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/bots/", web.CreateBotRequest{
		Name:     "Support bot",
		FlowID:   "flow-greeting",
		IsActive: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/bots/", web.CreateBotRequest{
		Name:   "Broken bot",
		FlowID: "ghost",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthCheckEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}

	decodeBody(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
}
