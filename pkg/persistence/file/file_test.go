package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func TestFlowRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestPersistence(t).FlowRepository()

	flow := &models.Flow{
		ID:      "flow-1",
		Name:    "Greeting flow",
		Version: 1,
		Status:  models.FlowStatusPublished,
		Data: models.FlowData{
			Nodes: []*models.FlowNode{
				{ID: "n1", Data: models.NodeData{Type: "start"}},
				{ID: "n2", Data: models.NodeData{Type: "message", Config: map[string]any{"message": "hi"}}},
			},
			Edges: []*models.FlowEdge{{ID: "e1", Source: "n1", Target: "n2"}},
		},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.SaveFlow(ctx, flow))

	loaded, err := repo.FlowByID(ctx, "flow-1")
	require.NoError(t, err)
	assert.Equal(t, "Greeting flow", loaded.Name)
	require.Len(t, loaded.Data.Nodes, 2)
	assert.Equal(t, "message", loaded.Data.Nodes[1].NodeType())

	flows, err := repo.Flows(ctx)
	require.NoError(t, err)
	assert.Len(t, flows, 1)

	require.NoError(t, repo.DeleteFlow(ctx, "flow-1"))

	_, err = repo.FlowByID(ctx, "flow-1")
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestFlowRepositoryMissingFlow(t *testing.T) {
	repo := newTestPersistence(t).FlowRepository()

	_, err := repo.FlowByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestBotRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestPersistence(t).BotRepository()

	bot := &models.Bot{ID: "bot-1", Name: "Support bot", FlowID: "flow-1", IsActive: true}
	require.NoError(t, repo.SaveBot(ctx, bot))

	loaded, err := repo.BotByID(ctx, "bot-1")
	require.NoError(t, err)
	assert.Equal(t, "flow-1", loaded.FlowID)
	assert.True(t, loaded.IsActive)

	_, err = repo.BotByID(ctx, "bot-2")
	assert.True(t, persistence.IsBotNotFound(err))
}

func TestExecutionLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestPersistence(t).ExecutionRepository()

	execution := &models.WorkflowExecution{
		ID:         "exec-1",
		FlowID:     "flow-1",
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		TotalNodes: 2,
	}
	require.NoError(t, repo.CreateExecution(ctx, execution))

	record := &models.NodeExecution{
		ID:                  "ne-1",
		WorkflowExecutionID: "exec-1",
		NodeID:              "n1",
		NodeType:            "start",
		Status:              models.NodeExecutionStatusRunning,
		StartedAt:           time.Now().UTC(),
	}
	require.NoError(t, repo.CreateNodeExecution(ctx, record))

	record.Complete(map[string]any{"started": true})
	require.NoError(t, repo.UpdateNodeExecution(ctx, record))

	execution.Complete(map[string]any{"response": "hi"}, 2)
	require.NoError(t, repo.UpdateExecution(ctx, execution))

	loaded, err := repo.ExecutionByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.CompletedAt)
	assert.Equal(t, 2, loaded.CompletedNodes)

	records, err := repo.NodeExecutionsByExecutionID(ctx, "exec-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.NodeExecutionStatusCompleted, records[0].Status)
	require.NotNil(t, records[0].ExecutionTimeMS)
}

func TestExecutionsByFlowIDOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newTestPersistence(t).ExecutionRepository()

	older := &models.WorkflowExecution{
		ID:        "exec-old",
		FlowID:    "flow-1",
		Status:    models.ExecutionStatusCompleted,
		StartedAt: time.Now().UTC().Add(-time.Hour),
	}
	newer := &models.WorkflowExecution{
		ID:        "exec-new",
		FlowID:    "flow-1",
		Status:    models.ExecutionStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	other := &models.WorkflowExecution{
		ID:        "exec-other",
		FlowID:    "flow-2",
		Status:    models.ExecutionStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.CreateExecution(ctx, older))
	require.NoError(t, repo.CreateExecution(ctx, newer))
	require.NoError(t, repo.CreateExecution(ctx, other))

	executions, err := repo.ExecutionsByFlowID(ctx, "flow-1")
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-new", executions[0].ID)
	assert.Equal(t, "exec-old", executions[1].ID)
}

func TestUpdateMissingExecutionFails(t *testing.T) {
	ctx := context.Background()
	repo := newTestPersistence(t).ExecutionRepository()

	err := repo.UpdateExecution(ctx, &models.WorkflowExecution{ID: "ghost"})
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestHealthCheck(t *testing.T) {
	persistence := newTestPersistence(t)
	assert.NoError(t, persistence.HealthCheck(context.Background()))

	missing := NewPersistence("/nonexistent/botflow-data")
	assert.Error(t, missing.HealthCheck(context.Background()))
}
