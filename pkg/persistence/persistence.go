// Package persistence provides the data storage abstraction for flows, bots
// and the execution ledger.
package persistence

import (
	"context"

	"github.com/watacorp/botflow/pkg/models"
)

// FlowRepository stores flow graph definitions.
type FlowRepository interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	FlowByID(ctx context.Context, id string) (*models.Flow, error)
	SaveFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, id string) error
}

// BotRepository stores bot-to-flow bindings.
type BotRepository interface {
	Bots(ctx context.Context) ([]*models.Bot, error)
	BotByID(ctx context.Context, id string) (*models.Bot, error)
	SaveBot(ctx context.Context, bot *models.Bot) error
}

// ExecutionRepository stores the execution ledger. Execution and node records
// are created while running and sealed in place when they finish.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ExecutionsByFlowID(ctx context.Context, flowID string) ([]*models.WorkflowExecution, error)

	CreateNodeExecution(ctx context.Context, record *models.NodeExecution) error
	UpdateNodeExecution(ctx context.Context, record *models.NodeExecution) error
	NodeExecutionsByExecutionID(ctx context.Context, executionID string) ([]*models.NodeExecution, error)
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	FlowRepository() FlowRepository
	BotRepository() BotRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
