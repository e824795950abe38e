package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// FlowRepository stores flows as JSON values with a set index for listing.
type FlowRepository struct {
	client *goredis.Client
}

// Flows returns all stored flows.
func (r *FlowRepository) Flows(ctx context.Context) ([]*models.Flow, error) {
	ids, err := r.client.SMembers(ctx, flowIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flow ids: %w", err)
	}

	flows := make([]*models.Flow, 0, len(ids))

	for _, id := range ids {
		flow, err := r.FlowByID(ctx, id)
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

// FlowByID loads one flow by id.
func (r *FlowRepository) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	data, err := r.client.Get(ctx, flowKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewStorageError("FlowByID", "flow", id, persistence.ErrFlowNotFound)
		}

		return nil, persistence.NewStorageError("FlowByID", "flow", id, err)
	}

	var flow models.Flow

	err = json.Unmarshal(data, &flow)
	if err != nil {
		return nil, persistence.NewStorageError("FlowByID", "flow", id, err)
	}

	return &flow, nil
}

// SaveFlow writes a flow and indexes it.
func (r *FlowRepository) SaveFlow(ctx context.Context, flow *models.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return persistence.NewStorageError("SaveFlow", "flow", flow.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, flowKeyPrefix+flow.ID, data, 0)
	pipe.SAdd(ctx, flowIndexKey, flow.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewStorageError("SaveFlow", "flow", flow.ID, err)
	}

	return nil
}

// DeleteFlow removes a flow and its index entry.
func (r *FlowRepository) DeleteFlow(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, flowKeyPrefix+id).Result()
	if err != nil {
		return persistence.NewStorageError("DeleteFlow", "flow", id, err)
	}

	if removed == 0 {
		return persistence.NewStorageError("DeleteFlow", "flow", id, persistence.ErrFlowNotFound)
	}

	err = r.client.SRem(ctx, flowIndexKey, id).Err()
	if err != nil {
		return persistence.NewStorageError("DeleteFlow", "flow", id, err)
	}

	return nil
}

// BotRepository stores bots as JSON values with a set index for listing.
type BotRepository struct {
	client *goredis.Client
}

// Bots returns all stored bots.
func (r *BotRepository) Bots(ctx context.Context) ([]*models.Bot, error) {
	ids, err := r.client.SMembers(ctx, botIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bot ids: %w", err)
	}

	bots := make([]*models.Bot, 0, len(ids))

	for _, id := range ids {
		bot, err := r.BotByID(ctx, id)
		if err != nil {
			return nil, err
		}

		bots = append(bots, bot)
	}

	return bots, nil
}

// BotByID loads one bot by id.
func (r *BotRepository) BotByID(ctx context.Context, id string) (*models.Bot, error) {
	data, err := r.client.Get(ctx, botKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewStorageError("BotByID", "bot", id, persistence.ErrBotNotFound)
		}

		return nil, persistence.NewStorageError("BotByID", "bot", id, err)
	}

	var bot models.Bot

	err = json.Unmarshal(data, &bot)
	if err != nil {
		return nil, persistence.NewStorageError("BotByID", "bot", id, err)
	}

	return &bot, nil
}

// SaveBot writes a bot and indexes it.
func (r *BotRepository) SaveBot(ctx context.Context, bot *models.Bot) error {
	data, err := json.Marshal(bot)
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, botKeyPrefix+bot.ID, data, 0)
	pipe.SAdd(ctx, botIndexKey, bot.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	return nil
}

// ExecutionRepository stores the execution ledger. Per-flow and per-run
// indexes keep the read side cheap.
type ExecutionRepository struct {
	client *goredis.Client
}

// CreateExecution writes a new execution record and indexes it by flow.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	return r.writeExecution(ctx, "CreateExecution", execution, true)
}

// UpdateExecution rewrites an existing execution record.
func (r *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	exists, err := r.client.Exists(ctx, executionKeyPrefix+execution.ID).Result()
	if err != nil {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, err)
	}

	if exists == 0 {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, persistence.ErrExecutionNotFound)
	}

	return r.writeExecution(ctx, "UpdateExecution", execution, false)
}

func (r *ExecutionRepository) writeExecution(ctx context.Context, op string, execution *models.WorkflowExecution, index bool) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewStorageError(op, "execution", execution.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, executionKeyPrefix+execution.ID, data, 0)

	if index {
		pipe.ZAdd(ctx, flowExecutionsPrefix+execution.FlowID, goredis.Z{
			Score:  float64(execution.StartedAt.UnixMilli()),
			Member: execution.ID,
		})
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewStorageError(op, "execution", execution.ID, err)
	}

	return nil
}

// ExecutionByID loads one execution record by id.
func (r *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := r.client.Get(ctx, executionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewStorageError("ExecutionByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStorageError("ExecutionByID", "execution", id, err)
	}

	var execution models.WorkflowExecution

	err = json.Unmarshal(data, &execution)
	if err != nil {
		return nil, persistence.NewStorageError("ExecutionByID", "execution", id, err)
	}

	return &execution, nil
}

// ExecutionsByFlowID returns a flow's execution records, most recent first.
func (r *ExecutionRepository) ExecutionsByFlowID(ctx context.Context, flowID string) ([]*models.WorkflowExecution, error) {
	ids, err := r.client.ZRevRange(ctx, flowExecutionsPrefix+flowID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list execution ids: %w", err)
	}

	executions := make([]*models.WorkflowExecution, 0, len(ids))

	for _, id := range ids {
		execution, err := r.ExecutionByID(ctx, id)
		if err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

// CreateNodeExecution writes a new node execution record and indexes it by run.
func (r *ExecutionRepository) CreateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	data, err := json.Marshal(record)
	if err != nil {
		return persistence.NewStorageError("CreateNodeExecution", "node execution", record.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, nodeExecutionKeyPrefix+record.ID, data, 0)
	pipe.ZAdd(ctx, nodeExecutionsPrefix+record.WorkflowExecutionID, goredis.Z{
		Score:  float64(record.StartedAt.UnixMilli()),
		Member: record.ID,
	})

	_, err = pipe.Exec(ctx)
	if err != nil {
		return persistence.NewStorageError("CreateNodeExecution", "node execution", record.ID, err)
	}

	return nil
}

// UpdateNodeExecution rewrites an existing node execution record.
func (r *ExecutionRepository) UpdateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	exists, err := r.client.Exists(ctx, nodeExecutionKeyPrefix+record.ID).Result()
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	if exists == 0 {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, persistence.ErrNodeExecutionNotFound)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	err = r.client.Set(ctx, nodeExecutionKeyPrefix+record.ID, data, 0).Err()
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	return nil
}

// NodeExecutionsByExecutionID returns a run's node records in start order.
func (r *ExecutionRepository) NodeExecutionsByExecutionID(ctx context.Context, executionID string) ([]*models.NodeExecution, error) {
	ids, err := r.client.ZRange(ctx, nodeExecutionsPrefix+executionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list node execution ids: %w", err)
	}

	records := make([]*models.NodeExecution, 0, len(ids))

	for _, id := range ids {
		data, err := r.client.Get(ctx, nodeExecutionKeyPrefix+id).Bytes()
		if err != nil {
			return nil, persistence.NewStorageError("NodeExecutionsByExecutionID", "node execution", id, err)
		}

		var record models.NodeExecution

		err = json.Unmarshal(data, &record)
		if err != nil {
			return nil, persistence.NewStorageError("NodeExecutionsByExecutionID", "node execution", id, err)
		}

		records = append(records, &record)
	}

	return records, nil
}
