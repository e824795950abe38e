package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// ExecutionRepository handles execution ledger database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// CreateExecution inserts a new execution record.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	inputJSON, outputJSON, err := marshalPayloads(execution.InputData, execution.OutputData)
	if err != nil {
		return persistence.NewStorageError("CreateExecution", "execution", execution.ID, err)
	}

	query := `
		INSERT INTO workflow_executions
			(id, flow_id, conversation_id, trigger_type, status, started_at, completed_at,
			 input_data, output_data, error_message, total_nodes, completed_nodes)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID, execution.FlowID, execution.ConversationID, execution.TriggerType,
		execution.Status, execution.StartedAt, execution.CompletedAt, inputJSON, outputJSON,
		execution.ErrorMessage, execution.TotalNodes, execution.CompletedNodes)
	if err != nil {
		return persistence.NewStorageError("CreateExecution", "execution", execution.ID, err)
	}

	return nil
}

// UpdateExecution rewrites an execution record, typically to seal it.
func (r *ExecutionRepository) UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	_, outputJSON, err := marshalPayloads(nil, execution.OutputData)
	if err != nil {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, err)
	}

	query := `
		UPDATE workflow_executions SET
			status = $2,
			completed_at = $3,
			output_data = $4,
			error_message = $5,
			completed_nodes = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID, execution.Status, execution.CompletedAt, outputJSON,
		execution.ErrorMessage, execution.CompletedNodes)
	if err != nil {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, err)
	}

	if affected == 0 {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, persistence.ErrExecutionNotFound)
	}

	return nil
}

const executionColumns = `
	id
  , flow_id
  , COALESCE(conversation_id, '')
  , COALESCE(trigger_type, '')
  , status
  , started_at
  , completed_at
  , input_data
  , output_data
  , COALESCE(error_message, '')
  , total_nodes
  , completed_nodes
`

// ExecutionByID returns an execution record by its id.
func (r *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStorageError("ExecutionByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// ExecutionsByFlowID returns all execution records for a flow, most recent first.
func (r *ExecutionRepository) ExecutionsByFlowID(ctx context.Context, flowID string) ([]*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE flow_id = $1 ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

// CreateNodeExecution inserts a new node execution record.
func (r *ExecutionRepository) CreateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	inputJSON, outputJSON, err := marshalPayloads(record.InputData, record.OutputData)
	if err != nil {
		return persistence.NewStorageError("CreateNodeExecution", "node execution", record.ID, err)
	}

	query := `
		INSERT INTO node_executions
			(id, workflow_execution_id, node_id, node_type, node_label, status,
			 started_at, completed_at, execution_time_ms, input_data, output_data, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.WorkflowExecutionID, record.NodeID, record.NodeType,
		record.NodeLabel, record.Status, record.StartedAt, record.CompletedAt,
		record.ExecutionTimeMS, inputJSON, outputJSON, record.ErrorMessage)
	if err != nil {
		return persistence.NewStorageError("CreateNodeExecution", "node execution", record.ID, err)
	}

	return nil
}

// UpdateNodeExecution rewrites a node execution record.
func (r *ExecutionRepository) UpdateNodeExecution(ctx context.Context, record *models.NodeExecution) error {
	_, outputJSON, err := marshalPayloads(nil, record.OutputData)
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	query := `
		UPDATE node_executions SET
			status = $2,
			completed_at = $3,
			execution_time_ms = $4,
			output_data = $5,
			error_message = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ID, record.Status, record.CompletedAt, record.ExecutionTimeMS,
		outputJSON, record.ErrorMessage)
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, err)
	}

	if affected == 0 {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, persistence.ErrNodeExecutionNotFound)
	}

	return nil
}

// NodeExecutionsByExecutionID returns a run's node records in start order.
func (r *ExecutionRepository) NodeExecutionsByExecutionID(ctx context.Context, executionID string) ([]*models.NodeExecution, error) {
	query := `
		SELECT
			id
		  , workflow_execution_id
		  , node_id
		  , node_type
		  , COALESCE(node_label, '')
		  , status
		  , started_at
		  , completed_at
		  , execution_time_ms
		  , input_data
		  , output_data
		  , COALESCE(error_message, '')
		FROM node_executions
		WHERE workflow_execution_id = $1
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query node executions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	records := make([]*models.NodeExecution, 0)

	for rows.Next() {
		var (
			record     models.NodeExecution
			inputJSON  []byte
			outputJSON []byte
		)

		err := rows.Scan(&record.ID, &record.WorkflowExecutionID, &record.NodeID,
			&record.NodeType, &record.NodeLabel, &record.Status, &record.StartedAt,
			&record.CompletedAt, &record.ExecutionTimeMS, &inputJSON, &outputJSON,
			&record.ErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node execution: %w", err)
		}

		err = unmarshalPayloads(inputJSON, outputJSON, &record.InputData, &record.OutputData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal node execution payloads: %w", err)
		}

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating node executions: %w", err)
	}

	return records, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution  models.WorkflowExecution
		inputJSON  []byte
		outputJSON []byte
	)

	err := row.Scan(&execution.ID, &execution.FlowID, &execution.ConversationID,
		&execution.TriggerType, &execution.Status, &execution.StartedAt, &execution.CompletedAt,
		&inputJSON, &outputJSON, &execution.ErrorMessage,
		&execution.TotalNodes, &execution.CompletedNodes)
	if err != nil {
		return nil, err
	}

	err = unmarshalPayloads(inputJSON, outputJSON, &execution.InputData, &execution.OutputData)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution payloads: %w", err)
	}

	return &execution, nil
}

func marshalPayloads(input, output map[string]any) ([]byte, []byte, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal input data: %w", err)
	}

	outputJSON, err := json.Marshal(output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal output data: %w", err)
	}

	return inputJSON, outputJSON, nil
}

func unmarshalPayloads(inputJSON, outputJSON []byte, input, output *map[string]any) error {
	if len(inputJSON) > 0 {
		err := json.Unmarshal(inputJSON, input)
		if err != nil {
			return fmt.Errorf("failed to unmarshal input data: %w", err)
		}
	}

	if len(outputJSON) > 0 {
		err := json.Unmarshal(outputJSON, output)
		if err != nil {
			return fmt.Errorf("failed to unmarshal output data: %w", err)
		}
	}

	return nil
}
