package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// ExecutionRepository stores the execution ledger. Execution records live
// under <root>/executions/<id>.json, node records under
// <root>/node_executions/<execution-id>/<id>.json so a run's node history can
// be listed without scanning the whole ledger.
type ExecutionRepository struct {
	root string
	mu   sync.Mutex
}

// NewExecutionRepository creates an execution repository rooted at the given
// directory.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) executionsDir() string {
	return filepath.Join(er.root, "executions")
}

func (er *ExecutionRepository) executionPath(id string) string {
	return filepath.Join(er.executionsDir(), id+".json")
}

func (er *ExecutionRepository) nodeExecutionsDir(executionID string) string {
	return filepath.Join(er.root, "node_executions", executionID)
}

func (er *ExecutionRepository) nodeExecutionPath(executionID, id string) string {
	return filepath.Join(er.nodeExecutionsDir(executionID), id+".json")
}

// CreateExecution writes a new execution record.
func (er *ExecutionRepository) CreateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	return er.writeExecution("CreateExecution", execution)
}

// UpdateExecution rewrites an existing execution record, typically to seal it.
func (er *ExecutionRepository) UpdateExecution(_ context.Context, execution *models.WorkflowExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	if _, err := os.Stat(er.executionPath(execution.ID)); os.IsNotExist(err) {
		return persistence.NewStorageError("UpdateExecution", "execution", execution.ID, persistence.ErrExecutionNotFound)
	}

	return er.writeExecution("UpdateExecution", execution)
}

func (er *ExecutionRepository) writeExecution(op string, execution *models.WorkflowExecution) error {
	err := os.MkdirAll(er.executionsDir(), 0o755)
	if err != nil {
		return persistence.NewStorageError(op, "execution", execution.ID, err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return persistence.NewStorageError(op, "execution", execution.ID, err)
	}

	err = os.WriteFile(er.executionPath(execution.ID), data, fileMode)
	if err != nil {
		return persistence.NewStorageError(op, "execution", execution.ID, err)
	}

	return nil
}

// ExecutionByID loads one execution record by id.
func (er *ExecutionRepository) ExecutionByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := os.ReadFile(er.executionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
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

// ExecutionsByFlowID returns all execution records for a flow, most recent
// first.
func (er *ExecutionRepository) ExecutionsByFlowID(ctx context.Context, flowID string) ([]*models.WorkflowExecution, error) {
	entries, err := fs.Glob(os.DirFS(er.executionsDir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.WorkflowExecution, 0)

	for _, entry := range entries {
		execution, err := er.ExecutionByID(ctx, entry[:len(entry)-len(".json")])
		if err != nil {
			return nil, err
		}

		if execution.FlowID == flowID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

// CreateNodeExecution writes a new node execution record.
func (er *ExecutionRepository) CreateNodeExecution(_ context.Context, record *models.NodeExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	return er.writeNodeExecution("CreateNodeExecution", record)
}

// UpdateNodeExecution rewrites an existing node execution record.
func (er *ExecutionRepository) UpdateNodeExecution(_ context.Context, record *models.NodeExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	path := er.nodeExecutionPath(record.WorkflowExecutionID, record.ID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return persistence.NewStorageError("UpdateNodeExecution", "node execution", record.ID, persistence.ErrNodeExecutionNotFound)
	}

	return er.writeNodeExecution("UpdateNodeExecution", record)
}

func (er *ExecutionRepository) writeNodeExecution(op string, record *models.NodeExecution) error {
	err := os.MkdirAll(er.nodeExecutionsDir(record.WorkflowExecutionID), 0o755)
	if err != nil {
		return persistence.NewStorageError(op, "node execution", record.ID, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return persistence.NewStorageError(op, "node execution", record.ID, err)
	}

	err = os.WriteFile(er.nodeExecutionPath(record.WorkflowExecutionID, record.ID), data, fileMode)
	if err != nil {
		return persistence.NewStorageError(op, "node execution", record.ID, err)
	}

	return nil
}

// NodeExecutionsByExecutionID returns a run's node records in start order.
func (er *ExecutionRepository) NodeExecutionsByExecutionID(_ context.Context, executionID string) ([]*models.NodeExecution, error) {
	entries, err := fs.Glob(os.DirFS(er.nodeExecutionsDir(executionID)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list node execution files: %w", err)
	}

	records := make([]*models.NodeExecution, 0, len(entries))

	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(er.nodeExecutionsDir(executionID), entry))
		if err != nil {
			return nil, persistence.NewStorageError("NodeExecutionsByExecutionID", "node execution", entry, err)
		}

		var record models.NodeExecution

		err = json.Unmarshal(data, &record)
		if err != nil {
			return nil, persistence.NewStorageError("NodeExecutionsByExecutionID", "node execution", entry, err)
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	return records, nil
}
