package models

import "time"

// ExecutionStatus represents the lifecycle state of a flow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// NodeExecutionStatus represents the lifecycle state of a single node visit.
type NodeExecutionStatus string

const (
	NodeExecutionStatusRunning   NodeExecutionStatus = "running"
	NodeExecutionStatusCompleted NodeExecutionStatus = "completed"
	NodeExecutionStatusFailed    NodeExecutionStatus = "failed"
)

// WorkflowExecution is the ledger record of one end-to-end run of a flow.
// It is created with status running and sealed exactly once; completed_at is
// set iff the status is terminal, and completed_nodes never exceeds total_nodes.
type WorkflowExecution struct {
	ID             string          `json:"id"`
	FlowID         string          `json:"flow_id"`
	ConversationID string          `json:"conversation_id,omitempty"`
	TriggerType    string          `json:"trigger_type,omitempty"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	InputData      map[string]any  `json:"input_data,omitempty"`
	OutputData     map[string]any  `json:"output_data,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	TotalNodes     int             `json:"total_nodes"`
	CompletedNodes int             `json:"completed_nodes"`
}

// IsTerminal reports whether the execution has been sealed.
func (e *WorkflowExecution) IsTerminal() bool {
	return e.Status != ExecutionStatusRunning
}

// Complete seals the execution as successful.
func (e *WorkflowExecution) Complete(output map[string]any, completedNodes int) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &now
	e.OutputData = output
	e.CompletedNodes = completedNodes
}

// Fail seals the execution with an error message.
func (e *WorkflowExecution) Fail(message string, completedNodes int) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusFailed
	e.CompletedAt = &now
	e.ErrorMessage = message
	e.CompletedNodes = completedNodes
}

// Cancel seals the execution as cancelled. Already-sealed node executions
// remain as history.
func (e *WorkflowExecution) Cancel(completedNodes int) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusCancelled
	e.CompletedAt = &now
	e.CompletedNodes = completedNodes
}

// NodeExecution is the ledger record of one node visit within a run. It is
// owned exclusively by its WorkflowExecution and never reused across runs.
type NodeExecution struct {
	ID                  string              `json:"id"`
	WorkflowExecutionID string              `json:"workflow_execution_id"`
	NodeID              string              `json:"node_id"`
	NodeType            string              `json:"node_type"`
	NodeLabel           string              `json:"node_label"`
	Status              NodeExecutionStatus `json:"status"`
	StartedAt           time.Time           `json:"started_at"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	ExecutionTimeMS     *int64              `json:"execution_time_ms,omitempty"`
	InputData           map[string]any      `json:"input_data,omitempty"`
	OutputData          map[string]any      `json:"output_data,omitempty"`
	ErrorMessage        string              `json:"error_message,omitempty"`
}

// Complete seals the node record as successful and stamps its duration.
func (n *NodeExecution) Complete(output map[string]any) {
	now := time.Now().UTC()
	n.Status = NodeExecutionStatusCompleted
	n.CompletedAt = &now
	n.OutputData = output
	n.stampDuration()
}

// Fail seals the node record with an error message and stamps its duration.
func (n *NodeExecution) Fail(message string) {
	now := time.Now().UTC()
	n.Status = NodeExecutionStatusFailed
	n.CompletedAt = &now
	n.ErrorMessage = message
	n.stampDuration()
}

func (n *NodeExecution) stampDuration() {
	if n.CompletedAt == nil {
		return
	}

	duration := n.CompletedAt.Sub(n.StartedAt).Milliseconds()
	n.ExecutionTimeMS = &duration
}
