package web

import "github.com/watacorp/botflow/pkg/models"

// CreateFlowRequest is the payload for creating a flow.
type CreateFlowRequest struct {
	Name   string            `json:"name"   validate:"required,min=3,max=255"`
	Status models.FlowStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Data   models.FlowData   `json:"data"`
}

// UpdateFlowRequest is the payload for partially updating a flow.
type UpdateFlowRequest struct {
	Name   *string            `json:"name,omitempty"   validate:"omitempty,min=3,max=255"`
	Status *models.FlowStatus `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
	Data   *models.FlowData   `json:"data,omitempty"`
}

// RunFlowRequest is the payload for explicitly running a flow.
type RunFlowRequest struct {
	Input          map[string]any `json:"input"`
	ConversationID string         `json:"conversation_id"`
}

// InboundMessageRequest is the payload for an inbound bot message.
type InboundMessageRequest struct {
	Content        string `json:"content"         validate:"required,min=1"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	CustomerName   string `json:"customer_name"`
}

// CreateBotRequest is the payload for registering a bot.
type CreateBotRequest struct {
	Name     string `json:"name"      validate:"required,min=1,max=255"`
	FlowID   string `json:"flow_id"`
	IsActive bool   `json:"is_active"`
}

// ExecutionResponse pairs an execution record with its node history.
type ExecutionResponse struct {
	Execution      *models.WorkflowExecution `json:"execution"`
	NodeExecutions []*models.NodeExecution   `json:"node_executions"`
}
