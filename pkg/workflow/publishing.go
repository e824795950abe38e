package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/watacorp/botflow/pkg/eventbus"
	"github.com/watacorp/botflow/pkg/events"
	"github.com/watacorp/botflow/pkg/models"
)

// LifecyclePublisher emits execution lifecycle events on the event bus.
// Publish failures are logged and never abort a run.
type LifecyclePublisher struct {
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

// NewLifecyclePublisher creates a lifecycle publisher. A nil event publisher
// yields a no-op publisher.
func NewLifecyclePublisher(publisher eventbus.EventPublisher, logger *slog.Logger) *LifecyclePublisher {
	return &LifecyclePublisher{publisher: publisher, logger: logger}
}

func (p *LifecyclePublisher) publish(ctx context.Context, key string, event eventbus.Event) {
	if p == nil || p.publisher == nil {
		return
	}

	err := p.publisher.Publish(ctx, key, event)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}

// ExecutionStarted emits the run-started event.
func (p *LifecyclePublisher) ExecutionStarted(ctx context.Context, flow *models.Flow, execution *models.WorkflowExecution, triggerType string) {
	p.publish(ctx, flow.ID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, flow.ID),
		ExecutionID: execution.ID,
		FlowName:    flow.Name,
		TriggerType: triggerType,
		InputData:   execution.InputData,
	})
}

// ExecutionCompleted emits the run-completed event.
func (p *LifecyclePublisher) ExecutionCompleted(ctx context.Context, execution *models.WorkflowExecution) {
	p.publish(ctx, execution.FlowID, events.ExecutionCompleted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, execution.FlowID),
		ExecutionID:   execution.ID,
		DurationMs:    executionDuration(execution),
		NodesExecuted: execution.CompletedNodes,
		Result:        execution.OutputData,
	})
}

// ExecutionFailed emits the run-failed event.
func (p *LifecyclePublisher) ExecutionFailed(ctx context.Context, execution *models.WorkflowExecution, nodeID string) {
	p.publish(ctx, execution.FlowID, events.ExecutionFailed{
		BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, execution.FlowID),
		ExecutionID:   execution.ID,
		DurationMs:    executionDuration(execution),
		NodesExecuted: execution.CompletedNodes,
		NodeID:        nodeID,
		Error:         execution.ErrorMessage,
	})
}

// ExecutionCancelled emits the run-cancelled event.
func (p *LifecyclePublisher) ExecutionCancelled(ctx context.Context, execution *models.WorkflowExecution, reason string) {
	p.publish(ctx, execution.FlowID, events.ExecutionCancelled{
		BaseEvent:     events.NewBaseEvent(events.ExecutionCancelledEvent, execution.FlowID),
		ExecutionID:   execution.ID,
		DurationMs:    executionDuration(execution),
		NodesExecuted: execution.CompletedNodes,
		Reason:        reason,
	})
}

// NodeFinished emits the node-finished event.
func (p *LifecyclePublisher) NodeFinished(ctx context.Context, flowID string, record *models.NodeExecution) {
	p.publish(ctx, flowID, events.NodeFinished{
		BaseEvent:   events.NewBaseEvent(events.NodeFinishedEvent, flowID),
		ExecutionID: record.WorkflowExecutionID,
		NodeID:      record.NodeID,
		NodeType:    record.NodeType,
		DurationMs:  nodeDuration(record),
		OutputData:  record.OutputData,
	})
}

// NodeFailed emits the node-failed event.
func (p *LifecyclePublisher) NodeFailed(ctx context.Context, flowID string, record *models.NodeExecution) {
	p.publish(ctx, flowID, events.NodeFailed{
		BaseEvent:   events.NewBaseEvent(events.NodeFailedEvent, flowID),
		ExecutionID: record.WorkflowExecutionID,
		NodeID:      record.NodeID,
		NodeType:    record.NodeType,
		DurationMs:  nodeDuration(record),
		Error:       record.ErrorMessage,
	})
}

func executionDuration(execution *models.WorkflowExecution) int64 {
	if execution.CompletedAt == nil {
		return time.Since(execution.StartedAt).Milliseconds()
	}

	return execution.CompletedAt.Sub(execution.StartedAt).Milliseconds()
}

func nodeDuration(record *models.NodeExecution) int64 {
	if record.ExecutionTimeMS != nil {
		return *record.ExecutionTimeMS
	}

	return 0
}
