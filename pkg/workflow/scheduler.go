package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/otelhelper"
	"github.com/watacorp/botflow/pkg/persistence"
	"github.com/watacorp/botflow/pkg/registry"
)

// TraversalMode selects how the scheduler walks the graph.
type TraversalMode string

const (
	// TraversalSinglePath follows only the first outgoing edge of each node,
	// producing one conversational path through the graph.
	TraversalSinglePath TraversalMode = "single-path"

	// TraversalBreadthFirst visits every reachable node level by level.
	TraversalBreadthFirst TraversalMode = "breadth-first"
)

// DefaultResponse is the reply used when no node produced a response text.
const DefaultResponse = "I received your message!"

// RunOptions parameterize one run of a flow.
type RunOptions struct {
	TraversalMode  TraversalMode
	ConversationID string
	TriggerType    string
	Input          map[string]any
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	ExecutionID   string         `json:"execution_id"`
	Response      string         `json:"response"`
	Context       map[string]any `json:"context"`
	NodesExecuted int            `json:"nodes_executed"`
}

// Scheduler walks a flow graph, dispatching each node through the registry
// and writing the execution ledger as it goes. A run visits each node at most
// once, aborts on the first handler failure unless the node opts out, and
// honors context cancellation at node boundaries.
type Scheduler struct {
	logger     *slog.Logger
	registry   *registry.Registry
	executions persistence.ExecutionRepository
	publisher  *LifecyclePublisher
	tracer     trace.Tracer
}

// NewScheduler creates a scheduler. The publisher and tracer may be nil.
func NewScheduler(
	logger *slog.Logger,
	reg *registry.Registry,
	executions persistence.ExecutionRepository,
	publisher *LifecyclePublisher,
	tracer trace.Tracer,
) *Scheduler {
	return &Scheduler{
		logger:     logger,
		registry:   reg,
		executions: executions,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Run executes a flow to completion. The returned result carries the captured
// response text, the final context snapshot and the completed node count.
func (s *Scheduler) Run(ctx context.Context, flow *models.Flow, opts RunOptions) (*RunResult, error) {
	if opts.TraversalMode == "" {
		opts.TraversalMode = TraversalSinglePath
	}

	logger := s.logger.With("flow_id", flow.ID, "traversal_mode", opts.TraversalMode)

	execution := &models.WorkflowExecution{
		ID:             generateExecutionID(),
		FlowID:         flow.ID,
		ConversationID: opts.ConversationID,
		TriggerType:    opts.TriggerType,
		Status:         models.ExecutionStatusRunning,
		StartedAt:      time.Now().UTC(),
		InputData:      opts.Input,
		TotalNodes:     len(flow.Data.Nodes),
	}

	err := s.executions.CreateExecution(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	logger = logger.With("execution_id", execution.ID)
	logger.InfoContext(ctx, "Starting flow execution", "total_nodes", execution.TotalNodes)
	s.publisher.ExecutionStarted(ctx, flow, execution, opts.TriggerType)

	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "flow.run",
			attribute.String(otelhelper.FlowIDKey, flow.ID),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID))
		defer span.End()
	}

	if len(flow.Data.Nodes) == 0 {
		return nil, s.failRun(ctx, execution, "", 0, &GraphError{FlowID: flow.ID, Err: ErrNoNodes})
	}

	startNodes, err := selectStartNodes(flow.Data, opts.TraversalMode)
	if err != nil {
		return nil, s.failRun(ctx, execution, "", 0, &GraphError{FlowID: flow.ID, Err: err})
	}

	executionCtx := models.NewExecutionContext(execution.ID, flow.ID, opts.Input)

	var (
		completed int
		response  string
	)

	visited := make(map[string]bool, len(flow.Data.Nodes))
	queue := append([]*models.FlowNode(nil), startNodes...)

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, s.cancelRun(ctx, execution, completed, ctx.Err())
		default:
		}

		node := queue[0]
		queue = queue[1:]

		if visited[node.ID] {
			continue
		}

		visited[node.ID] = true

		output, nodeErr := s.executeNode(ctx, flow.ID, execution.ID, node, executionCtx)
		if nodeErr != nil {
			if continueOnError(node) {
				logger.WarnContext(ctx, "Node failed, continuing per node policy",
					"node_id", node.ID, "error", nodeErr)
			} else {
				return nil, s.failRun(ctx, execution, node.ID, completed, nodeErr)
			}
		} else {
			completed++

			executionCtx.Set(node.ID, output)

			if text, ok := captureResponse(node, output); ok {
				response = text
			}
		}

		next, err := s.nextNodes(flow.Data, node, opts.TraversalMode)
		if err != nil {
			return nil, s.failRun(ctx, execution, node.ID, completed, &GraphError{FlowID: flow.ID, Err: err})
		}

		queue = append(queue, next...)
	}

	if response == "" {
		response = DefaultResponse
	}

	result := &RunResult{
		ExecutionID:   execution.ID,
		Response:      response,
		Context:       executionCtx.Snapshot(),
		NodesExecuted: completed,
	}

	execution.Complete(map[string]any{
		"response":       result.Response,
		"context":        result.Context,
		"nodes_executed": result.NodesExecuted,
	}, completed)

	err = s.executions.UpdateExecution(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to seal execution record: %w", err)
	}

	s.publisher.ExecutionCompleted(ctx, execution)
	logger.InfoContext(ctx, "Flow execution completed", "nodes_executed", completed)

	return result, nil
}

// executeNode runs one node through its handler, writing its ledger record.
func (s *Scheduler) executeNode(
	ctx context.Context,
	flowID, executionID string,
	node *models.FlowNode,
	executionCtx *models.ExecutionContext,
) (map[string]any, error) {
	record := &models.NodeExecution{
		ID:                  uuid.New().String(),
		WorkflowExecutionID: executionID,
		NodeID:              node.ID,
		NodeType:            node.NodeType(),
		NodeLabel:           node.NodeLabel(),
		Status:              models.NodeExecutionStatusRunning,
		StartedAt:           time.Now().UTC(),
		InputData:           executionCtx.Snapshot(),
	}

	err := s.executions.CreateNodeExecution(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create node execution record: %w", err)
	}

	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "flow.node",
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, node.NodeType()))
		defer func() {
			if err != nil {
				otelhelper.SetError(span, err)
			}

			span.End()
		}()
	}

	handler := s.registry.Resolve(node.NodeType())

	output, err := handler.Execute(ctx, node, executionCtx)
	if err != nil {
		err = &NodeExecutionError{NodeID: node.ID, NodeType: node.NodeType(), Err: err}

		record.Fail(err.Error())

		updateErr := s.executions.UpdateNodeExecution(ctx, record)
		if updateErr != nil {
			s.logger.ErrorContext(ctx, "Failed to seal node execution record",
				"node_id", node.ID, "error", updateErr)
		}

		s.publisher.NodeFailed(ctx, flowID, record)

		return nil, err
	}

	record.Complete(output)

	err = s.executions.UpdateNodeExecution(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to seal node execution record: %w", err)
	}

	s.publisher.NodeFinished(ctx, flowID, record)

	return output, nil
}

// nextNodes resolves the successors to enqueue for a node.
func (s *Scheduler) nextNodes(data models.FlowData, node *models.FlowNode, mode TraversalMode) ([]*models.FlowNode, error) {
	edges := data.OutgoingEdges(node.ID)
	if len(edges) == 0 {
		return nil, nil
	}

	if mode == TraversalSinglePath {
		edges = edges[:1]
	}

	nodes := make([]*models.FlowNode, 0, len(edges))

	for _, edge := range edges {
		target, ok := data.NodeByID(edge.Target)
		if !ok {
			return nil, fmt.Errorf("%w: edge %s -> %s", ErrDanglingEdge, edge.Source, edge.Target)
		}

		nodes = append(nodes, target)
	}

	return nodes, nil
}

func (s *Scheduler) failRun(ctx context.Context, execution *models.WorkflowExecution, nodeID string, completed int, cause error) error {
	execution.Fail(cause.Error(), completed)

	err := s.executions.UpdateExecution(ctx, execution)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to seal execution record", "execution_id", execution.ID, "error", err)
	}

	s.publisher.ExecutionFailed(ctx, execution, nodeID)
	s.logger.WarnContext(ctx, "Flow execution failed",
		"execution_id", execution.ID, "node_id", nodeID, "error", cause)

	return cause
}

func (s *Scheduler) cancelRun(ctx context.Context, execution *models.WorkflowExecution, completed int, cause error) error {
	execution.Cancel(completed)

	// The run's context is done; seal the ledger with a fresh one.
	sealCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.executions.UpdateExecution(sealCtx, execution)
	if err != nil {
		s.logger.ErrorContext(sealCtx, "Failed to seal cancelled execution record",
			"execution_id", execution.ID, "error", err)
	}

	s.publisher.ExecutionCancelled(sealCtx, execution, cause.Error())
	s.logger.InfoContext(sealCtx, "Flow execution cancelled",
		"execution_id", execution.ID, "nodes_executed", completed)

	return cause
}

// selectStartNodes picks the run's entry points: explicitly marked start
// nodes win, then nodes with no incoming edges, both in definition order.
// Breadth-first runs seed every candidate; single-path runs take the first.
func selectStartNodes(data models.FlowData, mode TraversalMode) ([]*models.FlowNode, error) {
	candidates := data.MarkerStartNodes()
	if len(candidates) == 0 {
		candidates = data.EntryNodes()
	}

	if len(candidates) == 0 {
		return nil, ErrNoStartNode
	}

	if mode == TraversalSinglePath {
		return candidates[:1], nil
	}

	return candidates, nil
}

// captureResponse extracts a response text from conversational node output.
func captureResponse(node *models.FlowNode, output map[string]any) (string, bool) {
	nodeType := node.NodeType()

	conversational := nodeType == "message" || nodeType == "send-message" ||
		strings.HasPrefix(nodeType, "ai-")
	if !conversational {
		return "", false
	}

	if text, ok := output["message"].(string); ok && text != "" {
		return text, true
	}

	if text, ok := output["response"].(string); ok && text != "" {
		return text, true
	}

	return "", false
}

// continueOnError reports whether the node opts out of first-failure abort.
func continueOnError(node *models.FlowNode) bool {
	flag, _ := node.Config()["continue_on_error"].(bool)

	return flag
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
