package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// ErrFlowNotFound is returned when a flow is not found.
var ErrFlowNotFound = persistence.ErrFlowNotFound

// Service is the application surface for flow management and execution. It
// resolves bots and flows from persistence and hands runs to the scheduler.
type Service struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	scheduler   *Scheduler
	validator   *validator.Validate
}

// NewService creates a workflow service.
func NewService(logger *slog.Logger, p persistence.Persistence, scheduler *Scheduler) *Service {
	return &Service{
		logger:      logger,
		persistence: p,
		scheduler:   scheduler,
		validator:   validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Service) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListFlows retrieves all flows.
func (s *Service) ListFlows(ctx context.Context) ([]*models.Flow, error) {
	return s.persistence.FlowRepository().Flows(ctx)
}

// FlowByID retrieves a flow by its id.
func (s *Service) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	return s.persistence.FlowRepository().FlowByID(ctx, id)
}

// CreateFlow validates and stores a new flow.
func (s *Service) CreateFlow(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	now := time.Now().UTC()
	flow.ID = uuid.New().String()
	flow.CreatedAt = now
	flow.UpdatedAt = now

	if flow.Status == "" {
		flow.Status = models.FlowStatusDraft
	}

	if flow.Version == 0 {
		flow.Version = 1
	}

	err := s.validator.Struct(flow)
	if err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}

	err = s.persistence.FlowRepository().SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("failed to create flow: %w", err)
	}

	return flow, nil
}

// UpdateFlow modifies an existing flow, bumping its version.
func (s *Service) UpdateFlow(ctx context.Context, flowID string, flow *models.Flow) (*models.Flow, error) {
	existing, err := s.persistence.FlowRepository().FlowByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	flow.ID = flowID
	flow.CreatedAt = existing.CreatedAt
	flow.UpdatedAt = time.Now().UTC()
	flow.Version = existing.Version + 1

	if flow.Status == "" {
		flow.Status = existing.Status
	}

	err = s.validator.Struct(flow)
	if err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}

	err = s.persistence.FlowRepository().SaveFlow(ctx, flow)
	if err != nil {
		return nil, fmt.Errorf("failed to update flow: %w", err)
	}

	return flow, nil
}

// DeleteFlow removes a flow by its id.
func (s *Service) DeleteFlow(ctx context.Context, flowID string) error {
	return s.persistence.FlowRepository().DeleteFlow(ctx, flowID)
}

// ListBots retrieves all bots.
func (s *Service) ListBots(ctx context.Context) ([]*models.Bot, error) {
	return s.persistence.BotRepository().Bots(ctx)
}

// BotByID retrieves a bot by its id.
func (s *Service) BotByID(ctx context.Context, id string) (*models.Bot, error) {
	return s.persistence.BotRepository().BotByID(ctx, id)
}

// CreateBot validates and stores a new bot binding.
func (s *Service) CreateBot(ctx context.Context, bot *models.Bot) (*models.Bot, error) {
	bot.ID = uuid.New().String()
	bot.CreatedAt = time.Now().UTC()

	err := s.validator.Struct(bot)
	if err != nil {
		return nil, fmt.Errorf("invalid bot: %w", err)
	}

	if bot.FlowID != "" {
		_, err = s.persistence.FlowRepository().FlowByID(ctx, bot.FlowID)
		if err != nil {
			return nil, fmt.Errorf("bot flow: %w", err)
		}
	}

	err = s.persistence.BotRepository().SaveBot(ctx, bot)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return bot, nil
}

// ExecuteFlow runs a flow by id with explicit trigger input, visiting every
// reachable node.
func (s *Service) ExecuteFlow(ctx context.Context, flowID string, input map[string]any, conversationID string) (*RunResult, error) {
	flow, err := s.persistence.FlowRepository().FlowByID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flow %s: %w", flowID, err)
	}

	return s.scheduler.Run(ctx, flow, RunOptions{
		TraversalMode:  TraversalBreadthFirst,
		ConversationID: conversationID,
		TriggerType:    "manual",
		Input:          input,
	})
}

// ExecuteScheduled runs a flow for a schedule trigger firing.
func (s *Service) ExecuteScheduled(ctx context.Context, flowID string, input map[string]any) (*RunResult, error) {
	flow, err := s.persistence.FlowRepository().FlowByID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flow %s: %w", flowID, err)
	}

	return s.scheduler.Run(ctx, flow, RunOptions{
		TraversalMode: TraversalBreadthFirst,
		TriggerType:   "schedule",
		Input:         input,
	})
}

// HandleMessage resolves an inbound message to its bot's flow and runs the
// conversational path for it.
func (s *Service) HandleMessage(ctx context.Context, botID string, message models.Message, customerName string) (*RunResult, error) {
	bot, err := s.persistence.BotRepository().BotByID(ctx, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bot %s: %w", botID, err)
	}

	if !bot.IsActive {
		return nil, fmt.Errorf("bot %s: %w", botID, ErrBotInactive)
	}

	if bot.FlowID == "" {
		return nil, fmt.Errorf("bot %s: %w", botID, ErrBotHasNoFlow)
	}

	flow, err := s.persistence.FlowRepository().FlowByID(ctx, bot.FlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flow %s: %w", bot.FlowID, err)
	}

	input := map[string]any{
		"message":         message.Content,
		"conversation_id": message.ConversationID,
		"sender_id":       message.SenderID,
		"bot_id":          bot.ID,
		"bot_name":        bot.Name,
	}
	if customerName != "" {
		input["customer_name"] = customerName
	}

	return s.scheduler.Run(ctx, flow, RunOptions{
		TraversalMode:  TraversalSinglePath,
		ConversationID: message.ConversationID,
		TriggerType:    "message",
		Input:          input,
	})
}

// ExecutionWithNodes retrieves an execution record together with its node
// history.
func (s *Service) ExecutionWithNodes(ctx context.Context, executionID string) (*models.WorkflowExecution, []*models.NodeExecution, error) {
	execution, err := s.persistence.ExecutionRepository().ExecutionByID(ctx, executionID)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.persistence.ExecutionRepository().NodeExecutionsByExecutionID(ctx, executionID)
	if err != nil {
		return nil, nil, err
	}

	return execution, records, nil
}

// ExecutionsByFlow retrieves a flow's execution records, most recent first.
func (s *Service) ExecutionsByFlow(ctx context.Context, flowID string) ([]*models.WorkflowExecution, error) {
	return s.persistence.ExecutionRepository().ExecutionsByFlowID(ctx, flowID)
}
