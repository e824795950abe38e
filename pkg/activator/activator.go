// Package activator schedules cron-based flow runs. It scans published flows
// for enabled trigger-schedule nodes and fires them through the workflow
// service.
package activator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
	"github.com/watacorp/botflow/pkg/workflow"
)

// Activator owns the cron runtime. Reload rebuilds the schedule from
// persistence, so flow edits take effect on the next reload.
type Activator struct {
	id      string
	logger  *slog.Logger
	service *workflow.Service
	flows   persistence.FlowRepository

	mu   sync.Mutex
	cron *cron.Cron
	jobs int
}

// NewActivator creates an activator.
func NewActivator(id string, logger *slog.Logger, service *workflow.Service, flows persistence.FlowRepository) *Activator {
	return &Activator{
		id:      id,
		logger:  logger.With("module", "activator", "activator_id", id),
		service: service,
		flows:   flows,
	}
}

// Start loads the schedule and starts the cron runtime.
func (a *Activator) Start(ctx context.Context) error {
	err := a.Reload(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cron.Start()
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "Activator started", "jobs", a.ScheduledJobs())

	return nil
}

// Reload replaces the running schedule with one rebuilt from persistence.
func (a *Activator) Reload(ctx context.Context) error {
	flows, err := a.flows.Flows(ctx)
	if err != nil {
		return err
	}

	runtime := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	jobs := 0

	for _, flow := range flows {
		if flow.Status != models.FlowStatusPublished {
			continue
		}

		for _, node := range flow.Data.Nodes {
			if a.registerNode(ctx, runtime, flow, node) {
				jobs++
			}
		}
	}

	a.mu.Lock()
	if a.cron != nil {
		a.cron.Stop()
		runtime.Start()
	}

	a.cron = runtime
	a.jobs = jobs
	a.mu.Unlock()

	return nil
}

// Stop halts the cron runtime. Jobs already running finish on their own.
func (a *Activator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cron != nil {
		a.cron.Stop()
	}
}

// ScheduledJobs reports how many cron jobs the current schedule carries.
func (a *Activator) ScheduledJobs() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.jobs
}

func (a *Activator) registerNode(ctx context.Context, runtime *cron.Cron, flow *models.Flow, node *models.FlowNode) bool {
	if node.NodeType() != "trigger-schedule" {
		return false
	}

	config := node.Config()

	if enabled, ok := config["enabled"].(bool); ok && !enabled {
		return false
	}

	expr, _ := config["cron"].(string)
	if expr == "" {
		a.logger.WarnContext(ctx, "Schedule node without cron expression",
			"flow_id", flow.ID, "node_id", node.ID)

		return false
	}

	if _, err := cron.ParseStandard(expr); err != nil {
		a.logger.WarnContext(ctx, "Invalid cron expression",
			"flow_id", flow.ID, "node_id", node.ID, "cron", expr, "error", err)

		return false
	}

	flowID := flow.ID

	_, err := runtime.AddFunc(expr, func() {
		a.fire(flowID)
	})
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to register cron job",
			"flow_id", flow.ID, "node_id", node.ID, "error", err)

		return false
	}

	a.logger.InfoContext(ctx, "Registered scheduled flow",
		"flow_id", flow.ID, "node_id", node.ID, "cron", expr)

	return true
}

func (a *Activator) fire(flowID string) {
	input := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	result, err := a.service.ExecuteScheduled(context.Background(), flowID, input)
	if err != nil {
		a.logger.Error("Scheduled run failed", "flow_id", flowID, "error", err)

		return
	}

	a.logger.Info("Scheduled run completed",
		"flow_id", flowID, "execution_id", result.ExecutionID, "nodes_executed", result.NodesExecuted)
}
