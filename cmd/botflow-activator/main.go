// Package main provides the Botflow activator, which fires scheduled flow
// runs from cron-configured trigger nodes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/watacorp/botflow/pkg/activator"
	"github.com/watacorp/botflow/pkg/cmd"
	"github.com/watacorp/botflow/pkg/log"
	"github.com/watacorp/botflow/pkg/workflow"
)

func main() {
	command := &cli.Command{
		Name:                  "botflow-activator",
		Usage:                 "Start the Botflow schedule activator service",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "activator-id",
				Aliases: []string{"id"},
				Usage:   "Custom activator ID (auto-generated if not provided)",
				Sources: cli.EnvVars("ACTIVATOR_ID"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "n8n-environment",
				Usage:   "Integration gateway environment (test, production)",
				Value:   "test",
				Sources: cli.EnvVars("N8N_ENV"),
			},
			&cli.StringFlag{
				Name:    "n8n-api-key",
				Usage:   "API key sent to integration webhooks",
				Sources: cli.EnvVars("N8N_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "OpenAI API key for ai-* nodes (offline provider when empty)",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			activatorID := command.String("activator-id")
			if activatorID == "" {
				activatorID = "activator-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("activator").With("activator_id", activatorID)
			logger.InfoContext(ctx, "Initializing Botflow Activator")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "botflow-activator", logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			registry := cmd.NewNodeRegistry(logger, cmd.RegistryOptions{
				N8NEnvironment: command.String("n8n-environment"),
				N8NAPIKey:      command.String("n8n-api-key"),
				OpenAIAPIKey:   command.String("openai-api-key"),
			})

			scheduler := workflow.NewScheduler(logger, registry, persistence.ExecutionRepository(),
				workflow.NewLifecyclePublisher(eventBus, logger), nil)
			service := workflow.NewService(logger, persistence, scheduler)

			act := activator.NewActivator(activatorID, logger, service, persistence.FlowRepository())

			err = act.Start(ctx)
			if err != nil {
				return fmt.Errorf("failed to start activator: %w", err)
			}

			defer act.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case <-ctx.Done():
			case <-stop:
				logger.InfoContext(ctx, "Shutting down activator")
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
