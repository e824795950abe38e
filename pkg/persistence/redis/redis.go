// Package redis provides a Redis persistence implementation for flows, bots
// and the execution ledger. Entities are stored as JSON documents under
// namespaced keys with set-based indexes for listing.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/watacorp/botflow/pkg/persistence"
)

const (
	flowKeyPrefix          = "botflow:flow:"
	flowIndexKey           = "botflow:flows"
	botKeyPrefix           = "botflow:bot:"
	botIndexKey            = "botflow:bots"
	executionKeyPrefix     = "botflow:execution:"
	flowExecutionsPrefix   = "botflow:flow-executions:"
	nodeExecutionKeyPrefix = "botflow:node-execution:"
	nodeExecutionsPrefix   = "botflow:execution-nodes:"
)

// Persistence implements the persistence layer for Redis.
type Persistence struct {
	client        *goredis.Client
	logger        *slog.Logger
	flowRepo      *FlowRepository
	botRepo       *BotRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to Redis and verifies the connection.
func NewPersistence(ctx context.Context, logger *slog.Logger, options *goredis.Options) (*Persistence, error) {
	client := goredis.NewClient(options)

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &Persistence{
		client:        client,
		logger:        logger,
		flowRepo:      &FlowRepository{client: client},
		botRepo:       &BotRepository{client: client},
		executionRepo: &ExecutionRepository{client: client},
	}, nil
}

// FlowRepository returns the flow repository.
func (p *Persistence) FlowRepository() persistence.FlowRepository {
	return p.flowRepo
}

// BotRepository returns the bot repository.
func (p *Persistence) BotRepository() persistence.BotRepository {
	return p.botRepo
}

// ExecutionRepository returns the execution ledger repository.
func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

// Close closes the Redis client.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	return nil
}
