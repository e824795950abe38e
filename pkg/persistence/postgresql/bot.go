package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// BotRepository handles bot-related database operations.
type BotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewBotRepository creates a new bot repository.
func NewBotRepository(db *sql.DB, logger *slog.Logger) *BotRepository {
	return &BotRepository{db: db, logger: logger}
}

// Bots returns all bots.
func (r *BotRepository) Bots(ctx context.Context) ([]*models.Bot, error) {
	query := `
		SELECT
			id
		  , name
		  , COALESCE(flow_id::text, '')
		  , is_active
		  , created_at
		FROM bots
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bots: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	bots := make([]*models.Bot, 0)

	for rows.Next() {
		var bot models.Bot

		err := rows.Scan(&bot.ID, &bot.Name, &bot.FlowID, &bot.IsActive, &bot.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}

		bots = append(bots, &bot)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating bots: %w", err)
	}

	return bots, nil
}

// BotByID returns a bot by its id.
func (r *BotRepository) BotByID(ctx context.Context, id string) (*models.Bot, error) {
	query := `
		SELECT
			id
		  , name
		  , COALESCE(flow_id::text, '')
		  , is_active
		  , created_at
		FROM bots
		WHERE id = $1
	`

	var bot models.Bot

	err := r.db.QueryRowContext(ctx, query, id).Scan(&bot.ID, &bot.Name, &bot.FlowID, &bot.IsActive, &bot.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStorageError("BotByID", "bot", id, persistence.ErrBotNotFound)
		}

		return nil, fmt.Errorf("failed to scan bot: %w", err)
	}

	return &bot, nil
}

// SaveBot upserts a bot, generating an id when missing.
func (r *BotRepository) SaveBot(ctx context.Context, bot *models.Bot) error {
	if bot.CreatedAt.IsZero() {
		bot.CreatedAt = time.Now().UTC()
	}

	if bot.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate bot ID: %w", err)
		}

		bot.ID = id.String()
	}

	query := `
		INSERT INTO bots (id, name, flow_id, is_active, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			flow_id = EXCLUDED.flow_id,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query, bot.ID, bot.Name, bot.FlowID, bot.IsActive, bot.CreatedAt)
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	return nil
}
