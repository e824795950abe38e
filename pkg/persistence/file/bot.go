package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
)

// BotRepository stores bot bindings as JSON documents under
// <root>/bots/<id>.json.
type BotRepository struct {
	root string
}

// NewBotRepository creates a bot repository rooted at the given directory.
func NewBotRepository(root string) *BotRepository {
	return &BotRepository{root: root}
}

func (br *BotRepository) dir() string {
	return filepath.Join(br.root, "bots")
}

func (br *BotRepository) path(id string) string {
	return filepath.Join(br.dir(), id+".json")
}

// Bots returns all stored bots.
func (br *BotRepository) Bots(ctx context.Context) ([]*models.Bot, error) {
	entries, err := fs.Glob(os.DirFS(br.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list bot files: %w", err)
	}

	bots := make([]*models.Bot, 0, len(entries))

	for _, entry := range entries {
		bot, err := br.BotByID(ctx, entry[:len(entry)-len(".json")])
		if err != nil {
			return nil, err
		}

		bots = append(bots, bot)
	}

	return bots, nil
}

// BotByID loads one bot by id.
func (br *BotRepository) BotByID(_ context.Context, id string) (*models.Bot, error) {
	data, err := os.ReadFile(br.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStorageError("BotByID", "bot", id, persistence.ErrBotNotFound)
		}

		return nil, persistence.NewStorageError("BotByID", "bot", id, err)
	}

	var bot models.Bot

	err = json.Unmarshal(data, &bot)
	if err != nil {
		return nil, persistence.NewStorageError("BotByID", "bot", id, err)
	}

	return &bot, nil
}

// SaveBot writes a bot document, creating the bots directory on first use.
func (br *BotRepository) SaveBot(_ context.Context, bot *models.Bot) error {
	err := os.MkdirAll(br.dir(), 0o755)
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	data, err := json.MarshalIndent(bot, "", "  ")
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	err = os.WriteFile(br.path(bot.ID), data, fileMode)
	if err != nil {
		return persistence.NewStorageError("SaveBot", "bot", bot.ID, err)
	}

	return nil
}
