// Package file provides a file-based persistence implementation for flows,
// bots and the execution ledger.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/watacorp/botflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
// Each entity lives as one JSON document under a per-entity directory.
type Persistence struct {
	root          string
	flowRepo      *FlowRepository
	botRepo       *BotRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" scheme prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		flowRepo:      NewFlowRepository(cleanRoot),
		botRepo:       NewBotRepository(cleanRoot),
		executionRepo: NewExecutionRepository(cleanRoot),
	}
}

// FlowRepository returns the flow repository.
func (fp *Persistence) FlowRepository() persistence.FlowRepository {
	return fp.flowRepo
}

// BotRepository returns the bot repository.
func (fp *Persistence) BotRepository() persistence.BotRepository {
	return fp.botRepo
}

// ExecutionRepository returns the execution ledger repository.
func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executionRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file persistence there is none.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
