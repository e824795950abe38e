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

const fileMode = 0o644

// FlowRepository stores flow definitions as JSON documents under
// <root>/flows/<id>.json.
type FlowRepository struct {
	root string
}

// NewFlowRepository creates a flow repository rooted at the given directory.
func NewFlowRepository(root string) *FlowRepository {
	return &FlowRepository{root: root}
}

func (fr *FlowRepository) dir() string {
	return filepath.Join(fr.root, "flows")
}

func (fr *FlowRepository) path(id string) string {
	return filepath.Join(fr.dir(), id+".json")
}

// Flows returns all stored flows.
func (fr *FlowRepository) Flows(ctx context.Context) ([]*models.Flow, error) {
	entries, err := fs.Glob(os.DirFS(fr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	flows := make([]*models.Flow, 0, len(entries))

	for _, entry := range entries {
		flow, err := fr.FlowByID(ctx, entry[:len(entry)-len(".json")])
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

// FlowByID loads one flow by id.
func (fr *FlowRepository) FlowByID(_ context.Context, id string) (*models.Flow, error) {
	data, err := os.ReadFile(fr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewStorageError("FlowByID", "flow", id, persistence.ErrFlowNotFound)
		}

		return nil, persistence.NewStorageError("FlowByID", "flow", id, err)
	}

	var flow models.Flow

	err = json.Unmarshal(data, &flow)
	if err != nil {
		return nil, persistence.NewStorageError("FlowByID", "flow", id, err)
	}

	return &flow, nil
}

// SaveFlow writes a flow document, creating the flows directory on first use.
func (fr *FlowRepository) SaveFlow(_ context.Context, flow *models.Flow) error {
	err := os.MkdirAll(fr.dir(), 0o755)
	if err != nil {
		return persistence.NewStorageError("SaveFlow", "flow", flow.ID, err)
	}

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return persistence.NewStorageError("SaveFlow", "flow", flow.ID, err)
	}

	err = os.WriteFile(fr.path(flow.ID), data, fileMode)
	if err != nil {
		return persistence.NewStorageError("SaveFlow", "flow", flow.ID, err)
	}

	return nil
}

// DeleteFlow removes a flow document.
func (fr *FlowRepository) DeleteFlow(_ context.Context, id string) error {
	err := os.Remove(fr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewStorageError("DeleteFlow", "flow", id, persistence.ErrFlowNotFound)
		}

		return persistence.NewStorageError("DeleteFlow", "flow", id, err)
	}

	return nil
}
