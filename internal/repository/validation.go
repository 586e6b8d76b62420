package repository

import (
	"context"

	"docflow/internal/model"
)

// ValidationFlowRepository persists validation flows together with their
// steps and actions.
type ValidationFlowRepository interface {
	// Create inserts the flow, its steps and any initial actions. Version starts at 1.
	Create(ctx context.Context, flow *model.ValidationFlow) error

	// FindByID loads the flow with its steps ordered by step order and its
	// actions in chronological order. Returns ErrNotFound if absent.
	FindByID(ctx context.Context, id string) (*model.ValidationFlow, error)

	// Update persists status and step changes and appends actions not yet stored.
	// The write only succeeds if the stored version still equals flow.Version;
	// otherwise ErrConflict is returned. On success flow.Version is incremented.
	Update(ctx context.Context, flow *model.ValidationFlow) error
}
