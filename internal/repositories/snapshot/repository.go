// Package snapshot provides persistence for character snapshots taken
// before a progression transaction, used for diffing and rollback.
package snapshot

import (
	"context"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Repository defines the interface for snapshot persistence
type Repository interface {
	// Create stores a snapshot
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a snapshot by ID
	// Returns errors.NotFound if the snapshot doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for storing a snapshot
type CreateInput struct {
	Snapshot *saga.Snapshot
}

// CreateOutput defines the output for storing a snapshot
type CreateOutput struct{}

// GetInput defines the input for getting a snapshot
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a snapshot
type GetOutput struct {
	Snapshot *saga.Snapshot
}

// DeleteInput defines the input for deleting a snapshot
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a snapshot
type DeleteOutput struct{}
