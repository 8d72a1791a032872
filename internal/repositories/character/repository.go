// Package character provides persistence for the durable character
// progression record, including the per-character progression lock and the
// atomic mutation-packet commit.
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/swsaga/progression-api/internal/repositories/character Repository

import (
	"context"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create creates a new character record
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a character with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	// Returns errors.NotFound if the character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update overwrites an existing character record
	// Returns errors.NotFound if the character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// ListByPlayerID retrieves all characters for a player
	ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error)

	// ApplyMutation commits a finalized record plus its sub-record changes
	// as one indivisible operation. Either everything persists or nothing
	// does; readers never observe a partially-applied packet.
	ApplyMutation(ctx context.Context, input ApplyMutationInput) (*ApplyMutationOutput, error)

	// AcquireLock sets the character's progression lock
	// Returns errors.Aborted if the lock is already held
	AcquireLock(ctx context.Context, input AcquireLockInput) (*AcquireLockOutput, error)

	// ReleaseLock clears the character's progression lock unconditionally
	ReleaseLock(ctx context.Context, input ReleaseLockInput) (*ReleaseLockOutput, error)

	// IsLocked reports whether the character's progression lock is held
	IsLocked(ctx context.Context, input IsLockedInput) (*IsLockedOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	CharacterData *saga.CharacterData
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	CharacterData *saga.CharacterData
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	CharacterData *saga.CharacterData
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	CharacterData *saga.CharacterData
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	CharacterData *saga.CharacterData
}

// ListByPlayerIDInput defines the input for listing characters by player
type ListByPlayerIDInput struct {
	PlayerID string
}

// ListByPlayerIDOutput defines the output for listing characters by player
type ListByPlayerIDOutput struct {
	Characters []*saga.CharacterData
}

// ApplyMutationInput carries the fully-applied record and the sub-record
// changes of one mutation packet
type ApplyMutationInput struct {
	CharacterData      *saga.CharacterData
	SubRecordsToCreate []saga.SubRecord
	SubRecordsToDelete []saga.SubRecord
}

// ApplyMutationOutput defines the output for a mutation commit
type ApplyMutationOutput struct {
	CharacterData *saga.CharacterData
}

// AcquireLockInput defines the input for acquiring the progression lock
type AcquireLockInput struct {
	CharacterID string
}

// AcquireLockOutput defines the output for acquiring the progression lock
type AcquireLockOutput struct{}

// ReleaseLockInput defines the input for releasing the progression lock
type ReleaseLockInput struct {
	CharacterID string
}

// ReleaseLockOutput defines the output for releasing the progression lock
type ReleaseLockOutput struct{}

// IsLockedInput defines the input for checking the progression lock
type IsLockedInput struct {
	CharacterID string
}

// IsLockedOutput defines the output for checking the progression lock
type IsLockedOutput struct {
	Held bool
}
