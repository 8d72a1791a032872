// Package session provides persistence for progression sessions, one blob
// per character, so an interrupted session can be resumed.
package session

import (
	"context"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Repository defines the interface for session persistence
type Repository interface {
	// Get retrieves the session for a character
	// Returns errors.NotFound if no session exists
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Put creates or replaces the session for a character
	Put(ctx context.Context, input PutInput) (*PutOutput, error)

	// Delete removes the session for a character
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// GetInput defines the input for getting a session
type GetInput struct {
	CharacterID string
}

// GetOutput defines the output for getting a session
type GetOutput struct {
	Session *saga.ProgressionSession
}

// PutInput defines the input for storing a session
type PutInput struct {
	Session *saga.ProgressionSession
}

// PutOutput defines the output for storing a session
type PutOutput struct{}

// DeleteInput defines the input for deleting a session
type DeleteInput struct {
	CharacterID string
}

// DeleteOutput defines the output for deleting a session
type DeleteOutput struct{}
