// Package subrecord provides the store for owned items materialized on a
// character: granted feats, talents, and force powers. The atomic mutation
// path in the character repository writes these keys inside its own
// pipeline; this package owns the key layout and the standalone read and
// write operations used by downstream engines.
package subrecord

import (
	"context"
	"fmt"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Store defines the interface for sub-record persistence
type Store interface {
	// Create materializes one sub-record on a character
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Delete removes one sub-record from a character
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns all sub-records of one type on a character
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// Key returns the Redis key holding a character's sub-records of one type.
// Shared with the character repository's mutation pipeline.
func Key(characterID string, recordType saga.SubRecordType) string {
	return fmt.Sprintf("character:subrecords:%s:%s", characterID, recordType)
}

// CreateInput defines the input for creating a sub-record
type CreateInput struct {
	CharacterID string
	SubRecord   saga.SubRecord
}

// CreateOutput defines the output for creating a sub-record
type CreateOutput struct{}

// DeleteInput defines the input for deleting a sub-record
type DeleteInput struct {
	CharacterID string
	SubRecord   saga.SubRecord
}

// DeleteOutput defines the output for deleting a sub-record
type DeleteOutput struct{}

// ListInput defines the input for listing sub-records
type ListInput struct {
	CharacterID string
	Type        saga.SubRecordType
}

// ListOutput defines the output for listing sub-records
type ListOutput struct {
	Names []string
}
