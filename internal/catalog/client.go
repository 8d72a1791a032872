// Package catalog provides read-only lookups of progression content:
// species, backgrounds, classes, feats, talents, and skills.
package catalog

import (
	"context"
)

//go:generate mockgen -destination=mock/mock_client.go -package=catalogmock github.com/swsaga/progression-api/internal/catalog Client

// Client is the read-only content catalog consumed by the progression
// engine. Lookups by name are case-insensitive.
type Client interface {
	// GetSpecies retrieves a species by ID or name
	// Returns errors.NotFound for unknown identifiers
	GetSpecies(ctx context.Context, id string) (*Species, error)

	// GetBackground retrieves a background by ID or name
	GetBackground(ctx context.Context, id string) (*Background, error)

	// GetClass retrieves a class by ID or name
	GetClass(ctx context.Context, id string) (*Class, error)

	// GetFeat retrieves a feat by ID or name
	GetFeat(ctx context.Context, id string) (*Feat, error)

	// GetTalent retrieves a talent by ID or name
	GetTalent(ctx context.Context, id string) (*Talent, error)

	// GetSkill retrieves a skill by ID or name
	GetSkill(ctx context.Context, id string) (*Skill, error)

	// ListSkills returns every skill in the catalog
	ListSkills(ctx context.Context) ([]*Skill, error)
}
