package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
)

func TestDiffDetectsScalarAndMembershipChanges(t *testing.T) {
	before := baseCharacter()
	after := before.Clone()
	after.Level = 2
	after.MaxHP = 39
	after.ClassLevels = append(after.ClassLevels, saga.ClassLevel{ClassID: "soldier", LevelInClass: 2})
	after.Feats = append(after.Feats, "Precise Shot")
	after.TrainedSkills = []string{"mechanics"}

	changes := engine.Diff(before, after)
	require.NotEmpty(t, changes)

	byPath := map[string][]saga.FieldChange{}
	for _, change := range changes {
		byPath[change.Path] = append(byPath[change.Path], change)
	}

	require.Len(t, byPath[engine.PathLevel], 1)
	assert.Equal(t, 1, byPath[engine.PathLevel][0].OldValue)
	assert.Equal(t, 2, byPath[engine.PathLevel][0].NewValue)

	require.Len(t, byPath[engine.PathMaxHP], 1)

	// Appended class level shows as an addition
	require.Len(t, byPath[engine.PathClassLevels], 1)
	assert.Equal(t, "soldier:2", byPath[engine.PathClassLevels][0].NewValue)
	assert.Nil(t, byPath[engine.PathClassLevels][0].OldValue)

	require.Len(t, byPath[engine.PathFeats], 1)
	assert.Equal(t, "Precise Shot", byPath[engine.PathFeats][0].NewValue)

	// pilot removed, mechanics added
	require.Len(t, byPath[engine.PathTrainedSkills], 2)
}

func TestDiffIgnoresCasingOnlyMembershipChanges(t *testing.T) {
	before := baseCharacter()
	after := before.Clone()
	after.Feats = []string{"point-blank shot"}

	changes := engine.Diff(before, after)
	for _, change := range changes {
		assert.NotEqual(t, engine.PathFeats, change.Path)
	}
}

func TestDiffIdenticalRecordsIsEmpty(t *testing.T) {
	before := baseCharacter()
	assert.Empty(t, engine.Diff(before, before.Clone()))
}

func TestRestoreManagedFields(t *testing.T) {
	snapshot := baseCharacter()

	mutated := snapshot.Clone()
	mutated.Level = 2
	mutated.MaxHP = 39
	mutated.Feats = append(mutated.Feats, "Precise Shot")
	mutated.Name = "Renamed"
	mutated.UpdatedAt = 42

	engine.RestoreManagedFields(mutated, snapshot)

	// A restore leaves no structural difference behind
	assert.Empty(t, engine.Diff(snapshot, mutated))

	// Identity and bookkeeping fields survive the restore
	assert.Equal(t, "Renamed", mutated.Name)
	assert.Equal(t, int64(42), mutated.UpdatedAt)
}

func TestRestoreIsIsolatedFromSnapshotAliasing(t *testing.T) {
	snapshot := baseCharacter()
	restored := &saga.CharacterData{ID: snapshot.ID}

	engine.RestoreManagedFields(restored, snapshot)
	restored.Feats = append(restored.Feats, "Toughness")

	assert.Equal(t, []string{"Point-Blank Shot"}, snapshot.Feats)
}
