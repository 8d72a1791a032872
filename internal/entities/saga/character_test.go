package saga_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "force sensitivity", saga.CanonicalKey("Force Sensitivity"))
	assert.Equal(t, "force sensitivity", saga.CanonicalKey("  force SENSITIVITY  "))
}

func TestMergeCanonicalFirstSeenCasingWins(t *testing.T) {
	merged := saga.MergeCanonical([]string{"Force Sensitivity"}, "force sensitivity", "FORCE SENSITIVITY ")
	assert.Equal(t, []string{"Force Sensitivity"}, merged)

	merged = saga.MergeCanonical(nil, "weapon focus", "Weapon Focus", "Toughness")
	assert.Equal(t, []string{"weapon focus", "Toughness"}, merged)
}

func TestHasFeatMatchesCanonically(t *testing.T) {
	char := &saga.CharacterData{Feats: []string{"Force Sensitivity"}}
	assert.True(t, char.HasFeat("force sensitivity"))
	assert.True(t, char.HasFeat("  Force Sensitivity "))
	assert.False(t, char.HasFeat("Force Training"))
}

func TestTotalLevelAndLevelsInClass(t *testing.T) {
	char := &saga.CharacterData{
		ClassLevels: []saga.ClassLevel{
			{ClassID: "soldier", LevelInClass: 1},
			{ClassID: "soldier", LevelInClass: 2},
			{ClassID: "elite-trooper", LevelInClass: 1},
		},
	}
	assert.Equal(t, 3, char.TotalLevel())
	assert.Equal(t, 2, char.LevelsInClass("soldier"))
	assert.Equal(t, 0, char.LevelsInClass("jedi"))
}

func TestCloneIsDeep(t *testing.T) {
	char := &saga.CharacterData{
		ID:          "char_1",
		ClassLevels: []saga.ClassLevel{{ClassID: "soldier", LevelInClass: 1}},
		Feats:       []string{"Toughness"},
	}

	clone := char.Clone()
	clone.Feats[0] = "Dodge"
	clone.ClassLevels[0].ClassID = "noble"

	assert.Equal(t, "Toughness", char.Feats[0])
	assert.Equal(t, "soldier", char.ClassLevels[0].ClassID)
}

func TestMarkCompletedIsIdempotent(t *testing.T) {
	sess := &saga.ProgressionSession{}
	sess.MarkCompleted(saga.StepSpecies)
	sess.MarkCompleted(saga.StepBackground)
	sess.MarkCompleted(saga.StepSpecies)

	assert.Equal(t, []saga.StepID{saga.StepSpecies, saga.StepBackground}, sess.CompletedSteps)
	assert.True(t, sess.IsCompleted(saga.StepSpecies))
	assert.False(t, sess.IsCompleted(saga.StepFinalize))
}
