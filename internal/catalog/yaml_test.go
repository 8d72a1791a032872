package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

func newCatalog(t *testing.T) catalog.Client {
	t.Helper()
	client, err := catalog.New()
	require.NoError(t, err)
	return client
}

func TestLookupByIDAndName(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	byID, err := client.GetClass(ctx, "soldier")
	require.NoError(t, err)
	assert.Equal(t, "Soldier", byID.Name)
	assert.Equal(t, 10, byID.HitDie)
	assert.Equal(t, 1.0, byID.BABRate)

	// Names resolve case-insensitively
	byName, err := client.GetClass(ctx, "SOLDIER")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byName.ID)
}

func TestUnknownIdentifierIsNotFound(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	_, err := client.GetSpecies(ctx, "ewok")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = client.GetFeat(ctx, "quick-draw")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSpeciesGrants(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	human, err := client.GetSpecies(ctx, "human")
	require.NoError(t, err)
	assert.True(t, human.BonusFeat)
	assert.True(t, human.BonusTrainedSkill)
	assert.True(t, human.AbilityChoice)
	assert.Empty(t, human.AbilityMods)

	wookiee, err := client.GetSpecies(ctx, "wookiee")
	require.NoError(t, err)
	assert.Equal(t, 4, wookiee.AbilityMods[saga.Strength])
	assert.Equal(t, -2, wookiee.AbilityMods[saga.Dexterity])
	assert.False(t, wookiee.AbilityChoice)
}

func TestPrestigeClassPrerequisitesLoaded(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	jediKnight, err := client.GetClass(ctx, "jedi-knight")
	require.NoError(t, err)
	assert.True(t, jediKnight.Prestige)
	require.NotNil(t, jediKnight.Prerequisites)
	assert.Equal(t, 7, jediKnight.Prerequisites.MinLevel)
	assert.Equal(t, 7, jediKnight.Prerequisites.MinBAB)
	assert.True(t, jediKnight.Prerequisites.ForceSensitive)
	assert.Contains(t, jediKnight.Prerequisites.TrainedSkills, "use-the-force")

	soldier, err := client.GetClass(ctx, "soldier")
	require.NoError(t, err)
	assert.False(t, soldier.Prestige)
	assert.Nil(t, soldier.Prerequisites)
}

func TestClassGrantTables(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	soldier, err := client.GetClass(ctx, "soldier")
	require.NoError(t, err)

	assert.Equal(t, 1, soldier.GrantsAtLevel(1).Talents)
	assert.Equal(t, 0, soldier.GrantsAtLevel(1).BonusFeats)
	assert.Equal(t, 0, soldier.GrantsAtLevel(2).Talents)
	assert.Equal(t, 1, soldier.GrantsAtLevel(2).BonusFeats)
}

func TestStartingFeatsResolve(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	soldier, err := client.GetClass(ctx, "soldier")
	require.NoError(t, err)
	require.NotEmpty(t, soldier.StartingFeats)

	for _, featID := range soldier.StartingFeats {
		_, err := client.GetFeat(ctx, featID)
		assert.NoError(t, err, "starting feat %s should exist", featID)
	}
}

func TestTalentTreesReferenceKnownClasses(t *testing.T) {
	client := newCatalog(t)
	ctx := context.Background()

	talent, err := client.GetTalent(ctx, "armored-defense")
	require.NoError(t, err)
	assert.Equal(t, "soldier", talent.ClassID)
	assert.Equal(t, "Armor Specialist", talent.Tree)
}

func TestListSkills(t *testing.T) {
	client := newCatalog(t)

	skills, err := client.ListSkills(context.Background())
	require.NoError(t, err)
	assert.Len(t, skills, 20)
}
