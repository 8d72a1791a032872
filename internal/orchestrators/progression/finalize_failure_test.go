package progression_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/events"
	"github.com/swsaga/progression-api/internal/orchestrators/progression"
	"github.com/swsaga/progression-api/internal/pkg/clock"
	"github.com/swsaga/progression-api/internal/pkg/idgen"
	character "github.com/swsaga/progression-api/internal/repositories/character"
	charactermock "github.com/swsaga/progression-api/internal/repositories/character/mock"
	sessionrepo "github.com/swsaga/progression-api/internal/repositories/session"
	snapshotrepo "github.com/swsaga/progression-api/internal/repositories/snapshot"
	"github.com/swsaga/progression-api/internal/testutils"
)

// completedCreationSession builds a session whose every pre-finalize step is
// done, with staged decisions that resolve cleanly against the catalog.
func completedCreationSession(charID string) *saga.ProgressionSession {
	return &saga.ProgressionSession{
		CharacterID: charID,
		PlayerID:    "player_1",
		Mode:        saga.ModeCreation,
		CurrentStep: saga.StepFinalize,
		CompletedSteps: []saga.StepID{
			saga.StepSpecies,
			saga.StepBackground,
			saga.StepAbilities,
			saga.StepClass,
			saga.StepSkills,
			saga.StepFeats,
			saga.StepTalents,
		},
		Staged: saga.StagedData{
			SpeciesID:            "human",
			SpeciesAbilityChoice: saga.Dexterity,
			BackgroundID:         "spacer",
			AbilityMethod:        saga.MethodPointBuy,
			AbilityScores: &saga.AbilityScores{
				Strength: 14, Dexterity: 14, Constitution: 13,
				Intelligence: 10, Wisdom: 10, Charisma: 8,
			},
			ClassID:   "soldier",
			SkillIDs:  []string{"mechanics", "perception"},
			FeatIDs:   []string{"toughness"},
			TalentIDs: []string{"armored-defense"},
		},
	}
}

// A storage failure during the commit must leave the character exactly as the
// pre-finalize snapshot recorded it, and the lock must not stay held.
func TestFinalizeStorageFailureRestoresCharacter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client, cleanup := testutils.CreateTestRedisClient(t)
	defer cleanup()

	ctx := context.Background()
	const charID = "char_1"

	shell := &saga.CharacterData{
		ID:       charID,
		PlayerID: "player_1",
		Name:     "Dara Venn",
	}

	mockRepo := charactermock.NewMockRepository(ctrl)
	mockRepo.EXPECT().
		AcquireLock(gomock.Any(), character.AcquireLockInput{CharacterID: charID}).
		Return(&character.AcquireLockOutput{}, nil)
	// Once for the finalize itself and once more for the restore
	mockRepo.EXPECT().
		Get(gomock.Any(), character.GetInput{ID: charID}).
		DoAndReturn(func(_ context.Context, _ character.GetInput) (*character.GetOutput, error) {
			return &character.GetOutput{CharacterData: shell.Clone()}, nil
		}).
		Times(2)
	mockRepo.EXPECT().
		ApplyMutation(gomock.Any(), gomock.Any()).
		Return(nil, errors.Internal("storage pipeline failed"))

	var restored *saga.CharacterData
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input character.UpdateInput) (*character.UpdateOutput, error) {
			restored = input.CharacterData
			return &character.UpdateOutput{CharacterData: input.CharacterData}, nil
		})
	mockRepo.EXPECT().
		ReleaseLock(gomock.Any(), character.ReleaseLockInput{CharacterID: charID}).
		Return(&character.ReleaseLockOutput{}, nil)

	content, err := catalog.New()
	require.NoError(t, err)

	sessionRepo := sessionrepo.NewRedis(client)
	orchestrator, err := progression.New(&progression.Config{
		CharacterRepo: mockRepo,
		SessionRepo:   sessionRepo,
		SnapshotRepo:  snapshotrepo.NewRedis(client),
		Catalog:       content,
		Bus:           events.NewBus(),
		Clock:         clock.NewFixed(time.Unix(1700000000, 0)),
		IDGenerator:   idgen.NewSequential("snap"),
	})
	require.NoError(t, err)

	_, err = sessionRepo.Put(ctx, sessionrepo.PutInput{Session: completedCreationSession(charID)})
	require.NoError(t, err)

	_, err = orchestrator.Finalize(ctx, &progression.FinalizeInput{CharacterID: charID})
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
	assert.Contains(t, err.Error(), "finalize failed, character unchanged")

	// The restore write carried the pre-finalize state, not the staged level
	require.NotNil(t, restored)
	assert.Equal(t, 0, restored.Level)
	assert.Empty(t, restored.Feats)
	assert.Equal(t, "Dara Venn", restored.Name)

	// The session survives so the player can retry
	_, err = sessionRepo.Get(ctx, sessionrepo.GetInput{CharacterID: charID})
	assert.NoError(t, err)
}
