package progression

import (
	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
)

// StartSessionInput opens or resumes a progression session. For creation
// mode, CharacterID may be empty; a new character shell is created.
type StartSessionInput struct {
	CharacterID string
	PlayerID    string
	Name        string
	Mode        saga.Mode
}

// StartSessionOutput returns the session and its annotated step list
type StartSessionOutput struct {
	Session *saga.ProgressionSession
	Steps   []engine.StepInfo
	Resumed bool
}

// GetStepsInput requests the step descriptors for a character's session
type GetStepsInput struct {
	CharacterID string
}

// GetStepsOutput returns step descriptors annotated with availability
type GetStepsOutput struct {
	Steps []engine.StepInfo
}

// GoToStepInput moves the session to a step
type GoToStepInput struct {
	CharacterID string
	StepID      saga.StepID
}

// GoToStepOutput returns the session after the move
type GoToStepOutput struct {
	Session *saga.ProgressionSession
}

// ConfirmSpeciesInput stages the species decision. AbilityChoice is
// required for species that grant a chosen-ability bonus.
type ConfirmSpeciesInput struct {
	CharacterID   string
	SpeciesID     string
	AbilityChoice saga.Ability
}

// ConfirmBackgroundInput stages the background decision
type ConfirmBackgroundInput struct {
	CharacterID  string
	BackgroundID string
}

// ConfirmAbilitiesInput stages the ability score decision
type ConfirmAbilitiesInput struct {
	CharacterID string
	Method      saga.AbilityMethod
	Scores      saga.AbilityScores
}

// ConfirmClassInput stages the class decision. SkipPrerequisites bypasses
// the prerequisite gate (free-build mode).
type ConfirmClassInput struct {
	CharacterID       string
	ClassID           string
	SkipPrerequisites bool
}

// ConfirmSkillsInput stages the trained-skill selection
type ConfirmSkillsInput struct {
	CharacterID string
	SkillIDs    []string
}

// ConfirmFeatsInput stages the feat selection
type ConfirmFeatsInput struct {
	CharacterID string
	FeatIDs     []string
}

// ConfirmTalentsInput stages the talent selection
type ConfirmTalentsInput struct {
	CharacterID string
	TalentIDs   []string
}

// ConfirmHitPointsInput stages the hit-die roll for a level-up
type ConfirmHitPointsInput struct {
	CharacterID string
	Roll        int
}

// ConfirmAbilityIncreaseInput stages the ability increase at milestone
// levels. AbilityID must be empty at non-milestone levels.
type ConfirmAbilityIncreaseInput struct {
	CharacterID string
	AbilityID   saga.Ability
}

// ConfirmOutput is the shared result of every confirm operation
type ConfirmOutput struct {
	Session *saga.ProgressionSession
	Steps   []engine.StepInfo
}

// FinalizeInput commits the session's staged decisions
type FinalizeInput struct {
	CharacterID string
}

// FinalizeOutput returns the committed character, the pre-transaction
// snapshot ID, and the structural diff produced by the commit
type FinalizeOutput struct {
	Character  *saga.CharacterData
	SnapshotID string
	Changes    []saga.FieldChange
}

// RollbackInput restores a character's managed fields from a snapshot
type RollbackInput struct {
	CharacterID string
	SnapshotID  string
}

// RollbackOutput returns the restored character
type RollbackOutput struct {
	Character *saga.CharacterData
}

// ClearLockInput administratively clears a stuck progression lock
type ClearLockInput struct {
	CharacterID string
}

// ClearLockOutput defines the output for clearing the lock
type ClearLockOutput struct{}
