package engine_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

type TrackerTestSuite struct {
	suite.Suite
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (s *TrackerTestSuite) newCreationTracker() (*saga.ProgressionSession, *engine.Tracker) {
	sess := &saga.ProgressionSession{
		CharacterID: "char_1",
		PlayerID:    "player_1",
		Mode:        saga.ModeCreation,
	}
	tracker, err := engine.NewTracker(sess)
	s.Require().NoError(err)
	return sess, tracker
}

func (s *TrackerTestSuite) TestNewSessionStartsAtFirstStep() {
	sess, tracker := s.newCreationTracker()

	s.Equal(saga.StepSpecies, sess.CurrentStep)
	s.True(tracker.IsAvailable(saga.StepSpecies))
	s.False(tracker.IsAvailable(saga.StepBackground))
	s.False(tracker.IsAvailable(saga.StepFinalize))
}

func (s *TrackerTestSuite) TestLevelUpStartsAtClass() {
	sess := &saga.ProgressionSession{CharacterID: "char_1", Mode: saga.ModeLevelUp}
	tracker, err := engine.NewTracker(sess)
	s.Require().NoError(err)

	s.Equal(saga.StepClass, sess.CurrentStep)
	s.True(tracker.IsAvailable(saga.StepClass))
	s.False(tracker.IsAvailable(saga.StepHitPoints))
}

func (s *TrackerTestSuite) TestUnknownModeRejected() {
	_, err := engine.NewTracker(&saga.ProgressionSession{Mode: "respec"})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *TrackerTestSuite) TestStepOutsideModeRejected() {
	sess := &saga.ProgressionSession{Mode: saga.ModeCreation, CurrentStep: saga.StepHitPoints}
	_, err := engine.NewTracker(sess)
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *TrackerTestSuite) TestCompleteAdvancesToNextStep() {
	sess, tracker := s.newCreationTracker()

	next, advanced := tracker.Complete(saga.StepSpecies)
	s.True(advanced)
	s.Equal(saga.StepBackground, next)
	s.Equal(saga.StepBackground, sess.CurrentStep)
	s.True(sess.IsCompleted(saga.StepSpecies))
}

func (s *TrackerTestSuite) TestCompleteIsIdempotent() {
	sess, tracker := s.newCreationTracker()

	tracker.Complete(saga.StepSpecies)
	tracker.Complete(saga.StepSpecies)

	s.Equal([]saga.StepID{saga.StepSpecies}, sess.CompletedSteps)
}

func (s *TrackerTestSuite) TestChainUnlocksInOrder() {
	sess, tracker := s.newCreationTracker()

	order := []saga.StepID{
		saga.StepSpecies,
		saga.StepBackground,
		saga.StepAbilities,
		saga.StepClass,
		saga.StepSkills,
		saga.StepFeats,
		saga.StepTalents,
	}
	for i, step := range order {
		s.True(tracker.IsAvailable(step), "step %s should be available", step)
		if i+1 < len(order) {
			s.False(tracker.IsAvailable(order[i+1]), "step %s should still be locked", order[i+1])
		}
		tracker.Complete(step)
	}

	s.True(tracker.IsAvailable(saga.StepFinalize))
	s.Equal(saga.StepFinalize, sess.CurrentStep)
}

func (s *TrackerTestSuite) TestGoToLockedStepFails() {
	sess, tracker := s.newCreationTracker()

	err := tracker.GoTo(saga.StepClass)
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
	s.Contains(err.Error(), "step class is locked")
	s.Equal(saga.StepSpecies, sess.CurrentStep)
}

func (s *TrackerTestSuite) TestGoToCompletedStepForRevisit() {
	sess, tracker := s.newCreationTracker()

	tracker.Complete(saga.StepSpecies)
	tracker.Complete(saga.StepBackground)

	s.Require().NoError(tracker.GoTo(saga.StepSpecies))
	s.Equal(saga.StepSpecies, sess.CurrentStep)
	// Completion survives revisiting
	s.True(sess.IsCompleted(saga.StepSpecies))
}

func (s *TrackerTestSuite) TestFinalizeIsTerminal() {
	_, tracker := s.newCreationTracker()

	for _, step := range []saga.StepID{
		saga.StepSpecies, saga.StepBackground, saga.StepAbilities, saga.StepClass,
		saga.StepSkills, saga.StepFeats, saga.StepTalents,
	} {
		tracker.Complete(step)
	}

	next, advanced := tracker.Complete(saga.StepFinalize)
	s.False(advanced)
	s.Empty(next)
}

func (s *TrackerTestSuite) TestDescriptors() {
	_, tracker := s.newCreationTracker()
	tracker.Complete(saga.StepSpecies)

	infos := tracker.Descriptors()
	s.Len(infos, 8)

	s.Equal(saga.StepSpecies, infos[0].ID)
	s.True(infos[0].Completed)
	s.False(infos[0].Locked)

	s.Equal(saga.StepBackground, infos[1].ID)
	s.True(infos[1].Current)
	s.False(infos[1].Locked)

	s.Equal(saga.StepAbilities, infos[2].ID)
	s.True(infos[2].Locked)
}
