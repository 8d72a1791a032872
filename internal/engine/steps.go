package engine

import (
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// Step orders per mode. Each list is a total order: every step's only
// direct predecessor is the entry before it.
var (
	creationSteps = []saga.StepID{
		saga.StepSpecies,
		saga.StepBackground,
		saga.StepAbilities,
		saga.StepClass,
		saga.StepSkills,
		saga.StepFeats,
		saga.StepTalents,
		saga.StepFinalize,
	}

	levelUpSteps = []saga.StepID{
		saga.StepClass,
		saga.StepHitPoints,
		saga.StepSkills,
		saga.StepFeats,
		saga.StepTalents,
		saga.StepAbilityIncrease,
		saga.StepFinalize,
	}
)

// StepsFor returns the ordered step list for a mode
func StepsFor(mode saga.Mode) []saga.StepID {
	switch mode {
	case saga.ModeCreation:
		return append([]saga.StepID(nil), creationSteps...)
	case saga.ModeLevelUp:
		return append([]saga.StepID(nil), levelUpSteps...)
	default:
		return nil
	}
}

// StepInfo describes one step of a session for external callers
type StepInfo struct {
	ID        saga.StepID
	Locked    bool
	Completed bool
	Current   bool
}

// Tracker owns the workflow-level step ordering of one session: which step
// is current, which are completed, and which are available. It mutates the
// session in memory only; callers persist.
type Tracker struct {
	session *saga.ProgressionSession
	steps   []saga.StepID
}

// NewTracker creates a tracker over a session. If the session has no
// current step yet, the tracker starts it at the first step of the mode.
func NewTracker(session *saga.ProgressionSession) (*Tracker, error) {
	steps := StepsFor(session.Mode)
	if steps == nil {
		return nil, errors.InvalidArgumentf("unknown progression mode %q", session.Mode)
	}

	t := &Tracker{session: session, steps: steps}
	if session.CurrentStep == "" {
		session.CurrentStep = steps[0]
	} else if t.indexOf(session.CurrentStep) < 0 {
		return nil, errors.InvalidArgumentf("step %s does not belong to mode %s", session.CurrentStep, session.Mode)
	}
	return t, nil
}

// Steps returns the mode's ordered step list
func (t *Tracker) Steps() []saga.StepID {
	return append([]saga.StepID(nil), t.steps...)
}

// IsAvailable reports whether a step can be entered. The first step of the
// mode is always available; every other step is available iff its fixed
// predecessor has been completed.
func (t *Tracker) IsAvailable(step saga.StepID) bool {
	idx := t.indexOf(step)
	if idx < 0 {
		return false
	}
	if idx == 0 {
		return true
	}
	return t.session.IsCompleted(t.steps[idx-1])
}

// GoTo moves the session to a step. Locked steps fail with a
// FailedPrecondition error and leave the session unchanged.
func (t *Tracker) GoTo(step saga.StepID) error {
	if !t.IsAvailable(step) {
		return errors.FailedPreconditionf("step %s is locked", step).
			WithMeta("step", string(step))
	}
	t.session.CurrentStep = step
	return nil
}

// Complete marks a step completed and auto-advances to the next step in
// mode order when that step is available. Idempotent. The finalize step is
// terminal and never advances.
func (t *Tracker) Complete(step saga.StepID) (next saga.StepID, advanced bool) {
	t.session.MarkCompleted(step)

	if step == saga.StepFinalize {
		return "", false
	}

	idx := t.indexOf(step)
	if idx < 0 || idx+1 >= len(t.steps) {
		return "", false
	}

	nextStep := t.steps[idx+1]
	if !t.IsAvailable(nextStep) {
		return "", false
	}
	t.session.CurrentStep = nextStep
	return nextStep, true
}

// Descriptors returns every step annotated with its availability state
func (t *Tracker) Descriptors() []StepInfo {
	infos := make([]StepInfo, 0, len(t.steps))
	for _, step := range t.steps {
		infos = append(infos, StepInfo{
			ID:        step,
			Locked:    !t.IsAvailable(step),
			Completed: t.session.IsCompleted(step),
			Current:   t.session.CurrentStep == step,
		})
	}
	return infos
}

func (t *Tracker) indexOf(step saga.StepID) int {
	for i, s := range t.steps {
		if s == step {
			return i
		}
	}
	return -1
}
