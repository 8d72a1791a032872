// Package progression implements the character progression workflow: a
// step-gated session per character that stages decisions, validates them
// against content prerequisites and budgets, and commits everything in one
// atomic finalize.
package progression

import (
	"context"
	"log/slog"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/events"
	"github.com/swsaga/progression-api/internal/metrics"
	"github.com/swsaga/progression-api/internal/pkg/clock"
	"github.com/swsaga/progression-api/internal/pkg/idgen"
	characterrepo "github.com/swsaga/progression-api/internal/repositories/character"
	sessionrepo "github.com/swsaga/progression-api/internal/repositories/session"
	snapshotrepo "github.com/swsaga/progression-api/internal/repositories/snapshot"
)

// Config holds the dependencies for the progression orchestrator
type Config struct {
	CharacterRepo characterrepo.Repository
	SessionRepo   sessionrepo.Repository
	SnapshotRepo  snapshotrepo.Repository
	Catalog       catalog.Client
	Bus           *events.Bus
	Clock         clock.Clock
	IDGenerator   idgen.Generator
}

// Validate validates the Config
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if cfg.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if cfg.SnapshotRepo == nil {
		vb.RequiredField("SnapshotRepo")
	}
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if cfg.Bus == nil {
		vb.RequiredField("Bus")
	}
	if cfg.Clock == nil {
		vb.RequiredField("Clock")
	}
	if cfg.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

// Orchestrator drives progression sessions end to end
type Orchestrator struct {
	characterRepo characterrepo.Repository
	sessionRepo   sessionrepo.Repository
	snapshotRepo  snapshotrepo.Repository
	catalog       catalog.Client
	gate          *engine.Gate
	bus           *events.Bus
	clock         clock.Clock
	idGen         idgen.Generator
}

// New creates a new progression orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gate, err := engine.NewGate(&engine.GateConfig{Catalog: cfg.Catalog})
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		characterRepo: cfg.CharacterRepo,
		sessionRepo:   cfg.SessionRepo,
		snapshotRepo:  cfg.SnapshotRepo,
		catalog:       cfg.Catalog,
		gate:          gate,
		bus:           cfg.Bus,
		clock:         cfg.Clock,
		idGen:         cfg.IDGenerator,
	}, nil
}

// StartSession opens a progression session for a character, or resumes the
// existing one. Creation mode also creates the character shell record.
func (o *Orchestrator) StartSession(ctx context.Context, input *StartSessionInput) (*StartSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.Mode != saga.ModeCreation && input.Mode != saga.ModeLevelUp {
		return nil, errors.InvalidArgumentf("unknown progression mode %q", input.Mode)
	}

	if input.CharacterID != "" {
		existing, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{CharacterID: input.CharacterID})
		if err == nil {
			sess := existing.Session
			if sess.Mode != input.Mode {
				return nil, errors.FailedPreconditionf("a %s session is already in progress for character %s", sess.Mode, input.CharacterID).
					WithMeta("mode", string(sess.Mode))
			}
			tracker, err := engine.NewTracker(sess)
			if err != nil {
				return nil, err
			}
			slog.InfoContext(ctx, "resumed progression session",
				"character_id", sess.CharacterID,
				"mode", string(sess.Mode),
				"current_step", string(sess.CurrentStep))
			return &StartSessionOutput{Session: sess, Steps: tracker.Descriptors(), Resumed: true}, nil
		}
		if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	characterID := input.CharacterID
	playerID := input.PlayerID

	switch input.Mode {
	case saga.ModeCreation:
		if playerID == "" {
			return nil, errors.InvalidArgument("player ID is required to create a character")
		}
		if characterID == "" {
			characterID = o.idGen.Generate()
		}
		now := o.clock.Now().Unix()
		shell := &saga.CharacterData{
			ID:        characterID,
			PlayerID:  playerID,
			Name:      input.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := o.characterRepo.Create(ctx, characterrepo.CreateInput{CharacterData: shell}); err != nil {
			return nil, err
		}

	case saga.ModeLevelUp:
		if characterID == "" {
			return nil, errors.InvalidArgument("character ID is required to level up")
		}
		got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: characterID})
		if err != nil {
			return nil, err
		}
		char := got.CharacterData
		if char.TotalLevel() < 1 {
			return nil, errors.FailedPreconditionf("character %s has not completed creation", characterID)
		}
		if playerID == "" {
			playerID = char.PlayerID
		}
	}

	now := o.clock.Now().Unix()
	sess := &saga.ProgressionSession{
		CharacterID: characterID,
		PlayerID:    playerID,
		Mode:        input.Mode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tracker, err := engine.NewTracker(sess)
	if err != nil {
		return nil, err
	}

	if _, err := o.sessionRepo.Put(ctx, sessionrepo.PutInput{Session: sess}); err != nil {
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(string(input.Mode)).Inc()
	o.bus.Publish(ctx, events.Event{
		Topic:       events.TopicSessionUpdated,
		CharacterID: characterID,
		Mode:        input.Mode,
		Step:        sess.CurrentStep,
	})

	slog.InfoContext(ctx, "started progression session",
		"character_id", characterID,
		"mode", string(input.Mode))

	return &StartSessionOutput{Session: sess, Steps: tracker.Descriptors()}, nil
}

// GetSteps returns the step descriptors of a character's active session
func (o *Orchestrator) GetSteps(ctx context.Context, input *GetStepsInput) (*GetStepsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	_, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	return &GetStepsOutput{Steps: tracker.Descriptors()}, nil
}

// GoToStep moves the session to a step. Locked steps are rejected and the
// session is left unchanged.
func (o *Orchestrator) GoToStep(ctx context.Context, input *GoToStepInput) (*GoToStepOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	if err := tracker.GoTo(input.StepID); err != nil {
		return nil, err
	}

	sess.UpdatedAt = o.clock.Now().Unix()
	if _, err := o.sessionRepo.Put(ctx, sessionrepo.PutInput{Session: sess}); err != nil {
		return nil, err
	}

	o.bus.Publish(ctx, events.Event{
		Topic:       events.TopicStepChanged,
		CharacterID: sess.CharacterID,
		Mode:        sess.Mode,
		Step:        sess.CurrentStep,
	})

	return &GoToStepOutput{Session: sess}, nil
}

// loadSession fetches the session for a character and wraps it in a tracker
func (o *Orchestrator) loadSession(ctx context.Context, characterID string) (*saga.ProgressionSession, *engine.Tracker, error) {
	if characterID == "" {
		return nil, nil, errors.InvalidArgument("character ID cannot be empty")
	}

	got, err := o.sessionRepo.Get(ctx, sessionrepo.GetInput{CharacterID: characterID})
	if err != nil {
		return nil, nil, err
	}
	tracker, err := engine.NewTracker(got.Session)
	if err != nil {
		return nil, nil, err
	}
	return got.Session, tracker, nil
}

// enterStep verifies a step is available before its confirm handler runs
func (o *Orchestrator) enterStep(tracker *engine.Tracker, step saga.StepID) error {
	if !tracker.IsAvailable(step) {
		return errors.FailedPreconditionf("step %s is locked", step).
			WithMeta("step", string(step))
	}
	return nil
}

// completeStep marks a step done, persists the session, and notifies
func (o *Orchestrator) completeStep(ctx context.Context, sess *saga.ProgressionSession, tracker *engine.Tracker, step saga.StepID) (*ConfirmOutput, error) {
	_, advanced := tracker.Complete(step)

	sess.UpdatedAt = o.clock.Now().Unix()
	if _, err := o.sessionRepo.Put(ctx, sessionrepo.PutInput{Session: sess}); err != nil {
		return nil, err
	}

	metrics.StepsCompleted.WithLabelValues(string(sess.Mode), string(step)).Inc()
	if advanced {
		o.bus.Publish(ctx, events.Event{
			Topic:       events.TopicStepChanged,
			CharacterID: sess.CharacterID,
			Mode:        sess.Mode,
			Step:        sess.CurrentStep,
		})
	}
	o.bus.Publish(ctx, events.Event{
		Topic:       events.TopicSessionUpdated,
		CharacterID: sess.CharacterID,
		Mode:        sess.Mode,
		Step:        step,
	})

	return &ConfirmOutput{Session: sess, Steps: tracker.Descriptors()}, nil
}

// getCharacter fetches the durable record backing a session
func (o *Orchestrator) getCharacter(ctx context.Context, characterID string) (*saga.CharacterData, error) {
	got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: characterID})
	if err != nil {
		return nil, err
	}
	return got.CharacterData, nil
}
