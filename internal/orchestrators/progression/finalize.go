package progression

import (
	"context"
	"log/slog"
	"strings"

	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
	"github.com/swsaga/progression-api/internal/events"
	"github.com/swsaga/progression-api/internal/metrics"
	characterrepo "github.com/swsaga/progression-api/internal/repositories/character"
	sessionrepo "github.com/swsaga/progression-api/internal/repositories/session"
	snapshotrepo "github.com/swsaga/progression-api/internal/repositories/snapshot"
)

// Finalize outcome labels for metrics
const (
	statusCommitted     = "committed"
	statusRolledBack    = "rolled_back"
	statusRejected      = "rejected"
	statusLockContended = "lock_contended"
)

// snapshotLabel marks snapshots taken automatically before a finalize
const snapshotLabel = "pre-finalize"

// Finalize commits every staged decision of a completed session to the
// durable character record in one atomic transaction. The character is
// locked for the duration; a failed commit restores the pre-transaction
// snapshot and the record is observably unchanged.
func (o *Orchestrator) Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	if missing := missingSteps(sess, tracker); len(missing) > 0 {
		metrics.Finalizes.WithLabelValues(string(sess.Mode), statusRejected).Inc()
		return nil, errors.FailedPreconditionf("cannot finalize: steps not completed: %s", joinSteps(missing)).
			WithMeta("missing_steps", missing)
	}

	if _, err := o.characterRepo.AcquireLock(ctx, characterrepo.AcquireLockInput{CharacterID: sess.CharacterID}); err != nil {
		if errors.IsAborted(err) {
			metrics.Finalizes.WithLabelValues(string(sess.Mode), statusLockContended).Inc()
		}
		return nil, err
	}
	defer func() {
		if _, err := o.characterRepo.ReleaseLock(ctx, characterrepo.ReleaseLockInput{CharacterID: sess.CharacterID}); err != nil {
			slog.ErrorContext(ctx, "failed to release progression lock",
				"character_id", sess.CharacterID,
				"error", err.Error())
		}
	}()

	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return nil, err
	}

	snap := &saga.Snapshot{
		ID:          o.idGen.Generate(),
		CharacterID: char.ID,
		Label:       snapshotLabel,
		TakenAt:     o.clock.Now().Unix(),
		Data:        *char.Clone(),
	}
	if _, err := o.snapshotRepo.Create(ctx, snapshotrepo.CreateInput{Snapshot: snap}); err != nil {
		return nil, err
	}

	packet, err := o.buildPacket(ctx, char, sess)
	if err != nil {
		metrics.Finalizes.WithLabelValues(string(sess.Mode), statusRejected).Inc()
		return nil, err
	}

	next, err := engine.ApplyPacket(char, packet)
	if err != nil {
		metrics.Finalizes.WithLabelValues(string(sess.Mode), statusRejected).Inc()
		return nil, err
	}

	if _, err := o.characterRepo.ApplyMutation(ctx, characterrepo.ApplyMutationInput{
		CharacterData:      next,
		SubRecordsToCreate: packet.SubRecordsToCreate,
		SubRecordsToDelete: packet.SubRecordsToDelete,
	}); err != nil {
		o.restoreFromSnapshot(ctx, snap)
		metrics.Finalizes.WithLabelValues(string(sess.Mode), statusRolledBack).Inc()
		return nil, errors.Wrap(err, "finalize failed, character unchanged")
	}

	changes := engine.Diff(&snap.Data, next)

	tracker.Complete(saga.StepFinalize)
	if _, err := o.sessionRepo.Delete(ctx, sessionrepo.DeleteInput{CharacterID: sess.CharacterID}); err != nil {
		// The commit already happened; a stale session is only noise
		slog.WarnContext(ctx, "failed to delete completed session",
			"character_id", sess.CharacterID,
			"error", err.Error())
	}

	metrics.Finalizes.WithLabelValues(string(sess.Mode), statusCommitted).Inc()
	metrics.StepsCompleted.WithLabelValues(string(sess.Mode), string(saga.StepFinalize)).Inc()

	o.bus.Publish(ctx, events.Event{
		Topic:       events.TopicSessionCompleted,
		CharacterID: char.ID,
		Mode:        sess.Mode,
		Step:        saga.StepFinalize,
		Detail: map[string]interface{}{
			"snapshot_id": snap.ID,
			"changes":     len(changes),
			"level":       next.Level,
		},
	})

	slog.InfoContext(ctx, "finalized progression session",
		"character_id", char.ID,
		"mode", string(sess.Mode),
		"level", next.Level,
		"changes", len(changes))

	return &FinalizeOutput{Character: next, SnapshotID: snap.ID, Changes: changes}, nil
}

// Rollback restores a character's progression-managed fields from a
// snapshot. Identity fields are never touched.
func (o *Orchestrator) Rollback(ctx context.Context, input *RollbackInput) (*RollbackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	got, err := o.snapshotRepo.Get(ctx, snapshotrepo.GetInput{ID: input.SnapshotID})
	if err != nil {
		return nil, err
	}
	snap := got.Snapshot
	if snap.CharacterID != input.CharacterID {
		return nil, errors.InvalidArgumentf("snapshot %s does not belong to character %s", snap.ID, input.CharacterID).
			WithMeta("snapshot_character_id", snap.CharacterID)
	}

	if _, err := o.characterRepo.AcquireLock(ctx, characterrepo.AcquireLockInput{CharacterID: input.CharacterID}); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := o.characterRepo.ReleaseLock(ctx, characterrepo.ReleaseLockInput{CharacterID: input.CharacterID}); err != nil {
			slog.ErrorContext(ctx, "failed to release progression lock",
				"character_id", input.CharacterID,
				"error", err.Error())
		}
	}()

	char, err := o.getCharacter(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}

	restored := char.Clone()
	engine.RestoreManagedFields(restored, &snap.Data)
	restored.UpdatedAt = o.clock.Now().Unix()

	updated, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{CharacterData: restored})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "rolled back character to snapshot",
		"character_id", input.CharacterID,
		"snapshot_id", snap.ID)

	return &RollbackOutput{Character: updated.CharacterData}, nil
}

// ClearLock administratively clears a character's progression lock. The
// lock has no expiry; this is the recovery path for a crashed holder.
func (o *Orchestrator) ClearLock(ctx context.Context, input *ClearLockInput) (*ClearLockOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}

	if _, err := o.characterRepo.ReleaseLock(ctx, characterrepo.ReleaseLockInput{CharacterID: input.CharacterID}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "cleared progression lock",
		"character_id", input.CharacterID)

	return &ClearLockOutput{}, nil
}

// restoreFromSnapshot best-effort restores the record after a failed
// commit. The mutation commit is atomic, so in the normal case the store
// already holds the old record; the restore covers partial-failure modes
// of less capable backends.
func (o *Orchestrator) restoreFromSnapshot(ctx context.Context, snap *saga.Snapshot) {
	got, err := o.characterRepo.Get(ctx, characterrepo.GetInput{ID: snap.CharacterID})
	if err != nil {
		slog.ErrorContext(ctx, "failed to load character for snapshot restore",
			"character_id", snap.CharacterID,
			"snapshot_id", snap.ID,
			"error", err.Error())
		return
	}

	restored := got.CharacterData.Clone()
	engine.RestoreManagedFields(restored, &snap.Data)
	if _, err := o.characterRepo.Update(ctx, characterrepo.UpdateInput{CharacterData: restored}); err != nil {
		slog.ErrorContext(ctx, "failed to restore character from snapshot",
			"character_id", snap.CharacterID,
			"snapshot_id", snap.ID,
			"error", err.Error())
	}
}

// missingSteps lists every step other than finalize that is not completed
func missingSteps(sess *saga.ProgressionSession, tracker *engine.Tracker) []string {
	var missing []string
	for _, step := range tracker.Steps() {
		if step == saga.StepFinalize {
			continue
		}
		if !sess.IsCompleted(step) {
			missing = append(missing, string(step))
		}
	}
	return missing
}

func joinSteps(steps []string) string {
	return strings.Join(steps, ", ")
}
