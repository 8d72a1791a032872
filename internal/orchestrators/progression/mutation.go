package progression

import (
	"context"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// buildPacket turns a completed session's staged decisions into the single
// mutation packet that finalize commits. Budgets are carried forward
// additively; grants never recompute history.
func (o *Orchestrator) buildPacket(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (*saga.MutationPacket, error) {
	switch sess.Mode {
	case saga.ModeCreation:
		return o.buildCreationPacket(ctx, char, sess)
	case saga.ModeLevelUp:
		return o.buildLevelUpPacket(ctx, char, sess)
	default:
		return nil, errors.Internalf("unknown progression mode %q", sess.Mode)
	}
}

func (o *Orchestrator) buildCreationPacket(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (*saga.MutationPacket, error) {
	staged := &sess.Staged
	if staged.AbilityScores == nil {
		return nil, errors.FailedPrecondition("ability scores were never confirmed")
	}

	species, err := o.catalog.GetSpecies(ctx, staged.SpeciesID)
	if err != nil {
		return nil, err
	}
	background, err := o.catalog.GetBackground(ctx, staged.BackgroundID)
	if err != nil {
		return nil, err
	}
	class, err := o.catalog.GetClass(ctx, staged.ClassID)
	if err != nil {
		return nil, err
	}

	scores := effectiveCreationScores(staged, species)

	// Class starting feats are granted free and merged before the chosen
	// feats, so a duplicate selection collapses into the granted entry.
	startingFeats, err := o.featNames(ctx, class.StartingFeats)
	if err != nil {
		return nil, err
	}
	startingFeats = saga.MergeCanonical(nil, startingFeats...)

	chosenFeats, err := o.featNames(ctx, staged.FeatIDs)
	if err != nil {
		return nil, err
	}
	feats := saga.MergeCanonical(startingFeats, chosenFeats...)

	talents, err := o.talentNames(ctx, staged.TalentIDs)
	if err != nil {
		return nil, err
	}
	talents = saga.MergeCanonical(nil, talents...)

	trainedSkills := saga.MergeCanonical(background.GrantedSkills, staged.SkillIDs...)

	packet := &saga.MutationPacket{
		CharacterID: char.ID,
		FieldUpdates: map[string]interface{}{
			engine.PathLevel:                1,
			engine.PathSpeciesID:            species.ID,
			engine.PathSpeciesAbilityChoice: staged.SpeciesAbilityChoice,
			engine.PathBackgroundID:         background.ID,
			engine.PathAbilityScores:        scores,
			engine.PathClassLevels:          []saga.ClassLevel{{ClassID: class.ID, LevelInClass: 1}},
			engine.PathFeats:                feats,
			engine.PathTalents:              talents,
			engine.PathTrainedSkills:        trainedSkills,
			engine.PathStartingFeatCount:    len(startingFeats),
			engine.PathFeatBudget:           engine.FeatBudgetIncrement(true, species, class, 1),
			engine.PathTalentBudget:         engine.TalentBudgetIncrement(class, 1),
			engine.PathSkillBudget:          engine.SkillTrainingBudget(class, engine.AbilityModifier(scores.Intelligence), species),
			engine.PathMaxHP:                engine.HitPointsAtCreation(class.HitDie, engine.AbilityModifier(scores.Constitution)),
			engine.PathUpdatedAt:            o.clock.Now().Unix(),
		},
	}

	for _, name := range feats {
		packet.SubRecordsToCreate = append(packet.SubRecordsToCreate, saga.SubRecord{Type: saga.SubRecordFeat, Name: name})
	}
	for _, name := range talents {
		packet.SubRecordsToCreate = append(packet.SubRecordsToCreate, saga.SubRecord{Type: saga.SubRecordTalent, Name: name})
	}

	return packet, nil
}

func (o *Orchestrator) buildLevelUpPacket(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (*saga.MutationPacket, error) {
	staged := &sess.Staged

	class, err := o.catalog.GetClass(ctx, staged.ClassID)
	if err != nil {
		return nil, err
	}

	levelInClass := char.LevelsInClass(class.ID) + 1
	classLevels := append(append([]saga.ClassLevel(nil), char.ClassLevels...), saga.ClassLevel{
		ClassID:      class.ID,
		LevelInClass: levelInClass,
	})

	chosenFeats, err := o.featNames(ctx, staged.FeatIDs)
	if err != nil {
		return nil, err
	}
	feats := saga.MergeCanonical(char.Feats, chosenFeats...)

	chosenTalents, err := o.talentNames(ctx, staged.TalentIDs)
	if err != nil {
		return nil, err
	}
	talents := saga.MergeCanonical(char.Talents, chosenTalents...)

	trainedSkills := saga.MergeCanonical(char.TrainedSkills, staged.SkillIDs...)

	// The hit point gain uses the constitution modifier in effect when the
	// die was rolled, before any milestone increase from this level.
	conModifier := engine.AbilityModifier(char.AbilityScores.Constitution)

	packet := &saga.MutationPacket{
		CharacterID: char.ID,
		FieldUpdates: map[string]interface{}{
			engine.PathLevel:         len(classLevels),
			engine.PathClassLevels:   classLevels,
			engine.PathFeats:         feats,
			engine.PathTalents:       talents,
			engine.PathTrainedSkills: trainedSkills,
			engine.PathFeatBudget:    char.FeatBudget + engine.FeatBudgetIncrement(false, nil, class, levelInClass),
			engine.PathTalentBudget:  char.TalentBudget + engine.TalentBudgetIncrement(class, levelInClass),
			engine.PathMaxHP:         char.MaxHP + engine.HitPointGain(staged.HitPointRoll, conModifier),
			engine.PathUpdatedAt:     o.clock.Now().Unix(),
		},
	}

	if staged.AbilityIncrease != "" {
		scores := char.AbilityScores
		scores.SetScore(staged.AbilityIncrease, scores.Score(staged.AbilityIncrease)+1)
		packet.FieldUpdates[engine.PathAbilityScores] = scores
	}

	for _, name := range chosenFeats {
		if !char.HasFeat(name) {
			packet.SubRecordsToCreate = append(packet.SubRecordsToCreate, saga.SubRecord{Type: saga.SubRecordFeat, Name: name})
		}
	}
	for _, name := range chosenTalents {
		if !char.HasTalent(name) {
			packet.SubRecordsToCreate = append(packet.SubRecordsToCreate, saga.SubRecord{Type: saga.SubRecordTalent, Name: name})
		}
	}

	return packet, nil
}

// featNames resolves feat identifiers to their canonical display names
func (o *Orchestrator) featNames(ctx context.Context, featIDs []string) ([]string, error) {
	names := make([]string, 0, len(featIDs))
	for _, featID := range featIDs {
		feat, err := o.catalog.GetFeat(ctx, featID)
		if err != nil {
			return nil, err
		}
		names = append(names, feat.Name)
	}
	return names, nil
}

// talentNames resolves talent identifiers to their canonical display names
func (o *Orchestrator) talentNames(ctx context.Context, talentIDs []string) ([]string, error) {
	names := make([]string, 0, len(talentIDs))
	for _, talentID := range talentIDs {
		talent, err := o.catalog.GetTalent(ctx, talentID)
		if err != nil {
			return nil, err
		}
		names = append(names, talent.Name)
	}
	return names, nil
}

// effectiveCreationScores applies the species fixed modifiers and the
// chosen-ability bonus to the staged scores
func effectiveCreationScores(staged *saga.StagedData, species *catalog.Species) saga.AbilityScores {
	scores := *staged.AbilityScores
	if species == nil {
		return scores
	}
	for ability, mod := range species.AbilityMods {
		scores.SetScore(ability, scores.Score(ability)+mod)
	}
	if species.AbilityChoice && staged.SpeciesAbilityChoice != "" {
		scores.SetScore(staged.SpeciesAbilityChoice, scores.Score(staged.SpeciesAbilityChoice)+1)
	}
	return scores
}
