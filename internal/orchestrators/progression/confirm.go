package progression

import (
	"context"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/engine"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// skillTrainingFeat is the feat that grants one extra trained skill at a
// later level.
const skillTrainingFeat = "Skill Training"

// ConfirmSpecies stages the species decision for a creation session
func (o *Orchestrator) ConfirmSpecies(ctx context.Context, input *ConfirmSpeciesInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepSpecies); err != nil {
		return nil, err
	}

	species, err := o.catalog.GetSpecies(ctx, input.SpeciesID)
	if err != nil {
		return nil, err
	}

	if species.AbilityChoice {
		if input.AbilityChoice == "" {
			return nil, errors.InvalidArgumentf("species %s requires choosing an ability for its bonus", species.Name).
				WithMeta("species_id", species.ID)
		}
		if !validAbility(input.AbilityChoice) {
			return nil, errors.InvalidArgumentf("unknown ability %q", input.AbilityChoice)
		}
	} else if input.AbilityChoice != "" {
		return nil, errors.InvalidArgumentf("species %s does not grant an ability choice", species.Name).
			WithMeta("species_id", species.ID)
	}

	sess.Staged.SpeciesID = species.ID
	sess.Staged.SpeciesAbilityChoice = input.AbilityChoice
	return o.completeStep(ctx, sess, tracker, saga.StepSpecies)
}

// ConfirmBackground stages the background decision for a creation session
func (o *Orchestrator) ConfirmBackground(ctx context.Context, input *ConfirmBackgroundInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepBackground); err != nil {
		return nil, err
	}

	background, err := o.catalog.GetBackground(ctx, input.BackgroundID)
	if err != nil {
		return nil, err
	}

	sess.Staged.BackgroundID = background.ID
	return o.completeStep(ctx, sess, tracker, saga.StepBackground)
}

// ConfirmAbilities validates and stages the ability score decision
func (o *Orchestrator) ConfirmAbilities(ctx context.Context, input *ConfirmAbilitiesInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepAbilities); err != nil {
		return nil, err
	}

	if err := engine.ValidateAbilityScores(input.Method, input.Scores); err != nil {
		return nil, err
	}

	scores := input.Scores
	sess.Staged.AbilityMethod = input.Method
	sess.Staged.AbilityScores = &scores
	return o.completeStep(ctx, sess, tracker, saga.StepAbilities)
}

// ConfirmClass validates class eligibility and stages the class decision.
// Prestige class prerequisites are checked against the character's current
// record; unmet conditions are all named in the failure.
func (o *Orchestrator) ConfirmClass(ctx context.Context, input *ConfirmClassInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepClass); err != nil {
		return nil, err
	}

	class, err := o.catalog.GetClass(ctx, input.ClassID)
	if err != nil {
		return nil, err
	}

	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return nil, err
	}

	if err := o.gate.CheckClassPrerequisites(ctx, char, class, input.SkipPrerequisites); err != nil {
		return nil, err
	}

	sess.Staged.ClassID = class.ID
	sess.Staged.SkipPrerequisites = input.SkipPrerequisites
	return o.completeStep(ctx, sess, tracker, saga.StepClass)
}

// ConfirmHitPoints validates and stages the hit-die roll of a level-up
func (o *Orchestrator) ConfirmHitPoints(ctx context.Context, input *ConfirmHitPointsInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepHitPoints); err != nil {
		return nil, err
	}

	class, err := o.catalog.GetClass(ctx, sess.Staged.ClassID)
	if err != nil {
		return nil, err
	}

	if input.Roll < 1 || input.Roll > class.HitDie {
		return nil, errors.InvalidArgumentf("hit point roll %d is outside 1-%d for %s", input.Roll, class.HitDie, class.Name).
			WithMeta("roll", input.Roll).
			WithMeta("hit_die", class.HitDie)
	}

	sess.Staged.HitPointRoll = input.Roll
	return o.completeStep(ctx, sess, tracker, saga.StepHitPoints)
}

// ConfirmSkills validates the trained-skill selection against the
// skill-training budget and stages it. Background-granted skills never
// consume the budget.
func (o *Orchestrator) ConfirmSkills(ctx context.Context, input *ConfirmSkillsInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepSkills); err != nil {
		return nil, err
	}

	skillIDs, err := o.resolveSkills(ctx, input.SkillIDs)
	if err != nil {
		return nil, err
	}

	switch sess.Mode {
	case saga.ModeCreation:
		if err := o.checkCreationSkillBudget(ctx, sess, skillIDs); err != nil {
			return nil, err
		}
	case saga.ModeLevelUp:
		if err := o.checkLevelUpSkillCapacity(ctx, sess, skillIDs); err != nil {
			return nil, err
		}
	}

	sess.Staged.SkillIDs = skillIDs
	return o.completeStep(ctx, sess, tracker, saga.StepSkills)
}

// ConfirmFeats validates the feat selection against the feat budget and
// each feat's prerequisites, then stages it. Prerequisites may be satisfied
// by other feats in the same submission.
func (o *Orchestrator) ConfirmFeats(ctx context.Context, input *ConfirmFeatsInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepFeats); err != nil {
		return nil, err
	}

	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return nil, err
	}

	feats, err := o.resolveFeats(ctx, input.FeatIDs)
	if err != nil {
		return nil, err
	}

	// Selections that duplicate an already-granted feat collapse and never
	// consume a slot.
	var newFeats []*catalog.Feat
	for _, feat := range feats {
		if !char.HasFeat(feat.Name) {
			newFeats = append(newFeats, feat)
		}
	}

	available, err := o.availableFeatSlots(ctx, char, sess)
	if err != nil {
		return nil, err
	}
	if len(newFeats) > available {
		return nil, errors.InvalidArgumentf("selected %d feats but only %d feat slots available", len(newFeats), available).
			WithMeta("selected", len(newFeats)).
			WithMeta("available", available)
	}

	projected, err := o.projectedCharacter(ctx, char, sess)
	if err != nil {
		return nil, err
	}
	stagedNames := make([]string, 0, len(feats))
	for _, feat := range feats {
		stagedNames = append(stagedNames, feat.Name)
	}
	for _, feat := range newFeats {
		if err := o.gate.CheckFeatPrerequisites(ctx, projected, feat, stagedNames); err != nil {
			return nil, err
		}
	}

	featIDs := make([]string, 0, len(feats))
	for _, feat := range feats {
		featIDs = append(featIDs, feat.ID)
	}
	sess.Staged.FeatIDs = featIDs
	return o.completeStep(ctx, sess, tracker, saga.StepFeats)
}

// ConfirmTalents validates the talent selection against the talent budget
// and each talent's tree ownership and prerequisites, then stages it.
func (o *Orchestrator) ConfirmTalents(ctx context.Context, input *ConfirmTalentsInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepTalents); err != nil {
		return nil, err
	}

	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return nil, err
	}

	talents, err := o.resolveTalents(ctx, input.TalentIDs)
	if err != nil {
		return nil, err
	}

	var newTalents []*catalog.Talent
	for _, talent := range talents {
		if !char.HasTalent(talent.Name) {
			newTalents = append(newTalents, talent)
		}
	}

	available, err := o.availableTalentSlots(ctx, char, sess)
	if err != nil {
		return nil, err
	}
	if len(newTalents) > available {
		return nil, errors.InvalidArgumentf("selected %d talents but only %d talent slots available", len(newTalents), available).
			WithMeta("selected", len(newTalents)).
			WithMeta("available", available)
	}

	projected, err := o.projectedCharacter(ctx, char, sess)
	if err != nil {
		return nil, err
	}
	for _, talent := range newTalents {
		if err := o.gate.CheckTalentPrerequisites(ctx, projected, talent, sess.Staged.ClassID); err != nil {
			return nil, err
		}
	}

	talentIDs := make([]string, 0, len(talents))
	for _, talent := range talents {
		talentIDs = append(talentIDs, talent.ID)
	}
	sess.Staged.TalentIDs = talentIDs
	return o.completeStep(ctx, sess, tracker, saga.StepTalents)
}

// ConfirmAbilityIncrease stages the milestone ability increase of a
// level-up. At non-milestone levels the step confirms with no choice.
func (o *Orchestrator) ConfirmAbilityIncrease(ctx context.Context, input *ConfirmAbilityIncreaseInput) (*ConfirmOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	sess, tracker, err := o.loadSession(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.enterStep(tracker, saga.StepAbilityIncrease); err != nil {
		return nil, err
	}

	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return nil, err
	}

	newLevel := char.TotalLevel() + 1
	milestone := newLevel%4 == 0

	if milestone {
		if input.AbilityID == "" {
			return nil, errors.InvalidArgumentf("level %d grants an ability increase; choose an ability", newLevel).
				WithMeta("level", newLevel)
		}
		if !validAbility(input.AbilityID) {
			return nil, errors.InvalidArgumentf("unknown ability %q", input.AbilityID)
		}
	} else if input.AbilityID != "" {
		return nil, errors.InvalidArgumentf("no ability increase is available at level %d", newLevel).
			WithMeta("level", newLevel)
	}

	sess.Staged.AbilityIncrease = input.AbilityID
	return o.completeStep(ctx, sess, tracker, saga.StepAbilityIncrease)
}

// checkCreationSkillBudget enforces the creation skill-training budget
func (o *Orchestrator) checkCreationSkillBudget(ctx context.Context, sess *saga.ProgressionSession, skillIDs []string) error {
	class, err := o.catalog.GetClass(ctx, sess.Staged.ClassID)
	if err != nil {
		return err
	}
	species, err := o.catalog.GetSpecies(ctx, sess.Staged.SpeciesID)
	if err != nil {
		return err
	}
	background, err := o.catalog.GetBackground(ctx, sess.Staged.BackgroundID)
	if err != nil {
		return err
	}
	if sess.Staged.AbilityScores == nil {
		return errors.FailedPrecondition("ability scores must be confirmed before skills")
	}

	scores := effectiveCreationScores(&sess.Staged, species)
	budget := engine.SkillTrainingBudget(class, engine.AbilityModifier(scores.Intelligence), species)

	// Background-granted skills are free
	counted := 0
	for _, skillID := range skillIDs {
		if !containsCanonical(background.GrantedSkills, skillID) {
			counted++
		}
	}
	if counted > budget {
		return errors.InvalidArgumentf("selected %d trained skills but only %d allowed", counted, budget).
			WithMeta("selected", counted).
			WithMeta("allowed", budget)
	}
	return nil
}

// checkLevelUpSkillCapacity limits new trainings at a level-up to the
// unconsumed Skill Training feats already on the record
func (o *Orchestrator) checkLevelUpSkillCapacity(ctx context.Context, sess *saga.ProgressionSession, skillIDs []string) error {
	char, err := o.getCharacter(ctx, sess.CharacterID)
	if err != nil {
		return err
	}

	newCount := 0
	for _, skillID := range skillIDs {
		if !char.IsSkillTrained(skillID) {
			newCount++
		}
	}
	if newCount == 0 {
		return nil
	}

	capacity, err := o.skillTrainingCapacity(ctx, char)
	if err != nil {
		return err
	}
	if newCount > capacity {
		return errors.InvalidArgumentf("selected %d new trained skills but only %d skill trainings available", newCount, capacity).
			WithMeta("selected", newCount).
			WithMeta("available", capacity)
	}
	return nil
}

// skillTrainingCapacity counts the Skill Training feats on the record that
// have not yet been consumed by a post-creation training
func (o *Orchestrator) skillTrainingCapacity(ctx context.Context, char *saga.CharacterData) (int, error) {
	granted := 0
	for _, feat := range char.Feats {
		if saga.CanonicalKey(feat) == saga.CanonicalKey(skillTrainingFeat) {
			granted++
		}
	}
	if granted == 0 {
		return 0, nil
	}

	backgroundGrants := 0
	if char.BackgroundID != "" {
		background, err := o.catalog.GetBackground(ctx, char.BackgroundID)
		if err != nil {
			return 0, err
		}
		backgroundGrants = len(background.GrantedSkills)
	}

	consumed := len(char.TrainedSkills) - char.SkillBudget - backgroundGrants
	if consumed < 0 {
		consumed = 0
	}
	capacity := granted - consumed
	if capacity < 0 {
		capacity = 0
	}
	return capacity, nil
}

// availableFeatSlots returns how many feat selections the session's level
// grant leaves open, on top of any unspent budget carried on the record
func (o *Orchestrator) availableFeatSlots(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (int, error) {
	class, err := o.catalog.GetClass(ctx, sess.Staged.ClassID)
	if err != nil {
		return 0, err
	}

	switch sess.Mode {
	case saga.ModeCreation:
		species, err := o.catalog.GetSpecies(ctx, sess.Staged.SpeciesID)
		if err != nil {
			return 0, err
		}
		return engine.FeatBudgetIncrement(true, species, class, 1), nil

	case saga.ModeLevelUp:
		levelInClass := char.LevelsInClass(class.ID) + 1
		projected := char.FeatBudget + engine.FeatBudgetIncrement(false, nil, class, levelInClass)
		used := len(char.Feats) - char.StartingFeatCount
		if used < 0 {
			used = 0
		}
		available := projected - used
		if available < 0 {
			available = 0
		}
		return available, nil

	default:
		return 0, errors.Internalf("unknown progression mode %q", sess.Mode)
	}
}

// availableTalentSlots returns how many talent selections remain open
func (o *Orchestrator) availableTalentSlots(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (int, error) {
	class, err := o.catalog.GetClass(ctx, sess.Staged.ClassID)
	if err != nil {
		return 0, err
	}

	switch sess.Mode {
	case saga.ModeCreation:
		return engine.TalentBudgetIncrement(class, 1), nil

	case saga.ModeLevelUp:
		levelInClass := char.LevelsInClass(class.ID) + 1
		projected := char.TalentBudget + engine.TalentBudgetIncrement(class, levelInClass)
		available := projected - len(char.Talents)
		if available < 0 {
			available = 0
		}
		return available, nil

	default:
		return 0, errors.Internalf("unknown progression mode %q", sess.Mode)
	}
}

// projectedCharacter clones the record and layers the session's staged
// class level and effective ability scores on top, for prerequisite checks
// that must see the level being confirmed.
func (o *Orchestrator) projectedCharacter(ctx context.Context, char *saga.CharacterData, sess *saga.ProgressionSession) (*saga.CharacterData, error) {
	projected := char.Clone()

	if sess.Staged.ClassID != "" {
		projected.ClassLevels = append(projected.ClassLevels, saga.ClassLevel{
			ClassID:      sess.Staged.ClassID,
			LevelInClass: char.LevelsInClass(sess.Staged.ClassID) + 1,
		})
		projected.Level = len(projected.ClassLevels)
	}

	if sess.Mode == saga.ModeCreation && sess.Staged.AbilityScores != nil {
		species, err := o.catalog.GetSpecies(ctx, sess.Staged.SpeciesID)
		if err != nil {
			return nil, err
		}
		projected.AbilityScores = effectiveCreationScores(&sess.Staged, species)
	}

	return projected, nil
}

// resolveSkills resolves and dedupes a skill selection
func (o *Orchestrator) resolveSkills(ctx context.Context, skillIDs []string) ([]string, error) {
	resolved := make([]string, 0, len(skillIDs))
	for _, skillID := range skillIDs {
		skill, err := o.catalog.GetSkill(ctx, skillID)
		if err != nil {
			return nil, err
		}
		resolved = saga.MergeCanonical(resolved, skill.ID)
	}
	return resolved, nil
}

// resolveFeats resolves and dedupes a feat selection
func (o *Orchestrator) resolveFeats(ctx context.Context, featIDs []string) ([]*catalog.Feat, error) {
	seen := make(map[string]bool, len(featIDs))
	resolved := make([]*catalog.Feat, 0, len(featIDs))
	for _, featID := range featIDs {
		feat, err := o.catalog.GetFeat(ctx, featID)
		if err != nil {
			return nil, err
		}
		key := saga.CanonicalKey(feat.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, feat)
	}
	return resolved, nil
}

// resolveTalents resolves and dedupes a talent selection
func (o *Orchestrator) resolveTalents(ctx context.Context, talentIDs []string) ([]*catalog.Talent, error) {
	seen := make(map[string]bool, len(talentIDs))
	resolved := make([]*catalog.Talent, 0, len(talentIDs))
	for _, talentID := range talentIDs {
		talent, err := o.catalog.GetTalent(ctx, talentID)
		if err != nil {
			return nil, err
		}
		key := saga.CanonicalKey(talent.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, talent)
	}
	return resolved, nil
}

func validAbility(ability saga.Ability) bool {
	for _, a := range saga.AllAbilities {
		if a == ability {
			return true
		}
	}
	return false
}

func containsCanonical(entries []string, name string) bool {
	key := saga.CanonicalKey(name)
	for _, entry := range entries {
		if saga.CanonicalKey(entry) == key {
			return true
		}
	}
	return false
}
