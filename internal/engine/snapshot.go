package engine

import (
	"fmt"

	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Diff structurally compares two character records and returns the ordered
// list of changes, restricted to the fields managed by the progression
// engine: scalar fields first, then array membership changes.
func Diff(before, after *saga.CharacterData) []saga.FieldChange {
	var changes []saga.FieldChange

	appendScalar := func(path string, oldValue, newValue interface{}) {
		if oldValue != newValue {
			changes = append(changes, saga.FieldChange{Path: path, OldValue: oldValue, NewValue: newValue})
		}
	}

	appendScalar(PathLevel, before.Level, after.Level)
	appendScalar(PathSpeciesID, before.SpeciesID, after.SpeciesID)
	appendScalar(PathSpeciesAbilityChoice, before.SpeciesAbilityChoice, after.SpeciesAbilityChoice)
	appendScalar(PathBackgroundID, before.BackgroundID, after.BackgroundID)
	for _, ability := range saga.AllAbilities {
		appendScalar(
			fmt.Sprintf("%s.%s", PathAbilityScores, ability),
			before.AbilityScores.Score(ability),
			after.AbilityScores.Score(ability),
		)
	}
	appendScalar(PathMaxHP, before.MaxHP, after.MaxHP)
	appendScalar(PathFeatBudget, before.FeatBudget, after.FeatBudget)
	appendScalar(PathTalentBudget, before.TalentBudget, after.TalentBudget)
	appendScalar(PathSkillBudget, before.SkillBudget, after.SkillBudget)
	appendScalar(PathStartingFeatCount, before.StartingFeatCount, after.StartingFeatCount)

	changes = append(changes, diffClassLevels(before.ClassLevels, after.ClassLevels)...)
	changes = append(changes, diffMembership(PathFeats, before.Feats, after.Feats)...)
	changes = append(changes, diffMembership(PathTalents, before.Talents, after.Talents)...)
	changes = append(changes, diffMembership(PathTrainedSkills, before.TrainedSkills, after.TrainedSkills)...)

	return changes
}

func diffClassLevels(before, after []saga.ClassLevel) []saga.FieldChange {
	var changes []saga.FieldChange

	common := len(before)
	if len(after) < common {
		common = len(after)
	}
	for i := 0; i < common; i++ {
		if before[i] != after[i] {
			changes = append(changes, saga.FieldChange{
				Path:     fmt.Sprintf("%s[%d]", PathClassLevels, i),
				OldValue: classLevelLabel(before[i]),
				NewValue: classLevelLabel(after[i]),
			})
		}
	}
	for i := common; i < len(after); i++ {
		changes = append(changes, saga.FieldChange{
			Path:     PathClassLevels,
			NewValue: classLevelLabel(after[i]),
		})
	}
	for i := common; i < len(before); i++ {
		changes = append(changes, saga.FieldChange{
			Path:     PathClassLevels,
			OldValue: classLevelLabel(before[i]),
		})
	}
	return changes
}

func classLevelLabel(cl saga.ClassLevel) string {
	return fmt.Sprintf("%s:%d", cl.ClassID, cl.LevelInClass)
}

func diffMembership(path string, before, after []string) []saga.FieldChange {
	var changes []saga.FieldChange

	beforeSet := make(map[string]bool, len(before))
	for _, entry := range before {
		beforeSet[saga.CanonicalKey(entry)] = true
	}
	afterSet := make(map[string]bool, len(after))
	for _, entry := range after {
		afterSet[saga.CanonicalKey(entry)] = true
	}

	for _, entry := range after {
		if !beforeSet[saga.CanonicalKey(entry)] {
			changes = append(changes, saga.FieldChange{Path: path, NewValue: entry})
		}
	}
	for _, entry := range before {
		if !afterSet[saga.CanonicalKey(entry)] {
			changes = append(changes, saga.FieldChange{Path: path, OldValue: entry})
		}
	}
	return changes
}

// RestoreManagedFields overwrites the engine-managed fields of dst with the
// values from src, leaving identity and bookkeeping fields untouched. Used
// by snapshot rollback.
func RestoreManagedFields(dst, src *saga.CharacterData) {
	dst.Level = src.Level
	dst.SpeciesID = src.SpeciesID
	dst.SpeciesAbilityChoice = src.SpeciesAbilityChoice
	dst.BackgroundID = src.BackgroundID
	dst.AbilityScores = src.AbilityScores
	dst.ClassLevels = append([]saga.ClassLevel(nil), src.ClassLevels...)
	dst.Feats = append([]string(nil), src.Feats...)
	dst.Talents = append([]string(nil), src.Talents...)
	dst.TrainedSkills = append([]string(nil), src.TrainedSkills...)
	dst.FeatBudget = src.FeatBudget
	dst.TalentBudget = src.TalentBudget
	dst.SkillBudget = src.SkillBudget
	dst.StartingFeatCount = src.StartingFeatCount
	dst.MaxHP = src.MaxHP
}
