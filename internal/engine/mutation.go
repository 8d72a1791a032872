package engine

import (
	"sort"

	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// Managed field paths. The applier dispatches on this closed table; an
// unknown path in a packet is a hard error, not a silent skip.
const (
	PathLevel                = "level"
	PathSpeciesID            = "species_id"
	PathSpeciesAbilityChoice = "species_ability_choice"
	PathBackgroundID         = "background_id"
	PathAbilityScores        = "ability_scores"
	PathClassLevels          = "class_levels"
	PathFeats                = "feats"
	PathTalents              = "talents"
	PathTrainedSkills        = "trained_skills"
	PathFeatBudget           = "feat_budget"
	PathTalentBudget         = "talent_budget"
	PathSkillBudget          = "skill_budget"
	PathStartingFeatCount    = "starting_feat_count"
	PathMaxHP                = "max_hp"
	PathUpdatedAt            = "updated_at"
)

type fieldApplier func(char *saga.CharacterData, value interface{}) error

var fieldAppliers = map[string]fieldApplier{
	PathLevel:                applyInt(func(c *saga.CharacterData, v int) { c.Level = v }),
	PathFeatBudget:           applyInt(func(c *saga.CharacterData, v int) { c.FeatBudget = v }),
	PathTalentBudget:         applyInt(func(c *saga.CharacterData, v int) { c.TalentBudget = v }),
	PathSkillBudget:          applyInt(func(c *saga.CharacterData, v int) { c.SkillBudget = v }),
	PathStartingFeatCount:    applyInt(func(c *saga.CharacterData, v int) { c.StartingFeatCount = v }),
	PathMaxHP:                applyInt(func(c *saga.CharacterData, v int) { c.MaxHP = v }),
	PathSpeciesID:            applyString(func(c *saga.CharacterData, v string) { c.SpeciesID = v }),
	PathBackgroundID:         applyString(func(c *saga.CharacterData, v string) { c.BackgroundID = v }),
	PathSpeciesAbilityChoice: applyAbility(func(c *saga.CharacterData, v saga.Ability) { c.SpeciesAbilityChoice = v }),
	PathAbilityScores: func(c *saga.CharacterData, value interface{}) error {
		scores, ok := value.(saga.AbilityScores)
		if !ok {
			return typeError(PathAbilityScores, value)
		}
		c.AbilityScores = scores
		return nil
	},
	PathClassLevels: func(c *saga.CharacterData, value interface{}) error {
		levels, ok := value.([]saga.ClassLevel)
		if !ok {
			return typeError(PathClassLevels, value)
		}
		c.ClassLevels = append([]saga.ClassLevel(nil), levels...)
		return nil
	},
	PathFeats:         applyStrings(func(c *saga.CharacterData, v []string) { c.Feats = v }),
	PathTalents:       applyStrings(func(c *saga.CharacterData, v []string) { c.Talents = v }),
	PathTrainedSkills: applyStrings(func(c *saga.CharacterData, v []string) { c.TrainedSkills = v }),
	PathUpdatedAt: func(c *saga.CharacterData, value interface{}) error {
		switch v := value.(type) {
		case int64:
			c.UpdatedAt = v
		case int:
			c.UpdatedAt = int64(v)
		default:
			return typeError(PathUpdatedAt, value)
		}
		return nil
	},
}

func applyInt(set func(*saga.CharacterData, int)) fieldApplier {
	return func(c *saga.CharacterData, value interface{}) error {
		v, ok := value.(int)
		if !ok {
			return typeError("int field", value)
		}
		set(c, v)
		return nil
	}
}

func applyString(set func(*saga.CharacterData, string)) fieldApplier {
	return func(c *saga.CharacterData, value interface{}) error {
		v, ok := value.(string)
		if !ok {
			return typeError("string field", value)
		}
		set(c, v)
		return nil
	}
}

func applyAbility(set func(*saga.CharacterData, saga.Ability)) fieldApplier {
	return func(c *saga.CharacterData, value interface{}) error {
		switch v := value.(type) {
		case saga.Ability:
			set(c, v)
		case string:
			set(c, saga.Ability(v))
		default:
			return typeError("ability field", value)
		}
		return nil
	}
}

func applyStrings(set func(*saga.CharacterData, []string)) fieldApplier {
	return func(c *saga.CharacterData, value interface{}) error {
		v, ok := value.([]string)
		if !ok {
			return typeError("string list field", value)
		}
		set(c, append([]string(nil), v...))
		return nil
	}
}

func typeError(path string, value interface{}) error {
	return errors.Internalf("mutation packet carries unexpected value type %T for %s", value, path)
}

// ApplyPacket applies a mutation packet to a copy of the character record
// and returns the new record. The input record is never mutated; callers
// observe either the old record or the fully-applied result.
func ApplyPacket(char *saga.CharacterData, packet *saga.MutationPacket) (*saga.CharacterData, error) {
	if packet == nil {
		return nil, errors.InvalidArgument("mutation packet cannot be nil")
	}

	next := char.Clone()

	// Deterministic application order
	paths := make([]string, 0, len(packet.FieldUpdates))
	for path := range packet.FieldUpdates {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		apply, ok := fieldAppliers[path]
		if !ok {
			return nil, errors.Internalf("mutation packet names unmanaged field %q", path)
		}
		if err := apply(next, packet.FieldUpdates[path]); err != nil {
			return nil, err
		}
	}
	return next, nil
}
