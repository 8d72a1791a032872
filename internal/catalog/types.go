package catalog

import (
	"github.com/swsaga/progression-api/internal/entities/saga"
)

// Species describes a playable species and its creation-time grants
type Species struct {
	ID   string
	Name string
	// BonusFeat grants one extra feat at the character's first level
	BonusFeat bool
	// BonusTrainedSkill grants one extra trained skill at creation
	BonusTrainedSkill bool
	// AbilityChoice lets the player pick one ability for a +1 bonus
	AbilityChoice bool
	// AbilityMods are fixed species ability modifiers
	AbilityMods map[saga.Ability]int
}

// Background describes a character background. Background-granted skills do
// not consume the creation skill-training budget.
type Background struct {
	ID            string
	Name          string
	GrantedSkills []string
}

// LevelGrants are the feature grants of one class level
type LevelGrants struct {
	BonusFeats int
	Talents    int
}

// ClassPrerequisites gate entry into prestige classes
type ClassPrerequisites struct {
	MinLevel       int
	MinBAB         int
	TrainedSkills  []string
	Feats          []string
	ForceSensitive bool
}

// Class describes a heroic or prestige class, its per-level feature table,
// and its prerequisite descriptors.
type Class struct {
	ID   string
	Name string
	// HitDie is the size of the class hit die (d6, d8, d10)
	HitDie int
	// BABRate is the per-level base attack progression (1.0 or 0.75)
	BABRate float64
	// SkillPoints is the base number of trained skills at creation
	SkillPoints int
	// ForceSensitive marks classes whose members count as force-sensitive
	ForceSensitive bool
	// Prestige classes carry prerequisites and grant no starting feats
	Prestige bool
	// StartingFeats are granted free when this is the first class taken
	StartingFeats []string
	// TalentLevels and BonusFeatLevels are the class levels at which the
	// class grants a talent or a bonus feat
	TalentLevels    []int
	BonusFeatLevels []int
	Prerequisites   *ClassPrerequisites
}

// GrantsAtLevel returns the feature grants for one level in this class
func (c *Class) GrantsAtLevel(levelInClass int) LevelGrants {
	grants := LevelGrants{}
	for _, lvl := range c.BonusFeatLevels {
		if lvl == levelInClass {
			grants.BonusFeats++
		}
	}
	for _, lvl := range c.TalentLevels {
		if lvl == levelInClass {
			grants.Talents++
		}
	}
	return grants
}

// Feat describes a feat and the names of feats it requires
type Feat struct {
	ID            string
	Name          string
	MinBAB        int
	Prerequisites []string
}

// Talent describes a talent within a class talent tree
type Talent struct {
	ID            string
	Name          string
	ClassID       string
	Tree          string
	Prerequisites []string
}

// Skill describes a trainable skill
type Skill struct {
	ID         string
	Name       string
	KeyAbility saga.Ability
}
