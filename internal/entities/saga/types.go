// Package saga defines the persisted entities of the progression engine.
package saga

import "strings"

// Mode identifies which progression pass a session is running
type Mode string

// Progression modes
const (
	ModeCreation Mode = "creation"
	ModeLevelUp  Mode = "level_up"
)

// StepID identifies one decision point in a progression session
type StepID string

// Step identifiers. Each mode uses a fixed ordered subset of these.
const (
	StepSpecies         StepID = "species"
	StepBackground      StepID = "background"
	StepAbilities       StepID = "abilities"
	StepClass           StepID = "class"
	StepHitPoints       StepID = "hit_points"
	StepSkills          StepID = "skills"
	StepFeats           StepID = "feats"
	StepTalents         StepID = "talents"
	StepAbilityIncrease StepID = "ability_increase"
	StepFinalize        StepID = "finalize"
)

// Ability identifies one of the six ability scores
type Ability string

// Abilities
const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// AllAbilities lists every ability in display order
var AllAbilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// AbilityMethod identifies how ability scores were generated
type AbilityMethod string

// Ability score generation methods
const (
	MethodPointBuy      AbilityMethod = "point_buy"
	MethodStandardArray AbilityMethod = "standard_array"
	MethodManual        AbilityMethod = "manual"
)

// AbilityScores holds the six ability scores
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Score returns the value for the given ability
func (s AbilityScores) Score(ability Ability) int {
	switch ability {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	default:
		return 0
	}
}

// SetScore sets the value for the given ability
func (s *AbilityScores) SetScore(ability Ability, value int) {
	switch ability {
	case Strength:
		s.Strength = value
	case Dexterity:
		s.Dexterity = value
	case Constitution:
		s.Constitution = value
	case Intelligence:
		s.Intelligence = value
	case Wisdom:
		s.Wisdom = value
	case Charisma:
		s.Charisma = value
	}
}

// CanonicalKey normalizes an identifier or name for comparison: feats and
// talents match case-insensitively with surrounding whitespace ignored.
func CanonicalKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
