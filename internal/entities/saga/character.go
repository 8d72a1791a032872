package saga

// ClassLevel is one entry in a character's class-level history, one per
// character level taken, in the order the levels were taken.
type ClassLevel struct {
	ClassID      string `json:"class_id"`
	LevelInClass int    `json:"level_in_class"`
}

// CharacterData is the durable character progression record. It is mutated
// only through the atomic mutation path during finalize, never directly by
// step handlers.
type CharacterData struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`

	Level                int           `json:"level"`
	SpeciesID            string        `json:"species_id,omitempty"`
	SpeciesAbilityChoice Ability       `json:"species_ability_choice,omitempty"`
	BackgroundID         string        `json:"background_id,omitempty"`
	AbilityScores        AbilityScores `json:"ability_scores"`
	ClassLevels          []ClassLevel  `json:"class_levels"`

	// Feats, Talents, and TrainedSkills hold canonical entries; uniqueness
	// is case-insensitive with first-seen casing preserved.
	Feats         []string `json:"feats"`
	Talents       []string `json:"talents"`
	TrainedSkills []string `json:"trained_skills"`

	// StartingFeatCount records feats granted outside the budget (species
	// and class starting feats) so the budget invariant can exclude them.
	StartingFeatCount int `json:"starting_feat_count"`

	// Cumulative budgets, only ever increased by class-grant increments.
	FeatBudget   int `json:"feat_budget"`
	TalentBudget int `json:"talent_budget"`
	SkillBudget  int `json:"skill_budget"`

	MaxHP int `json:"max_hp"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// TotalLevel returns the character level, defined as the length of the
// class-level history.
func (c *CharacterData) TotalLevel() int {
	return len(c.ClassLevels)
}

// LevelsInClass returns how many levels the character has taken in a class
func (c *CharacterData) LevelsInClass(classID string) int {
	count := 0
	for _, cl := range c.ClassLevels {
		if cl.ClassID == classID {
			count++
		}
	}
	return count
}

// HasFeat reports whether the character has a feat, matching
// case-insensitively and whitespace-trimmed.
func (c *CharacterData) HasFeat(name string) bool {
	return containsCanonical(c.Feats, name)
}

// HasTalent reports whether the character has a talent
func (c *CharacterData) HasTalent(name string) bool {
	return containsCanonical(c.Talents, name)
}

// IsSkillTrained reports whether a skill is trained
func (c *CharacterData) IsSkillTrained(skillID string) bool {
	return containsCanonical(c.TrainedSkills, skillID)
}

// Clone returns a deep copy of the character record
func (c *CharacterData) Clone() *CharacterData {
	if c == nil {
		return nil
	}

	clone := *c
	clone.ClassLevels = append([]ClassLevel(nil), c.ClassLevels...)
	clone.Feats = append([]string(nil), c.Feats...)
	clone.Talents = append([]string(nil), c.Talents...)
	clone.TrainedSkills = append([]string(nil), c.TrainedSkills...)
	return &clone
}

func containsCanonical(entries []string, name string) bool {
	key := CanonicalKey(name)
	for _, e := range entries {
		if CanonicalKey(e) == key {
			return true
		}
	}
	return false
}

// MergeCanonical appends candidates to entries, collapsing duplicates
// case-insensitively and whitespace-trimmed. First-seen casing wins.
func MergeCanonical(entries []string, candidates ...string) []string {
	merged := append([]string(nil), entries...)
	for _, candidate := range candidates {
		if !containsCanonical(merged, candidate) {
			merged = append(merged, candidate)
		}
	}
	return merged
}
