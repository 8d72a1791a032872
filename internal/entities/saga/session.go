package saga

// StagedData holds the decisions accumulated by a session's steps. Nothing
// here touches the durable character record until finalize.
type StagedData struct {
	SpeciesID            string  `json:"species_id,omitempty"`
	SpeciesAbilityChoice Ability `json:"species_ability_choice,omitempty"`

	BackgroundID string `json:"background_id,omitempty"`

	AbilityMethod AbilityMethod  `json:"ability_method,omitempty"`
	AbilityScores *AbilityScores `json:"ability_scores,omitempty"`

	ClassID           string `json:"class_id,omitempty"`
	SkipPrerequisites bool   `json:"skip_prerequisites,omitempty"`

	SkillIDs  []string `json:"skill_ids,omitempty"`
	FeatIDs   []string `json:"feat_ids,omitempty"`
	TalentIDs []string `json:"talent_ids,omitempty"`

	HitPointRoll    int     `json:"hit_point_roll,omitempty"`
	AbilityIncrease Ability `json:"ability_increase,omitempty"`
}

// ProgressionSession is the ephemeral state of one creation or level-up
// pass. It is persisted after every step completion so a session can be
// resumed, and deleted after a successful finalize.
type ProgressionSession struct {
	CharacterID    string     `json:"character_id"`
	PlayerID       string     `json:"player_id"`
	Mode           Mode       `json:"mode"`
	CurrentStep    StepID     `json:"current_step"`
	CompletedSteps []StepID   `json:"completed_steps"`
	Staged         StagedData `json:"staged"`
	CreatedAt      int64      `json:"created_at"`
	UpdatedAt      int64      `json:"updated_at"`
}

// IsCompleted reports whether a step has been completed
func (s *ProgressionSession) IsCompleted(step StepID) bool {
	for _, done := range s.CompletedSteps {
		if done == step {
			return true
		}
	}
	return false
}

// MarkCompleted records a step as completed. Idempotent: completing a step
// twice leaves CompletedSteps unchanged. Insertion order is completion
// order.
func (s *ProgressionSession) MarkCompleted(step StepID) {
	if s.IsCompleted(step) {
		return
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
}
