package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// forceSensitivityFeat is the feat that marks a character force-sensitive
// independently of class membership.
const forceSensitivityFeat = "Force Sensitivity"

// Gate checks content-level prerequisites: class, feat, and talent
// eligibility. Workflow-level step ordering belongs to the Tracker.
type Gate struct {
	catalog catalog.Client
}

// GateConfig holds the dependencies for a Gate
type GateConfig struct {
	Catalog catalog.Client
}

// Validate validates the GateConfig
func (cfg *GateConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Catalog == nil {
		return errors.InvalidArgument("catalog cannot be nil")
	}
	return nil
}

// NewGate creates a prerequisite gate backed by the content catalog
func NewGate(cfg *GateConfig) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gate{catalog: cfg.Catalog}, nil
}

// BaseAttackBonus computes the character's base attack bonus from the full
// class-level history. The highest progression rate among the character's
// classes dominates across every level; rates are not summed per class.
func (g *Gate) BaseAttackBonus(ctx context.Context, char *saga.CharacterData) (int, error) {
	bestRate := 0.0
	seen := make(map[string]bool)
	for _, cl := range char.ClassLevels {
		if seen[cl.ClassID] {
			continue
		}
		seen[cl.ClassID] = true

		class, err := g.catalog.GetClass(ctx, cl.ClassID)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to resolve class %s", cl.ClassID)
		}
		if class.BABRate > bestRate {
			bestRate = class.BABRate
		}
	}
	return int(bestRate * float64(char.TotalLevel())), nil
}

// IsForceSensitive reports whether the character is force-sensitive: either
// the Force Sensitivity feat is granted or a class in the history is
// force-sensitive.
func (g *Gate) IsForceSensitive(ctx context.Context, char *saga.CharacterData) (bool, error) {
	if char.HasFeat(forceSensitivityFeat) {
		return true, nil
	}
	for _, cl := range char.ClassLevels {
		class, err := g.catalog.GetClass(ctx, cl.ClassID)
		if err != nil {
			return false, errors.Wrapf(err, "failed to resolve class %s", cl.ClassID)
		}
		if class.ForceSensitive {
			return true, nil
		}
	}
	return false, nil
}

// CheckClassPrerequisites validates that the character qualifies for a
// class. Every unmet condition is named in the failure. skip bypasses the
// check entirely (free-build mode).
func (g *Gate) CheckClassPrerequisites(ctx context.Context, char *saga.CharacterData, class *catalog.Class, skip bool) error {
	if skip || class.Prerequisites == nil {
		return nil
	}
	prereqs := class.Prerequisites

	var unmet []string

	if prereqs.MinLevel > 0 && char.TotalLevel() < prereqs.MinLevel {
		unmet = append(unmet, fmt.Sprintf("requires character level %d, have %d", prereqs.MinLevel, char.TotalLevel()))
	}

	if prereqs.MinBAB > 0 {
		bab, err := g.BaseAttackBonus(ctx, char)
		if err != nil {
			return err
		}
		if bab < prereqs.MinBAB {
			unmet = append(unmet, fmt.Sprintf("requires base attack bonus +%d, have +%d", prereqs.MinBAB, bab))
		}
	}

	for _, skillID := range prereqs.TrainedSkills {
		if !char.IsSkillTrained(skillID) {
			skill, err := g.catalog.GetSkill(ctx, skillID)
			name := skillID
			if err == nil {
				name = skill.Name
			}
			unmet = append(unmet, fmt.Sprintf("requires trained skill %s", name))
		}
	}

	for _, featID := range prereqs.Feats {
		feat, err := g.catalog.GetFeat(ctx, featID)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve prerequisite feat %s", featID)
		}
		if !char.HasFeat(feat.Name) {
			unmet = append(unmet, fmt.Sprintf("requires feat %s", feat.Name))
		}
	}

	if prereqs.ForceSensitive {
		sensitive, err := g.IsForceSensitive(ctx, char)
		if err != nil {
			return err
		}
		if !sensitive {
			unmet = append(unmet, "requires force sensitivity")
		}
	}

	if len(unmet) > 0 {
		return errors.FailedPreconditionf("class %s prerequisites not met: %s", class.Name, strings.Join(unmet, "; ")).
			WithMeta("class_id", class.ID).
			WithMeta("unmet", unmet)
	}
	return nil
}

// CheckFeatPrerequisites validates a feat selection against granted feats
// plus the other feats staged in the same submission.
func (g *Gate) CheckFeatPrerequisites(ctx context.Context, char *saga.CharacterData, feat *catalog.Feat, staged []string) error {
	var unmet []string

	if feat.MinBAB > 0 {
		bab, err := g.BaseAttackBonus(ctx, char)
		if err != nil {
			return err
		}
		if bab < feat.MinBAB {
			unmet = append(unmet, fmt.Sprintf("requires base attack bonus +%d, have +%d", feat.MinBAB, bab))
		}
	}

	for _, prereqID := range feat.Prerequisites {
		prereq, err := g.catalog.GetFeat(ctx, prereqID)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve prerequisite feat %s", prereqID)
		}
		if !char.HasFeat(prereq.Name) && !containsName(staged, prereq.Name) && !containsName(staged, prereq.ID) {
			unmet = append(unmet, fmt.Sprintf("requires feat %s", prereq.Name))
		}
	}

	if len(unmet) > 0 {
		return errors.FailedPreconditionf("feat %s prerequisites not met: %s", feat.Name, strings.Join(unmet, "; ")).
			WithMeta("feat_id", feat.ID).
			WithMeta("unmet", unmet)
	}
	return nil
}

// CheckTalentPrerequisites validates a talent selection. The talent's tree
// must belong to a class in the character's history or the class staged in
// the current session.
func (g *Gate) CheckTalentPrerequisites(ctx context.Context, char *saga.CharacterData, talent *catalog.Talent, stagedClassID string) error {
	owned := saga.CanonicalKey(stagedClassID) == saga.CanonicalKey(talent.ClassID)
	if !owned {
		for _, cl := range char.ClassLevels {
			if saga.CanonicalKey(cl.ClassID) == saga.CanonicalKey(talent.ClassID) {
				owned = true
				break
			}
		}
	}
	if !owned {
		return errors.FailedPreconditionf("talent %s belongs to the %s talent trees", talent.Name, talent.ClassID).
			WithMeta("talent_id", talent.ID).
			WithMeta("class_id", talent.ClassID)
	}

	var unmet []string
	for _, prereqID := range talent.Prerequisites {
		prereq, err := g.catalog.GetFeat(ctx, prereqID)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve prerequisite %s", prereqID)
		}
		if !char.HasFeat(prereq.Name) {
			unmet = append(unmet, fmt.Sprintf("requires feat %s", prereq.Name))
		}
	}
	if len(unmet) > 0 {
		return errors.FailedPreconditionf("talent %s prerequisites not met: %s", talent.Name, strings.Join(unmet, "; ")).
			WithMeta("talent_id", talent.ID).
			WithMeta("unmet", unmet)
	}
	return nil
}

func containsName(entries []string, name string) bool {
	key := saga.CanonicalKey(name)
	for _, e := range entries {
		if saga.CanonicalKey(e) == key {
			return true
		}
	}
	return false
}
