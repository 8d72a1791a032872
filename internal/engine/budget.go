package engine

import (
	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/entities/saga"
	"github.com/swsaga/progression-api/internal/errors"
)

// PointBuyBudget is the total point-buy cost allowed at creation
const PointBuyBudget = 25

// pointBuyCosts maps a score to its cumulative point-buy cost from 8
var pointBuyCosts = map[int]int{
	8: 0, 9: 1, 10: 2, 11: 3, 12: 4, 13: 5, 14: 6, 15: 8, 16: 10, 17: 13, 18: 16,
}

// standardArray is the fixed score set for the standard-array method
var standardArray = []int{15, 14, 13, 12, 10, 8}

// AbilityModifier returns the modifier for an ability score
func AbilityModifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return (score - 11) / 2
}

// FeatBudgetIncrement returns the feat-budget increase earned by confirming
// one class level. Budgets accumulate additively across the character's
// history; increments are never recomputed from scratch.
func FeatBudgetIncrement(firstCharacterLevel bool, species *catalog.Species, class *catalog.Class, levelInClass int) int {
	increment := class.GrantsAtLevel(levelInClass).BonusFeats
	if firstCharacterLevel {
		increment++
		if species != nil && species.BonusFeat {
			increment++
		}
	}
	return increment
}

// TalentBudgetIncrement returns the talent-budget increase earned by
// confirming one class level.
func TalentBudgetIncrement(class *catalog.Class, levelInClass int) int {
	return class.GrantsAtLevel(levelInClass).Talents
}

// SkillTrainingBudget returns the number of trained skills a character may
// choose at creation. Computed once, at the first class confirmation.
func SkillTrainingBudget(class *catalog.Class, intModifier int, species *catalog.Species) int {
	budget := class.SkillPoints + intModifier
	if species != nil && species.BonusTrainedSkill {
		budget++
	}
	if budget < 1 {
		budget = 1
	}
	return budget
}

// PointBuyCost returns the total point-buy cost of a score set. Scores
// outside the purchasable 8..18 range are an error.
func PointBuyCost(scores saga.AbilityScores) (int, error) {
	total := 0
	for _, ability := range saga.AllAbilities {
		score := scores.Score(ability)
		cost, ok := pointBuyCosts[score]
		if !ok {
			return 0, errors.InvalidArgumentf("ability %s score %d is outside the point-buy range 8-18", ability, score)
		}
		total += cost
	}
	return total, nil
}

// ValidateAbilityScores checks a score set against its generation method
func ValidateAbilityScores(method saga.AbilityMethod, scores saga.AbilityScores) error {
	switch method {
	case saga.MethodPointBuy:
		cost, err := PointBuyCost(scores)
		if err != nil {
			return err
		}
		if cost > PointBuyBudget {
			return errors.InvalidArgumentf("point-buy cost %d exceeds budget %d", cost, PointBuyBudget).
				WithMeta("cost", cost).
				WithMeta("budget", PointBuyBudget)
		}
		return nil
	case saga.MethodStandardArray:
		return validateStandardArray(scores)
	case saga.MethodManual:
		vb := errors.NewValidationBuilder()
		for _, ability := range saga.AllAbilities {
			errors.ValidateRange(string(ability), scores.Score(ability), 3, 18, vb)
		}
		return vb.Build()
	default:
		return errors.InvalidArgumentf("unknown ability score method %q", method)
	}
}

func validateStandardArray(scores saga.AbilityScores) error {
	remaining := make(map[int]int, len(standardArray))
	for _, v := range standardArray {
		remaining[v]++
	}
	for _, ability := range saga.AllAbilities {
		score := scores.Score(ability)
		if remaining[score] == 0 {
			return errors.InvalidArgumentf("score %d for %s is not part of the standard array", score, ability)
		}
		remaining[score]--
	}
	return nil
}

// HitPointsAtCreation returns maximum hit points for a first-level
// character: tripled class hit die plus the constitution modifier.
func HitPointsAtCreation(hitDie, conModifier int) int {
	return hitDie*3 + conModifier
}

// HitPointGain returns the hit points gained at a level-up from a hit die
// roll. Always at least 1.
func HitPointGain(roll, conModifier int) int {
	gain := roll + conModifier
	if gain < 1 {
		gain = 1
	}
	return gain
}
