package rank

import (
	"math"

	"focusrank/internal/domain"
)

// Duration-quality curve parameters. LP reward peaks at the optimal
// block length and falls off on both sides.
const (
	minScoredMinutes = 5
	optimalMinutes   = 45.0
	durationSpread   = 25.0
	maxBaseLP        = 30.0

	// Abandons always cost something, even for unscored durations.
	minAbandonPenalty = -5
)

// SessionBaseLP maps a planned block duration to its base LP magnitude.
// Blocks under five minutes score zero; everything else follows a
// Gaussian centered on the optimal duration, floored at 1 and capped
// at 30.
func SessionBaseLP(minutes int) int {
	if minutes < minScoredMinutes {
		return 0
	}
	z := (float64(minutes) - optimalMinutes) / durationSpread
	lp := math.Round(maxBaseLP * math.Exp(-0.5*z*z))
	if lp < 1 {
		lp = 1
	}
	return int(lp)
}

// BaseChange converts an outcome and planned duration into the signed
// base LP swing. Abandons cost 1.5x a loss, never less than 5 LP.
func BaseChange(result domain.Outcome, minutes int) int {
	base := SessionBaseLP(minutes)
	switch result {
	case domain.OutcomeWin:
		return base
	case domain.OutcomeLoss:
		return -base
	default: // abandon
		penalty := -int(math.Floor(float64(base) * 1.5))
		if penalty > minAbandonPenalty {
			penalty = minAbandonPenalty
		}
		return penalty
	}
}

// TotalChange computes the full LP delta for one outcome: base swing plus
// streak modifier, with promotion protection suppressing the applied
// amount on a non-win. Amount and bonus keep their raw values so the
// presentation layer can still show what the session was worth. The
// advanced streak is returned so callers reuse this one value instead of
// recomputing it.
func TotalChange(skill *domain.Skill, result domain.Outcome, minutes int) (amount, bonus, applied, streak int) {
	streak = NextStreak(skill.CurrentStreak, result)
	amount = BaseChange(result, minutes)
	bonus = StreakModifier(streak)
	applied = amount + bonus
	if result != domain.OutcomeWin && skill.ProtectedPromotion {
		applied = 0
	}
	return amount, bonus, applied, streak
}
