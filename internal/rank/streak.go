package rank

import "focusrank/internal/domain"

// NextStreak advances the signed streak counter for one outcome. A win
// after any non-positive streak flips straight to 1, and a non-win after
// any non-negative streak flips straight to -1.
//
// Callers must compute this once per outcome and thread the value through;
// every downstream step (modifier, counters, best/worst) uses the same
// result.
func NextStreak(current int, result domain.Outcome) int {
	if result == domain.OutcomeWin {
		if current >= 0 {
			return current + 1
		}
		return 1
	}
	if current <= 0 {
		return current - 1
	}
	return -1
}

// StreakModifier returns the LP adjustment a streak earns. The sign
// already encodes direction: hot streaks pay a bonus, tilt streaks an
// extra penalty.
func StreakModifier(streak int) int {
	switch {
	case streak >= 5:
		return 10
	case streak >= 3:
		return 5
	case streak <= -5:
		return -10
	case streak <= -3:
		return -5
	default:
		return 0
	}
}
