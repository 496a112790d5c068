package rank

import (
	"math"
	"time"

	"focusrank/internal/domain"
)

// SeasonDays is the length of one season.
const SeasonDays = 30

// LP decay multiplier applied at rollover.
const seasonDecay = 0.8

// ShouldReset reports whether a full season has elapsed since start.
func ShouldReset(seasonStart, now time.Time) bool {
	days := int(math.Floor(now.Sub(seasonStart).Hours() / 24))
	return days >= SeasonDays
}

// ApplyReset rolls the player into a new season: LP shrinks by 20%,
// streaks and promotion protection clear. History, peak ranks, and
// lifetime counters are untouched; they are not seasonal.
func ApplyReset(p domain.PlayerState, now time.Time) domain.PlayerState {
	reset := p
	reset.CurrentSeason = p.CurrentSeason + 1
	reset.SeasonStartAt = now

	reset.Skills = make([]domain.Skill, len(p.Skills))
	for i, s := range p.Skills {
		decayed := s
		decayed.LP = int(math.Floor(float64(s.LP) * seasonDecay))
		decayed.CurrentStreak = 0
		decayed.ProtectedPromotion = false
		reset.Skills[i] = decayed
	}
	return reset
}
