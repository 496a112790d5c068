package domain

import (
	"fmt"
	"time"
)

// Outcome is the self-reported result of a focus block.
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeAbandon Outcome = "abandon"
)

// ParseOutcome validates a raw outcome value at the boundary.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeWin, OutcomeLoss, OutcomeAbandon:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// SessionRecord is an immutable history entry for one completed block.
type SessionRecord struct {
	ID             string    `json:"id"`
	SkillID        string    `json:"skillId"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
	Minutes        int       `json:"minutes"` // wall-clock elapsed, audit only
	Result         Outcome   `json:"result"`
	LPChange       int       `json:"lpChange"` // applied delta, post-suppression
	TierBefore     string    `json:"tierBefore"`
	DivisionBefore int       `json:"divisionBefore"`
	TierAfter      string    `json:"tierAfter"`
	DivisionAfter  int       `json:"divisionAfter"`
	Notes          string    `json:"notes,omitempty"`
}

// Skill is one area of practice with its full progression state.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Area  string `json:"area,omitempty"`

	LP       int    `json:"lp"`
	Tier     string `json:"tier"`
	Division int    `json:"division"`

	TotalMinutes int `json:"totalMinutes"`
	TotalBlocks  int `json:"totalBlocks"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	Abandons     int `json:"abandons"`

	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
	WorstStreak   int `json:"worstStreak"`

	PeakTier     string `json:"peakTier"`
	PeakDivision int    `json:"peakDivision"`

	// ProtectedPromotion absorbs the next non-win at zero LP cost.
	ProtectedPromotion bool `json:"protectedPromotion"`

	History []SessionRecord `json:"history"`

	CreatedAt time.Time `json:"createdAt"`
}

// Settings are per-player preferences.
type Settings struct {
	BlockMinutes         int  `json:"blockMinutes"`
	SoundEnabled         bool `json:"soundEnabled"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
}

// ActiveBlock tracks the single in-flight focus block for a player.
type ActiveBlock struct {
	ID             string    `json:"id"`
	SkillID        string    `json:"skillId"`
	StartedAt      time.Time `json:"startedAt"`
	PlannedMinutes int       `json:"plannedMinutes"`
}

// PlayerState is the unit of persistence and of season rollover.
type PlayerState struct {
	ID            string       `json:"id"`
	Email         string       `json:"email,omitempty"`
	Name          string       `json:"name,omitempty"`
	CurrentSeason int          `json:"currentSeason"`
	SeasonStartAt time.Time    `json:"seasonStartAt"`
	Skills        []Skill      `json:"skills"`
	Settings      Settings     `json:"settings"`
	ActiveBlock   *ActiveBlock `json:"activeBlock,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// SkillByID returns a pointer into the player's skill slice.
func (p *PlayerState) SkillByID(id string) (*Skill, error) {
	for i := range p.Skills {
		if p.Skills[i].ID == id {
			return &p.Skills[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
}

// ChangeEvent is the presentation-layer payload describing what one
// outcome did to a skill. Amount and Bonus are the raw pre-suppression
// components; Applied is what actually hit the LP total.
type ChangeEvent struct {
	Result   Outcome `json:"result"`
	Amount   int     `json:"amount"`
	Bonus    int     `json:"bonus"`
	Applied  int     `json:"applied"`
	OldLP    int     `json:"oldLp"`
	NewLP    int     `json:"newLp"`
	Promoted bool    `json:"promoted"`
	Demoted  bool    `json:"demoted"`

	// Only set when Promoted or Demoted.
	NewTier     string `json:"newTier,omitempty"`
	NewDivision int    `json:"newDivision,omitempty"`
}

// WinRate returns the win percentage over all counted blocks, rounded.
func (s *Skill) WinRate() int {
	total := s.Wins + s.Losses + s.Abandons
	if total == 0 {
		return 0
	}
	return int(float64(s.Wins)/float64(total)*100 + 0.5)
}
