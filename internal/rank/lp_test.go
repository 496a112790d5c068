package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"focusrank/internal/domain"
)

func TestSessionBaseLP(t *testing.T) {
	tests := []struct {
		name     string
		minutes  int
		expected int
	}{
		{"too short to score", 3, 0},
		{"just under threshold", 4, 0},
		{"threshold minute", 5, 8},
		{"half hour", 30, 25},
		{"optimal duration", 45, 30},
		{"one hour", 60, 25},
		{"ninety minutes", 90, 6},
		{"marathon floors at one", 120, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SessionBaseLP(tt.minutes))
		})
	}
}

func TestBaseChange(t *testing.T) {
	tests := []struct {
		name     string
		result   domain.Outcome
		minutes  int
		expected int
	}{
		{"win at optimal", domain.OutcomeWin, 45, 30},
		{"loss at optimal", domain.OutcomeLoss, 45, -30},
		{"abandon at optimal", domain.OutcomeAbandon, 45, -45},
		{"win too short", domain.OutcomeWin, 3, 0},
		{"loss too short", domain.OutcomeLoss, 3, 0},
		{"abandon always costs", domain.OutcomeAbandon, 3, -5},
		{"abandon minimum on long block", domain.OutcomeAbandon, 120, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BaseChange(tt.result, tt.minutes))
		})
	}
}

func TestTotalChange(t *testing.T) {
	tests := []struct {
		name        string
		streak      int
		protected   bool
		result      domain.Outcome
		minutes     int
		wantAmount  int
		wantBonus   int
		wantApplied int
		wantStreak  int
	}{
		{
			name:        "plain win no streak",
			streak:      0,
			result:      domain.OutcomeWin,
			minutes:     45,
			wantAmount:  30,
			wantBonus:   0,
			wantApplied: 30,
			wantStreak:  1,
		},
		{
			name:        "fifth consecutive win",
			streak:      4,
			result:      domain.OutcomeWin,
			minutes:     45,
			wantAmount:  30,
			wantBonus:   10,
			wantApplied: 40,
			wantStreak:  5,
		},
		{
			name:        "tilting loss",
			streak:      -2,
			result:      domain.OutcomeLoss,
			minutes:     45,
			wantAmount:  -30,
			wantBonus:   -5,
			wantApplied: -35,
			wantStreak:  -3,
		},
		{
			name:        "protection suppresses loss",
			streak:      0,
			protected:   true,
			result:      domain.OutcomeLoss,
			minutes:     45,
			wantAmount:  -30,
			wantBonus:   0,
			wantApplied: 0,
			wantStreak:  -1,
		},
		{
			name:        "protection does not touch wins",
			streak:      0,
			protected:   true,
			result:      domain.OutcomeWin,
			minutes:     45,
			wantAmount:  30,
			wantBonus:   0,
			wantApplied: 30,
			wantStreak:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skill := &domain.Skill{CurrentStreak: tt.streak, ProtectedPromotion: tt.protected}
			amount, bonus, applied, streak := TotalChange(skill, tt.result, tt.minutes)
			assert.Equal(t, tt.wantAmount, amount, "amount")
			assert.Equal(t, tt.wantBonus, bonus, "bonus")
			assert.Equal(t, tt.wantApplied, applied, "applied")
			assert.Equal(t, tt.wantStreak, streak, "streak")
		})
	}
}
