package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	for _, valid := range []string{"win", "loss", "abandon"} {
		o, err := ParseOutcome(valid)
		require.NoError(t, err)
		assert.Equal(t, Outcome(valid), o)
	}

	for _, invalid := range []string{"", "draw", "WIN", "victory"} {
		_, err := ParseOutcome(invalid)
		assert.ErrorIs(t, err, ErrInvalidOutcome, "input %q", invalid)
	}
}

func TestSkillByID(t *testing.T) {
	p := PlayerState{Skills: []Skill{{ID: "a"}, {ID: "b"}}}

	skill, err := p.SkillByID("b")
	require.NoError(t, err)
	assert.Equal(t, "b", skill.ID)

	// The pointer aliases the slice entry.
	skill.LP = 42
	assert.Equal(t, 42, p.Skills[1].LP)

	_, err = p.SkillByID("c")
	assert.ErrorIs(t, err, ErrSkillNotFound)
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		name     string
		skill    Skill
		expected int
	}{
		{"no blocks", Skill{}, 0},
		{"all wins", Skill{Wins: 4}, 100},
		{"half", Skill{Wins: 2, Losses: 2}, 50},
		{"abandons count against", Skill{Wins: 1, Losses: 1, Abandons: 1}, 33},
		{"rounds to nearest", Skill{Wins: 2, Losses: 1}, 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.skill.WinRate())
		})
	}
}
