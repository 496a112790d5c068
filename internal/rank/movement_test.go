package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusrank/internal/domain"
)

func TestApply(t *testing.T) {
	iron, _ := Default.IndexOf("iron")
	bronze, _ := Default.IndexOf("bronze")
	radiant, _ := Default.IndexOf("radiant")

	tests := []struct {
		name     string
		pos      Position
		delta    int
		expected Movement
	}{
		{
			name:     "gain inside division",
			pos:      Position{Tier: iron, Division: 1, LP: 0},
			delta:    30,
			expected: Movement{Position: Position{Tier: iron, Division: 1, LP: 30}},
		},
		{
			name:     "division promotion",
			pos:      Position{Tier: iron, Division: 1, LP: 90},
			delta:    30,
			expected: Movement{Position: Position{Tier: iron, Division: 2, LP: 20}, Promoted: true},
		},
		{
			name:     "tier promotion from top division",
			pos:      Position{Tier: iron, Division: 3, LP: 95},
			delta:    10,
			expected: Movement{Position: Position{Tier: bronze, Division: 1, LP: 5}, Promoted: true},
		},
		{
			name:     "exactly one hundred promotes at zero",
			pos:      Position{Tier: iron, Division: 1, LP: 70},
			delta:    30,
			expected: Movement{Position: Position{Tier: iron, Division: 2, LP: 0}, Promoted: true},
		},
		{
			name:     "terminal tier saturates",
			pos:      Position{Tier: radiant, Division: 1, LP: 95},
			delta:    30,
			expected: Movement{Position: Position{Tier: radiant, Division: 1, LP: 100}},
		},
		{
			name:     "division demotion",
			pos:      Position{Tier: iron, Division: 2, LP: 5},
			delta:    -10,
			expected: Movement{Position: Position{Tier: iron, Division: 1, LP: 95}, Demoted: true},
		},
		{
			name:     "tier demotion lands in lower tier's last division",
			pos:      Position{Tier: bronze, Division: 1, LP: 10},
			delta:    -30,
			expected: Movement{Position: Position{Tier: iron, Division: 3, LP: 80}, Demoted: true},
		},
		{
			name:     "ladder floor clamps at zero",
			pos:      Position{Tier: iron, Division: 1, LP: 5},
			delta:    -30,
			expected: Movement{Position: Position{Tier: iron, Division: 1, LP: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Default.Apply(tt.pos, tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestApplyUnknownTier(t *testing.T) {
	_, err := Default.Apply(Position{Tier: len(Default), Division: 1, LP: 0}, 10)
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestApplyNeverPromotesAndDemotes(t *testing.T) {
	// Session deltas are small relative to the 100-point band, so the
	// promotion and demotion branches are mutually exclusive.
	for lp := 0; lp < 100; lp += 5 {
		for _, delta := range []int{-55, -40, -5, 0, 5, 40, 55} {
			m, err := Default.Apply(Position{Tier: 1, Division: 2, LP: lp}, delta)
			require.NoError(t, err)
			assert.False(t, m.Promoted && m.Demoted, "lp=%d delta=%d", lp, delta)
			assert.GreaterOrEqual(t, m.LP, 0)
			assert.Less(t, m.LP, 100)
		}
	}
}
