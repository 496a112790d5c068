package rank

// Position is a (tier, division, lp) triple on the ladder. Tier is the
// ladder index, Division is 1-indexed with 1 the lowest standing in a
// tier, LP lives in [0,100) except at the terminal tier, which saturates
// at 100.
type Position struct {
	Tier     int
	Division int
	LP       int
}

// Movement is the result of applying one LP delta.
type Movement struct {
	Position
	Promoted bool
	Demoted  bool
}

// Apply moves a position by a signed LP delta. One promotion or demotion
// step at most: overflow past a single boundary is clamped, not looped.
// The promotion branch runs first and the demotion check then uses the
// post-promotion LP; the two bands are mutually exclusive for the delta
// magnitudes a single session can produce, so at most one fires.
func (l Ladder) Apply(pos Position, delta int) (Movement, error) {
	cur, err := l.TierAt(pos.Tier)
	if err != nil {
		return Movement{}, err
	}

	m := Movement{Position: pos}
	m.LP = pos.LP + delta

	if m.LP >= 100 {
		switch {
		case pos.Division < cur.Divisions:
			m.Division = pos.Division + 1
			m.LP -= 100
			m.Promoted = true
		case !l.IsTerminal(pos.Tier):
			m.Tier = pos.Tier + 1
			m.Division = 1
			m.LP -= 100
			m.Promoted = true
		default:
			// Top of the ladder: LP saturates, no further promotion.
			if m.LP > 100 {
				m.LP = 100
			}
		}
	}

	if m.LP < 0 {
		switch {
		case pos.Division > 1:
			m.Division = pos.Division - 1
			m.LP += 100
			m.Demoted = true
		case pos.Tier > 0:
			below, err := l.TierAt(pos.Tier - 1)
			if err != nil {
				return Movement{}, err
			}
			m.Tier = pos.Tier - 1
			// Lands in the lower tier's highest division number, not
			// division 1. Long-standing behavior; keep as is.
			m.Division = below.Divisions
			m.LP += 100
			m.Demoted = true
		default:
			// Floor of the ladder.
			m.LP = 0
		}
	}

	return m, nil
}
