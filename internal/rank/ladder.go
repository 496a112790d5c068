package rank

import (
	"fmt"

	"focusrank/internal/domain"
)

// Tier is one rung of the ladder. The table below is the single static
// configuration; it is never mutated after process start.
type Tier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameEs        string `json:"nameEs"`
	MinHours      int    `json:"minHours"`
	Divisions     int    `json:"divisions"`
	LPPerDivision int    `json:"lpPerDivision"`
	Color         string `json:"color"`
	GlowColor     string `json:"glowColor"`
}

// Ladder holds tiers ordered lowest to highest.
type Ladder []Tier

// Default is the production ladder, iron through radiant.
var Default = Ladder{
	{ID: "iron", Name: "Iron", NameEs: "Hierro", MinHours: 0, Divisions: 3, LPPerDivision: 100, Color: "#5a5a5a", GlowColor: "#7a7a7a"},
	{ID: "bronze", Name: "Bronze", NameEs: "Bronce", MinHours: 15, Divisions: 3, LPPerDivision: 100, Color: "#cd7f32", GlowColor: "#da9655"},
	{ID: "silver", Name: "Silver", NameEs: "Plata", MinHours: 35, Divisions: 3, LPPerDivision: 100, Color: "#c0c0c0", GlowColor: "#e8e8e8"},
	{ID: "gold", Name: "Gold", NameEs: "Oro", MinHours: 65, Divisions: 3, LPPerDivision: 100, Color: "#ffd700", GlowColor: "#ffe55c"},
	{ID: "platinum", Name: "Platinum", NameEs: "Platino", MinHours: 105, Divisions: 3, LPPerDivision: 100, Color: "#00cec9", GlowColor: "#55efc4"},
	{ID: "diamond", Name: "Diamond", NameEs: "Diamante", MinHours: 160, Divisions: 3, LPPerDivision: 100, Color: "#a855f7", GlowColor: "#c084fc"},
	{ID: "immortal1", Name: "Immortal 1", NameEs: "Inmortal 1", MinHours: 230, Divisions: 1, LPPerDivision: 100, Color: "#ef4444", GlowColor: "#f87171"},
	{ID: "immortal2", Name: "Immortal 2", NameEs: "Inmortal 2", MinHours: 310, Divisions: 1, LPPerDivision: 100, Color: "#dc2626", GlowColor: "#ef4444"},
	{ID: "immortal3", Name: "Immortal 3", NameEs: "Inmortal 3", MinHours: 400, Divisions: 1, LPPerDivision: 100, Color: "#b91c1c", GlowColor: "#dc2626"},
	{ID: "radiant", Name: "Radiant", NameEs: "Radiante", MinHours: 550, Divisions: 1, LPPerDivision: 200, Color: "#ffe55c", GlowColor: "#fff9c4"},
}

// TierAt returns the tier at the given ladder position.
func (l Ladder) TierAt(i int) (Tier, error) {
	if i < 0 || i >= len(l) {
		return Tier{}, fmt.Errorf("%w: index %d", domain.ErrUnknownTier, i)
	}
	return l[i], nil
}

// IndexOf returns the ladder position of a tier id.
func (l Ladder) IndexOf(id string) (int, error) {
	for i, t := range l {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownTier, id)
}

// IsTerminal reports whether the position is the top of the ladder.
func (l Ladder) IsTerminal(i int) bool {
	return i == len(l)-1
}

// RadiantLevel names a band inside the terminal tier's internal LP scale.
type RadiantLevel struct {
	Level string `json:"level"`
	MinLP int    `json:"minLp"`
	Name  string `json:"name"`
}

// RadiantLevels are ordered ascending; thresholds scale exponentially.
var RadiantLevels = []RadiantLevel{
	{Level: "low", MinLP: 0, Name: "Radiante Bajo"},
	{Level: "mid", MinLP: 200, Name: "Radiante Medio"},
	{Level: "high", MinLP: 500, Name: "Radiante Alto"},
	{Level: "elite", MinLP: 1000, Name: "Radiante Élite"},
	{Level: "peak", MinLP: 2000, Name: "Radiante #1"},
}

// RadiantLevelFor maps internal radiant LP to its level band.
func RadiantLevelFor(lp int) RadiantLevel {
	for i := len(RadiantLevels) - 1; i >= 0; i-- {
		if lp >= RadiantLevels[i].MinLP {
			return RadiantLevels[i]
		}
	}
	return RadiantLevels[0]
}

// DisplayName renders "Plata 2" style names; single-division tiers omit
// the division number.
func (l Ladder) DisplayName(id string, division int) string {
	i, err := l.IndexOf(id)
	if err != nil {
		return id
	}
	t := l[i]
	if t.Divisions == 1 {
		return t.NameEs
	}
	return fmt.Sprintf("%s %d", t.NameEs, division)
}

// FormatHours renders accumulated minutes as "3h 20m".
func FormatHours(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
