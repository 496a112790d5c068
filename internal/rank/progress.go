package rank

import (
	"time"

	"focusrank/internal/domain"
)

// BlockReport is everything the aggregator needs about one finished
// block. PlannedMinutes drives scoring; ElapsedMinutes is the wall-clock
// time that goes into the lifetime counters and the history record.
type BlockReport struct {
	RecordID       string
	Result         domain.Outcome
	PlannedMinutes int
	ElapsedMinutes int
	StartedAt      time.Time
	EndedAt        time.Time
	Notes          string
}

// ApplyOutcome turns one block report into a fully updated skill plus the
// change event for the presentation layer. The input skill is not
// mutated and no I/O happens here.
func (l Ladder) ApplyOutcome(skill domain.Skill, rep BlockReport) (domain.Skill, domain.ChangeEvent, error) {
	if _, err := domain.ParseOutcome(string(rep.Result)); err != nil {
		return domain.Skill{}, domain.ChangeEvent{}, err
	}

	tierIdx, err := l.IndexOf(skill.Tier)
	if err != nil {
		return domain.Skill{}, domain.ChangeEvent{}, err
	}

	// Scoring uses the planned duration so cutting a block short never
	// moves it along the quality curve. TotalChange advances the streak
	// once; the same value feeds the counters below.
	amount, bonus, applied, newStreak := TotalChange(&skill, rep.Result, rep.PlannedMinutes)

	move, err := l.Apply(Position{Tier: tierIdx, Division: skill.Division, LP: skill.LP}, applied)
	if err != nil {
		return domain.Skill{}, domain.ChangeEvent{}, err
	}
	newTier, err := l.TierAt(move.Tier)
	if err != nil {
		return domain.Skill{}, domain.ChangeEvent{}, err
	}

	event := domain.ChangeEvent{
		Result:   rep.Result,
		Amount:   amount,
		Bonus:    bonus,
		Applied:  applied,
		OldLP:    skill.LP,
		NewLP:    move.LP,
		Promoted: move.Promoted,
		Demoted:  move.Demoted,
	}
	if move.Promoted || move.Demoted {
		event.NewTier = newTier.ID
		event.NewDivision = move.Division
	}

	updated := skill
	updated.LP = move.LP
	updated.Tier = newTier.ID
	updated.Division = move.Division
	updated.TotalMinutes += rep.ElapsedMinutes
	updated.TotalBlocks++
	switch rep.Result {
	case domain.OutcomeWin:
		updated.Wins++
	case domain.OutcomeLoss:
		updated.Losses++
	case domain.OutcomeAbandon:
		updated.Abandons++
	}
	updated.CurrentStreak = newStreak
	updated.BestStreak = max(updated.BestStreak, newStreak)
	updated.WorstStreak = min(updated.WorstStreak, newStreak)

	// A promotion grants one protected non-win; any non-win otherwise
	// consumes or clears the grace, whether or not it was suppressed.
	switch {
	case move.Promoted:
		updated.ProtectedPromotion = true
	case rep.Result != domain.OutcomeWin:
		updated.ProtectedPromotion = false
	}

	if move.Promoted {
		if err := l.raisePeak(&updated, move); err != nil {
			return domain.Skill{}, domain.ChangeEvent{}, err
		}
	}

	rec := domain.SessionRecord{
		ID:             rep.RecordID,
		SkillID:        skill.ID,
		StartedAt:      rep.StartedAt,
		EndedAt:        rep.EndedAt,
		Minutes:        rep.ElapsedMinutes,
		Result:         rep.Result,
		LPChange:       applied,
		TierBefore:     skill.Tier,
		DivisionBefore: skill.Division,
		TierAfter:      updated.Tier,
		DivisionAfter:  updated.Division,
		Notes:          rep.Notes,
	}
	updated.History = append([]domain.SessionRecord{rec}, updated.History...)

	return updated, event, nil
}

// raisePeak records a new peak position when the promotion strictly
// exceeds the old one by ladder order, then by division number.
func (l Ladder) raisePeak(skill *domain.Skill, move Movement) error {
	peakIdx, err := l.IndexOf(skill.PeakTier)
	if err != nil {
		return err
	}
	if move.Tier > peakIdx || (move.Tier == peakIdx && move.Division > skill.PeakDivision) {
		t, err := l.TierAt(move.Tier)
		if err != nil {
			return err
		}
		skill.PeakTier = t.ID
		skill.PeakDivision = move.Division
	}
	return nil
}

// NewSkill creates a skill with default progression state at the bottom
// of the ladder.
func (l Ladder) NewSkill(id, name, icon, color, area string, now time.Time) domain.Skill {
	bottom := l[0]
	return domain.Skill{
		ID:           id,
		Name:         name,
		Icon:         icon,
		Color:        color,
		Area:         area,
		LP:           0,
		Tier:         bottom.ID,
		Division:     1,
		PeakTier:     bottom.ID,
		PeakDivision: 1,
		History:      []domain.SessionRecord{},
		CreatedAt:    now,
	}
}

// PlaceSkill seeds a freshly created skill at a non-default tier. The
// synthetic placement entry keeps the audit trail honest without
// touching the win/loss/abandon counters.
func (l Ladder) PlaceSkill(skill domain.Skill, tierID, recordID string, now time.Time) (domain.Skill, error) {
	if _, err := l.IndexOf(tierID); err != nil {
		return domain.Skill{}, err
	}
	if tierID == l[0].ID {
		return skill, nil
	}

	placed := skill
	placed.Tier = tierID
	placed.PeakTier = tierID
	placed.LP = 50 // middle of the division

	placed.History = append([]domain.SessionRecord{{
		ID:             recordID,
		SkillID:        skill.ID,
		StartedAt:      now,
		EndedAt:        now,
		Minutes:        0,
		Result:         domain.OutcomeWin,
		LPChange:       0,
		TierBefore:     l[0].ID,
		DivisionBefore: 1,
		TierAfter:      tierID,
		DivisionAfter:  1,
		Notes:          "Initial Placement",
	}}, placed.History...)

	return placed, nil
}
