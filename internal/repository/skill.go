package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusrank/internal/domain"

	"github.com/rs/zerolog"
)

type SkillRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSkillRepository(db *sql.DB, logger zerolog.Logger) *SkillRepository {
	return &SkillRepository{db: db, logger: logger}
}

const skillColumns = `
	id, name, icon, color, area, lp, tier, division,
	total_minutes, total_blocks, wins, losses, abandons,
	current_streak, best_streak, worst_streak,
	peak_tier, peak_division, protected_promotion, created_at`

// ListByPlayer returns the player's skills without history.
func (r *SkillRepository) ListByPlayer(ctx context.Context, playerID string) ([]domain.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE player_id = ? ORDER BY created_at`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []domain.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// Get returns one skill by id, scoped to its owner.
func (r *SkillRepository) Get(ctx context.Context, playerID, skillID string) (*domain.Skill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE player_id = ? AND id = ?`, playerID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSkillNotFound, skillID)
	}
	s, err := scanSkill(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepository) Upsert(ctx context.Context, playerID string, skill *domain.Skill) error {
	if err := upsertSkill(ctx, r.db, playerID, skill, time.Now()); err != nil {
		r.logger.Error().Err(err).Str("skill_id", skill.ID).Msg("failed to upsert skill")
		return err
	}
	return nil
}

func (r *SkillRepository) Delete(ctx context.Context, playerID, skillID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM skills WHERE player_id = ? AND id = ?`, playerID, skillID)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSkillNotFound, skillID)
	}
	return nil
}

func upsertSkill(ctx context.Context, ex execer, playerID string, s *domain.Skill, now time.Time) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO skills (
			id, player_id, name, icon, color, area, lp, tier, division,
			total_minutes, total_blocks, wins, losses, abandons,
			current_streak, best_streak, worst_streak,
			peak_tier, peak_division, protected_promotion,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			area = excluded.area,
			lp = excluded.lp,
			tier = excluded.tier,
			division = excluded.division,
			total_minutes = excluded.total_minutes,
			total_blocks = excluded.total_blocks,
			wins = excluded.wins,
			losses = excluded.losses,
			abandons = excluded.abandons,
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			worst_streak = excluded.worst_streak,
			peak_tier = excluded.peak_tier,
			peak_division = excluded.peak_division,
			protected_promotion = excluded.protected_promotion,
			updated_at = excluded.updated_at
	`,
		s.ID, playerID, s.Name, s.Icon, s.Color, s.Area, s.LP, s.Tier, s.Division,
		s.TotalMinutes, s.TotalBlocks, s.Wins, s.Losses, s.Abandons,
		s.CurrentStreak, s.BestStreak, s.WorstStreak,
		s.PeakTier, s.PeakDivision, s.ProtectedPromotion,
		s.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert skill %s: %w", s.ID, err)
	}
	return nil
}

func scanSkill(rows *sql.Rows) (domain.Skill, error) {
	var s domain.Skill
	err := rows.Scan(
		&s.ID, &s.Name, &s.Icon, &s.Color, &s.Area, &s.LP, &s.Tier, &s.Division,
		&s.TotalMinutes, &s.TotalBlocks, &s.Wins, &s.Losses, &s.Abandons,
		&s.CurrentStreak, &s.BestStreak, &s.WorstStreak,
		&s.PeakTier, &s.PeakDivision, &s.ProtectedPromotion, &s.CreatedAt,
	)
	if err != nil {
		return domain.Skill{}, fmt.Errorf("failed to scan skill: %w", err)
	}
	s.History = []domain.SessionRecord{}
	return s, nil
}
