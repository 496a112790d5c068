package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusrank/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(db *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: db, logger: logger}
}

// Get loads the player row without skills or history. Returns
// sql.ErrNoRows when the player does not exist.
func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.PlayerState, error) {
	return scanPlayer(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, current_season, season_start_at,
		       block_minutes, sound_enabled, notifications_enabled,
		       active_block_id, active_skill_id, active_block_started_at, active_block_minutes,
		       created_at
		FROM players WHERE id = ?
	`, id))
}

func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.PlayerState) error {
	if err := upsertPlayer(ctx, r.db, p, time.Now()); err != nil {
		r.logger.Error().Err(err).Str("player_id", p.ID).Msg("failed to upsert player")
		return err
	}
	return nil
}

// SetActiveBlock records the single in-flight block; pass nil to clear it.
func (r *PlayerRepository) SetActiveBlock(ctx context.Context, playerID string, block *domain.ActiveBlock) error {
	return setActiveBlock(ctx, r.db, playerID, block, time.Now())
}

// RecordBlockResult persists one scored block in a single transaction:
// the updated skill, its new history entry, and the active-block clear
// land together or not at all, so a partial failure never leaves a
// scored skill behind a still-active block.
func (r *PlayerRepository) RecordBlockResult(ctx context.Context, playerID string, skill *domain.Skill, rec domain.SessionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if err := upsertSkill(ctx, tx, playerID, skill, now); err != nil {
		return err
	}
	if err := insertSession(ctx, tx, playerID, rec); err != nil {
		return err
	}
	if err := setActiveBlock(ctx, tx, playerID, nil, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit block result: %w", err)
	}
	return nil
}

// ResetSeason commits a season rollover in one transaction: the player's
// season counter and every decayed skill.
func (r *PlayerRepository) ResetSeason(ctx context.Context, p *domain.PlayerState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE players SET current_season = ?, season_start_at = ?, updated_at = ? WHERE id = ?
	`, p.CurrentSeason, p.SeasonStartAt, now, p.ID); err != nil {
		return fmt.Errorf("failed to start season: %w", err)
	}

	for i := range p.Skills {
		if err := upsertSkill(ctx, tx, p.ID, &p.Skills[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit season reset: %w", err)
	}
	return nil
}

// StartSeason persists a season rollover for the player row itself; the
// decayed skills go through the skill repository.
func (r *PlayerRepository) StartSeason(ctx context.Context, playerID string, season int, startAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET current_season = ?, season_start_at = ?, updated_at = ? WHERE id = ?
	`, season, startAt, time.Now(), playerID)
	if err != nil {
		return fmt.Errorf("failed to start season: %w", err)
	}
	return nil
}

// ReplaceState overwrites the player's entire stored state in one
// transaction. Last write wins at this boundary.
func (r *PlayerRepository) ReplaceState(ctx context.Context, p *domain.PlayerState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if err := upsertPlayer(ctx, tx, p, now); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM skills WHERE player_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear skills: %w", err)
	}

	for i := range p.Skills {
		skill := &p.Skills[i]
		if err := upsertSkill(ctx, tx, p.ID, skill, now); err != nil {
			return err
		}
		for _, rec := range skill.History {
			if err := insertSession(ctx, tx, p.ID, rec); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state replace: %w", err)
	}

	r.logger.Debug().
		Str("player_id", p.ID).
		Int("skills", len(p.Skills)).
		Msg("player state replaced")
	return nil
}

func setActiveBlock(ctx context.Context, ex execer, playerID string, block *domain.ActiveBlock, now time.Time) error {
	var (
		blockID, skillID string
		startedAt        any
		minutes          int
	)
	if block != nil {
		blockID = block.ID
		skillID = block.SkillID
		startedAt = block.StartedAt
		minutes = block.PlannedMinutes
	}

	res, err := ex.ExecContext(ctx, `
		UPDATE players
		SET active_block_id = ?, active_skill_id = ?, active_block_started_at = ?,
		    active_block_minutes = ?, updated_at = ?
		WHERE id = ?
	`, blockID, skillID, startedAt, minutes, now, playerID)
	if err != nil {
		return fmt.Errorf("failed to set active block: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func upsertPlayer(ctx context.Context, ex execer, p *domain.PlayerState, now time.Time) error {
	var (
		blockID, skillID string
		startedAt        any
		minutes          int
	)
	if p.ActiveBlock != nil {
		blockID = p.ActiveBlock.ID
		skillID = p.ActiveBlock.SkillID
		startedAt = p.ActiveBlock.StartedAt
		minutes = p.ActiveBlock.PlannedMinutes
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO players (
			id, email, name, current_season, season_start_at,
			block_minutes, sound_enabled, notifications_enabled,
			active_block_id, active_skill_id, active_block_started_at, active_block_minutes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			current_season = excluded.current_season,
			season_start_at = excluded.season_start_at,
			block_minutes = excluded.block_minutes,
			sound_enabled = excluded.sound_enabled,
			notifications_enabled = excluded.notifications_enabled,
			active_block_id = excluded.active_block_id,
			active_skill_id = excluded.active_skill_id,
			active_block_started_at = excluded.active_block_started_at,
			active_block_minutes = excluded.active_block_minutes,
			updated_at = excluded.updated_at
	`,
		p.ID, p.Email, p.Name, p.CurrentSeason, p.SeasonStartAt,
		p.Settings.BlockMinutes, p.Settings.SoundEnabled, p.Settings.NotificationsEnabled,
		blockID, skillID, startedAt, minutes,
		p.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

func scanPlayer(row *sql.Row) (*domain.PlayerState, error) {
	var (
		p                domain.PlayerState
		blockID, skillID string
		startedAt        sql.NullTime
		minutes          int
	)
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.CurrentSeason, &p.SeasonStartAt,
		&p.Settings.BlockMinutes, &p.Settings.SoundEnabled, &p.Settings.NotificationsEnabled,
		&blockID, &skillID, &startedAt, &minutes,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if blockID != "" && startedAt.Valid {
		p.ActiveBlock = &domain.ActiveBlock{
			ID:             blockID,
			SkillID:        skillID,
			StartedAt:      startedAt.Time,
			PlannedMinutes: minutes,
		}
	}
	return &p, nil
}
