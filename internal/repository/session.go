package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"focusrank/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type SessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionRepository(db *sql.DB, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// NewRecordID generates an id for a session row.
func NewRecordID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}
	return id, nil
}

func (r *SessionRepository) Insert(ctx context.Context, playerID string, rec domain.SessionRecord) error {
	if err := insertSession(ctx, r.db, playerID, rec); err != nil {
		r.logger.Error().Err(err).Str("session_id", rec.ID).Msg("failed to insert session")
		return err
	}
	return nil
}

// ListBySkill returns a skill's history, most recent first.
func (r *SessionRepository) ListBySkill(ctx context.Context, skillID string, limit int) ([]domain.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, skill_id, started_at, ended_at, minutes, result, lp_change,
		       tier_before, division_before, tier_after, division_after, notes
		FROM sessions
		WHERE skill_id = ?
		ORDER BY ended_at DESC
		LIMIT ?
	`, skillID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	records := []domain.SessionRecord{}
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func insertSession(ctx context.Context, ex execer, playerID string, rec domain.SessionRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO sessions (
			id, skill_id, player_id, started_at, ended_at, minutes, result, lp_change,
			tier_before, division_before, tier_after, division_after, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID, rec.SkillID, playerID, rec.StartedAt, rec.EndedAt, rec.Minutes,
		string(rec.Result), rec.LPChange,
		rec.TierBefore, rec.DivisionBefore, rec.TierAfter, rec.DivisionAfter,
		rec.Notes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", rec.ID, err)
	}
	return nil
}

func scanSession(rows *sql.Rows) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	var result string
	err := rows.Scan(
		&rec.ID, &rec.SkillID, &rec.StartedAt, &rec.EndedAt, &rec.Minutes,
		&result, &rec.LPChange,
		&rec.TierBefore, &rec.DivisionBefore, &rec.TierAfter, &rec.DivisionAfter,
		&rec.Notes,
	)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("failed to scan session: %w", err)
	}
	rec.Result = domain.Outcome(result)
	return rec, nil
}
