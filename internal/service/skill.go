package service

import (
	"context"
	"fmt"
	"time"

	"focusrank/internal/constants"
	"focusrank/internal/domain"
	"focusrank/internal/rank"
	"focusrank/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type SkillService struct {
	players  *repository.PlayerRepository
	skills   *repository.SkillRepository
	sessions *repository.SessionRepository
	ladder   rank.Ladder
	logger   zerolog.Logger
}

func NewSkillService(
	players *repository.PlayerRepository,
	skills *repository.SkillRepository,
	sessions *repository.SessionRepository,
	ladder rank.Ladder,
	logger zerolog.Logger,
) *SkillService {
	return &SkillService{
		players:  players,
		skills:   skills,
		sessions: sessions,
		ladder:   ladder,
		logger:   logger,
	}
}

// NewSkillInput carries the user-supplied fields of a new skill.
type NewSkillInput struct {
	Name        string
	Icon        string
	Color       string
	Area        string
	InitialTier string
}

// Create adds a skill for the player, optionally pre-seeded at a
// non-default tier with a synthetic placement history entry.
func (s *SkillService) Create(ctx context.Context, playerID string, in NewSkillInput) (*domain.Skill, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.players.Get(ctx, playerID); err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate skill id: %w", err)
	}

	now := time.Now()
	skill := s.ladder.NewSkill("skill_"+id, in.Name, in.Icon, in.Color, in.Area, now)

	if in.InitialTier != "" {
		recordID, err := repository.NewRecordID()
		if err != nil {
			return nil, err
		}
		skill, err = s.ladder.PlaceSkill(skill, in.InitialTier, "placed_"+recordID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := s.skills.Upsert(ctx, playerID, &skill); err != nil {
		return nil, err
	}
	for _, rec := range skill.History {
		if err := s.sessions.Insert(ctx, playerID, rec); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("skill_id", skill.ID).
		Str("tier", skill.Tier).
		Msg("skill created")
	return &skill, nil
}

// Delete removes a skill and, via cascade, its history.
func (s *SkillService) Delete(ctx context.Context, playerID, skillID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.skills.Delete(ctx, playerID, skillID); err != nil {
		return err
	}
	s.logger.Info().Str("player_id", playerID).Str("skill_id", skillID).Msg("skill deleted")
	return nil
}
