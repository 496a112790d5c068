package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"focusrank/internal/constants"
	"focusrank/internal/domain"
	"focusrank/internal/rank"
	"focusrank/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var (
	ErrBlockInProgress = errors.New("a block is already in progress")
	ErrNoActiveBlock   = errors.New("no active block")
	ErrInvalidDuration = errors.New("invalid block duration")
)

// BlockService owns the focus-block lifecycle. It is the only writer of
// a player's progression state, which serializes outcome application per
// player as the engine requires.
type BlockService struct {
	players *repository.PlayerRepository
	skills  *repository.SkillRepository
	ladder  rank.Ladder
	logger  zerolog.Logger
}

func NewBlockService(
	players *repository.PlayerRepository,
	skills *repository.SkillRepository,
	ladder rank.Ladder,
	logger zerolog.Logger,
) *BlockService {
	return &BlockService{
		players: players,
		skills:  skills,
		ladder:  ladder,
		logger:  logger,
	}
}

// Start begins a block against a skill. One active block per player.
func (s *BlockService) Start(ctx context.Context, playerID, skillID string, plannedMinutes int) (*domain.ActiveBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if plannedMinutes <= 0 || plannedMinutes > constants.MaxBlockMinutes {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, plannedMinutes)
	}

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	if player.ActiveBlock != nil {
		return nil, ErrBlockInProgress
	}

	if _, err := s.skills.Get(ctx, playerID, skillID); err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate block id: %w", err)
	}

	block := &domain.ActiveBlock{
		ID:             "block_" + id,
		SkillID:        skillID,
		StartedAt:      time.Now(),
		PlannedMinutes: plannedMinutes,
	}
	if err := s.players.SetActiveBlock(ctx, playerID, block); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("skill_id", skillID).
		Int("planned_minutes", plannedMinutes).
		Msg("block started")
	return block, nil
}

// Cancel drops the active block without scoring anything. Abandoning
// mid-block with a penalty goes through End with an abandon outcome
// instead.
func (s *BlockService) Cancel(ctx context.Context, playerID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to load player: %w", err)
	}
	if player.ActiveBlock == nil {
		return ErrNoActiveBlock
	}

	if err := s.players.SetActiveBlock(ctx, playerID, nil); err != nil {
		return err
	}
	s.logger.Info().Str("player_id", playerID).Msg("block cancelled")
	return nil
}

// End scores the active block with a self-reported outcome. Scoring uses
// the planned duration; the elapsed wall-clock time only feeds the
// lifetime counters and the history record.
func (s *BlockService) End(ctx context.Context, playerID, rawResult, notes string) (*domain.Skill, *domain.ChangeEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	result, err := domain.ParseOutcome(rawResult)
	if err != nil {
		return nil, nil, err
	}

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load player: %w", err)
	}
	block := player.ActiveBlock
	if block == nil {
		return nil, nil, ErrNoActiveBlock
	}

	skill, err := s.skills.Get(ctx, playerID, block.SkillID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	elapsed := int(math.Round(now.Sub(block.StartedAt).Minutes()))

	recordID, err := repository.NewRecordID()
	if err != nil {
		return nil, nil, err
	}

	updated, event, err := s.ladder.ApplyOutcome(*skill, rank.BlockReport{
		RecordID:       block.ID + "_" + recordID,
		Result:         result,
		PlannedMinutes: block.PlannedMinutes,
		ElapsedMinutes: elapsed,
		StartedAt:      block.StartedAt,
		EndedAt:        now,
		Notes:          notes,
	})
	if err != nil {
		return nil, nil, err
	}

	// One transaction: the scored skill, its history entry, and the
	// block clear. A failure here leaves the block active and the skill
	// unscored, so a retry cannot double-apply the outcome.
	if err := s.players.RecordBlockResult(ctx, playerID, &updated, updated.History[0]); err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("player_id", playerID).
		Str("skill_id", updated.ID).
		Str("result", string(result)).
		Int("applied_lp", event.Applied).
		Bool("promoted", event.Promoted).
		Bool("demoted", event.Demoted).
		Msg("block ended")

	return &updated, &event, nil
}
