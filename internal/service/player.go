package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"focusrank/internal/config"
	"focusrank/internal/constants"
	"focusrank/internal/domain"
	"focusrank/internal/rank"
	"focusrank/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type PlayerService struct {
	players  *repository.PlayerRepository
	skills   *repository.SkillRepository
	sessions *repository.SessionRepository
	ladder   rank.Ladder
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewPlayerService(
	players *repository.PlayerRepository,
	skills *repository.SkillRepository,
	sessions *repository.SessionRepository,
	ladder rank.Ladder,
	cfg *config.Config,
	logger zerolog.Logger,
) *PlayerService {
	return &PlayerService{
		players:  players,
		skills:   skills,
		sessions: sessions,
		ladder:   ladder,
		cfg:      cfg,
		logger:   logger,
	}
}

// GetOrCreate loads the full player state, creating a default player on
// first sight and applying a season rollover when one is due.
func (s *PlayerService) GetOrCreate(ctx context.Context, id string) (*domain.PlayerState, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player, err := s.players.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return s.createDefault(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	player.Skills, err = s.skills.ListByPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	// History loads fan out per skill.
	g, gctx := errgroup.WithContext(ctx)
	for i := range player.Skills {
		skill := &player.Skills[i]
		g.Go(func() error {
			history, err := s.sessions.ListBySkill(gctx, skill.ID, constants.HistoryLimit)
			if err != nil {
				return err
			}
			skill.History = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.checkSeason(ctx, player)
}

// Sync stores a full client-side state, last write wins, and returns the
// freshly loaded result.
func (s *PlayerService) Sync(ctx context.Context, state *domain.PlayerState) (*domain.PlayerState, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if state.CurrentSeason < 1 {
		state.CurrentSeason = 1
	}
	if state.SeasonStartAt.IsZero() {
		state.SeasonStartAt = time.Now()
	}
	if state.CreatedAt.IsZero() {
		state.CreatedAt = time.Now()
	}

	if err := s.players.ReplaceState(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", state.ID).Int("skills", len(state.Skills)).Msg("player state synced")
	return s.GetOrCreate(ctx, state.ID)
}

func (s *PlayerService) createDefault(ctx context.Context, id string) (*domain.PlayerState, error) {
	now := time.Now()
	player := &domain.PlayerState{
		ID:            id,
		CurrentSeason: 1,
		SeasonStartAt: now,
		Skills:        []domain.Skill{},
		Settings: domain.Settings{
			BlockMinutes:         s.cfg.BlockMinutes,
			SoundEnabled:         true,
			NotificationsEnabled: true,
		},
		CreatedAt: now,
	}

	if err := s.players.Upsert(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info().Str("player_id", id).Msg("new player created")
	return player, nil
}

// checkSeason applies the 30-day decay reset when due and persists it.
func (s *PlayerService) checkSeason(ctx context.Context, player *domain.PlayerState) (*domain.PlayerState, error) {
	now := time.Now()
	if !rank.ShouldReset(player.SeasonStartAt, now) {
		return player, nil
	}

	reset := rank.ApplyReset(*player, now)

	if err := s.players.ResetSeason(ctx, &reset); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player_id", reset.ID).
		Int("season", reset.CurrentSeason).
		Msg("season rollover applied")
	return &reset, nil
}
