package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusrank/internal/config"
	"focusrank/internal/database"
	"focusrank/internal/domain"
	"focusrank/internal/rank"
	"focusrank/internal/repository"
)

type testEnv struct {
	db       *sql.DB
	players  *PlayerService
	skills   *SkillService
	blocks   *BlockService
	skillsRp *repository.SkillRepository
	playerRp *repository.PlayerRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		DBPath:       filepath.Join(t.TempDir(), "test.db"),
		BlockMinutes: 30,
	}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	playerRp := repository.NewPlayerRepository(db, log)
	skillRp := repository.NewSkillRepository(db, log)
	sessionRp := repository.NewSessionRepository(db, log)

	return &testEnv{
		db:       db,
		players:  NewPlayerService(playerRp, skillRp, sessionRp, rank.Default, cfg, log),
		skills:   NewSkillService(playerRp, skillRp, sessionRp, rank.Default, log),
		blocks:   NewBlockService(playerRp, skillRp, rank.Default, log),
		skillsRp: skillRp,
		playerRp: playerRp,
	}
}

func (e *testEnv) mustPlayerAndSkill(t *testing.T, ctx context.Context) *domain.Skill {
	t.Helper()
	_, err := e.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)
	skill, err := e.skills.Create(ctx, "player_1", NewSkillInput{Name: "Deep Work", Icon: "brain", Color: "#a855f7"})
	require.NoError(t, err)
	return skill
}

func TestBlockLifecycleWin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	block, err := env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)
	assert.Equal(t, skill.ID, block.SkillID)
	assert.Equal(t, 45, block.PlannedMinutes)

	// The block just started, so elapsed time is ~0; scoring still uses
	// the planned 45 minutes.
	updated, event, err := env.blocks.End(ctx, "player_1", "win", "flow state")
	require.NoError(t, err)
	assert.Equal(t, 30, event.Applied)
	assert.Equal(t, 30, updated.LP)
	assert.Equal(t, 1, updated.Wins)
	assert.Equal(t, 1, updated.CurrentStreak)

	// Persisted and the active block cleared.
	stored, err := env.skillsRp.Get(ctx, "player_1", skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.LP)

	player, err := env.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)
	assert.Nil(t, player.ActiveBlock)
	require.Len(t, player.Skills, 1)
	require.Len(t, player.Skills[0].History, 1)
	assert.Equal(t, 30, player.Skills[0].History[0].LPChange)
	assert.Equal(t, "flow state", player.Skills[0].History[0].Notes)
}

func TestBlockStartGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	_, err := env.blocks.Start(ctx, "player_1", "ghost_skill", 45)
	assert.ErrorIs(t, err, domain.ErrSkillNotFound)

	_, err = env.blocks.Start(ctx, "player_1", skill.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)
	_, err = env.blocks.Start(ctx, "player_1", skill.ID, 45)
	assert.ErrorIs(t, err, ErrBlockInProgress)
}

func TestBlockCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	assert.ErrorIs(t, env.blocks.Cancel(ctx, "player_1"), ErrNoActiveBlock)

	_, err := env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)
	require.NoError(t, env.blocks.Cancel(ctx, "player_1"))

	// Nothing was scored.
	stored, err := env.skillsRp.Get(ctx, "player_1", skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TotalBlocks)
	assert.Equal(t, 0, stored.LP)
}

func TestBlockEndGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	_, _, err := env.blocks.End(ctx, "player_1", "win", "")
	assert.ErrorIs(t, err, ErrNoActiveBlock)

	_, err = env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)

	_, _, err = env.blocks.End(ctx, "player_1", "draw", "")
	assert.ErrorIs(t, err, domain.ErrInvalidOutcome)

	// The invalid report left the block active.
	_, _, err = env.blocks.End(ctx, "player_1", "abandon", "")
	require.NoError(t, err)

	stored, err := env.skillsRp.Get(ctx, "player_1", skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Abandons)
	assert.Equal(t, -1, stored.CurrentStreak)
}

func TestBlockEndPersistsAtomically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	_, err := env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)

	// Hide the history table so the write sequence fails partway.
	_, err = env.db.Exec(`ALTER TABLE sessions RENAME TO sessions_hidden`)
	require.NoError(t, err)

	_, _, err = env.blocks.End(ctx, "player_1", "win", "")
	require.Error(t, err)

	// Nothing landed: the skill is unscored and the block still active.
	stored, err := env.skillsRp.Get(ctx, "player_1", skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LP)
	assert.Equal(t, 0, stored.Wins)
	assert.Equal(t, 0, stored.TotalBlocks)

	player, err := env.playerRp.Get(ctx, "player_1")
	require.NoError(t, err)
	require.NotNil(t, player.ActiveBlock)

	// Retrying after the fault clears scores the block exactly once.
	_, err = env.db.Exec(`ALTER TABLE sessions_hidden RENAME TO sessions`)
	require.NoError(t, err)

	updated, _, err := env.blocks.End(ctx, "player_1", "win", "")
	require.NoError(t, err)
	assert.Equal(t, 30, updated.LP)
	assert.Equal(t, 1, updated.Wins)
	assert.Equal(t, 1, updated.TotalBlocks)

	full, err := env.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)
	assert.Nil(t, full.ActiveBlock)
	require.Len(t, full.Skills, 1)
	assert.Len(t, full.Skills[0].History, 1)
}

func TestPlayerGetOrCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	player, err := env.players.GetOrCreate(ctx, "fresh_player")
	require.NoError(t, err)
	assert.Equal(t, 1, player.CurrentSeason)
	assert.Equal(t, 30, player.Settings.BlockMinutes)
	assert.True(t, player.Settings.SoundEnabled)
	assert.Empty(t, player.Skills)

	// Second load finds the stored row.
	again, err := env.players.GetOrCreate(ctx, "fresh_player")
	require.NoError(t, err)
	assert.Equal(t, player.ID, again.ID)
	assert.Equal(t, 1, again.CurrentSeason)
}

func TestSkillCreateWithPlacement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)

	skill, err := env.skills.Create(ctx, "player_1", NewSkillInput{
		Name:        "Guitar",
		InitialTier: "gold",
	})
	require.NoError(t, err)
	assert.Equal(t, "gold", skill.Tier)
	assert.Equal(t, 50, skill.LP)

	player, err := env.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)
	require.Len(t, player.Skills, 1)
	require.Len(t, player.Skills[0].History, 1)
	assert.Equal(t, "Initial Placement", player.Skills[0].History[0].Notes)
	assert.Equal(t, 0, player.Skills[0].Wins)

	_, err = env.skills.Create(ctx, "player_1", NewSkillInput{Name: "Chess", InitialTier: "wood"})
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestSeasonRolloverOnLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	skill := env.mustPlayerAndSkill(t, ctx)

	// Push the skill to some LP, then age the season past 30 days.
	_, err := env.blocks.Start(ctx, "player_1", skill.ID, 45)
	require.NoError(t, err)
	_, _, err = env.blocks.End(ctx, "player_1", "win", "")
	require.NoError(t, err)

	require.NoError(t, env.playerRp.StartSeason(ctx, "player_1", 1, time.Now().AddDate(0, 0, -31)))

	player, err := env.players.GetOrCreate(ctx, "player_1")
	require.NoError(t, err)
	assert.Equal(t, 2, player.CurrentSeason)
	assert.WithinDuration(t, time.Now(), player.SeasonStartAt, time.Minute)

	require.Len(t, player.Skills, 1)
	assert.Equal(t, 24, player.Skills[0].LP) // floor(30 * 0.8)
	assert.Equal(t, 0, player.Skills[0].CurrentStreak)
	assert.Equal(t, 1, player.Skills[0].Wins)
	require.Len(t, player.Skills[0].History, 1)
}

func TestSyncRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	state := &domain.PlayerState{
		ID:            "player_1",
		CurrentSeason: 1,
		SeasonStartAt: time.Now(),
		Settings:      domain.Settings{BlockMinutes: 25, SoundEnabled: true},
		Skills: []domain.Skill{{
			ID:       "skill_local",
			Name:     "Reading",
			Tier:     "bronze",
			Division: 3,
			LP:       55,
			Wins:     5,
			History:  []domain.SessionRecord{},
		}},
		CreatedAt: time.Now(),
	}

	stored, err := env.players.Sync(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.Settings.BlockMinutes)
	require.Len(t, stored.Skills, 1)
	assert.Equal(t, "bronze", stored.Skills[0].Tier)
	assert.Equal(t, 55, stored.Skills[0].LP)
}
