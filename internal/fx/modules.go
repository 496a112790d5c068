package fx

import (
	"focusrank/internal/config"
	"focusrank/internal/database"
	"focusrank/internal/logger"
	"focusrank/internal/rank"
	"focusrank/internal/repository"
	"focusrank/internal/server"
	"focusrank/internal/service"

	"go.uber.org/fx"
)

func ProvideLadder() rank.Ladder {
	return rank.Default
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideLadder),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewSkillRepository),
	fx.Provide(repository.NewSessionRepository),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSkillService),
	fx.Provide(service.NewBlockService),
	// server
	fx.Provide(server.New),
)
