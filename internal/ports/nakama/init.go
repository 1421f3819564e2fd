package nakama

import (
	"context"
	"database/sql"

	"coup/internal/app/seatgrant"
	"coup/internal/bot"
	"coup/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	if err := bot.LoadIdentities(cfg.BotIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	}
	if cfg.BotsEnabled {
		bot.ProvisionBots(ctx, nk, logger)
	}

	var grants *seatgrant.Service
	if cfg.SeatGrantsEnabled() {
		grants = seatgrant.NewService(cfg.SeatGrantSecret, cfg.SeatGrantIssuer, cfg.SeatGrantTTL)
	}

	if err := RegisterRPCs(initializer, cfg.MaxPlayers, grants); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameCoup, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(cfg, grants, nil), nil
	}); err != nil {
		return err
	}

	logger.Info("Coup Go module loaded (players %d-%d, bots=%v, seat grants=%v).", cfg.MinPlayers, cfg.MaxPlayers, cfg.BotsEnabled, grants != nil)
	return nil
}
