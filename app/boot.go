package app

import (
	"context"
	"log/slog"

	"badgecode-go/platform"
	"badgecode-go/services/config"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

// Boot resolves the board's embedded configuration and wires an App. A
// rejected configuration falls back to offline defaults so the badge still
// draws its screen. adjust, when non-nil, edits the resolved configuration
// before wiring. The returned ctx carries the device ID.
func Boot(ctx context.Context, board *platform.Board, log *slog.Logger, adjust func(*types.BadgeConfig)) (context.Context, *App, error) {
	log = logx.Or(log)
	ctx = config.WithDevice(ctx, board.Device)
	cfg, err := config.Resolve(ctx)
	if err != nil {
		log.Error("app: config rejected, running offline defaults", "device", board.Device, "err", err)
		cfg = types.BadgeConfig{DisableSync: true}
		cfg.Defaults()
	}
	if adjust != nil {
		adjust(&cfg)
	}
	a, err := New(cfg, board, log)
	return ctx, a, err
}
