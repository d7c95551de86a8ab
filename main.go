//go:build badger2040 || badger2040_w

// Firmware entry point. Host builds run cmd/badge-sim or cmd/badge-pi.
package main

import (
	"context"
	"log/slog"

	"badgecode-go/app"
	"badgecode-go/platform"
	"badgecode-go/x/logx"
)

func main() {
	board := platform.Open()
	log := logx.New(board.Log, slog.LevelInfo)
	slog.SetDefault(log)
	log.Info("main: boot", "device", board.Device)

	ctx, a, err := app.Boot(context.Background(), board, log, nil)
	if err != nil {
		log.Error("main: wiring failed", "err", err)
		// Drop the latch so a battery badge does not drain itself.
		board.Latch.Low()
		select {}
	}
	if err := a.Run(ctx); err != nil {
		log.Warn("main: stopped", "err", err)
	}
	select {}
}
