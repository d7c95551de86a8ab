//go:build linux && !(badger2040 || badger2040_w)

// badge-pi runs the badge on a Raspberry Pi with a Waveshare 2.13" V4
// e-paper HAT. It is always on mains power, so it stays resident.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"

	"badgecode-go/app"
	"badgecode-go/platform"
	"badgecode-go/services/config"
	"badgecode-go/services/storage"
	"badgecode-go/x/logx"
)

// piExtras are the Pi-only keys of the config file; the badge keys sit
// alongside them at the top level.
type piExtras struct {
	StateFile string            `yaml:"state_file"`
	LogLevel  string            `yaml:"log_level"`
	Buttons   map[string]string `yaml:"buttons"`
}

func main() {
	path := flag.String("config", "/etc/badge.yaml", "YAML config file")
	flag.Parse()

	log := logx.New(os.Stderr, slog.LevelInfo)
	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Error("pi: read config", "path", *path, "err", err)
		os.Exit(1)
	}
	cfg, err := config.LoadYAML(raw)
	if err != nil {
		log.Error("pi: config", "err", err)
		os.Exit(1)
	}
	extras := piExtras{StateFile: "/var/lib/badge/state.bin"}
	if err := yaml.Unmarshal(raw, &extras); err != nil {
		log.Error("pi: config extras", "err", err)
		os.Exit(1)
	}
	log = logx.New(os.Stderr, logx.ParseLevel(extras.LogLevel))
	slog.SetDefault(log)

	if _, err := host.Init(); err != nil {
		log.Error("pi: host init", "err", err)
		os.Exit(1)
	}
	port, err := spireg.Open("")
	if err != nil {
		log.Error("pi: spi", "err", err)
		os.Exit(1)
	}
	defer port.Close()

	opts := waveshare2in13v4.EPD2in13v4
	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		log.Error("pi: hat", "err", err)
		os.Exit(1)
	}
	defer dev.Halt()

	board := &platform.Board{
		Device:    "pi",
		Panel:     newHatPanel(dev),
		RTC:       &systemRTC{},
		Radio:     platform.NewHTTPRadio(0),
		Region:    &storage.FileRegion{Path: extras.StateFile, Len: 4096},
		Buttons:   openButtons(extras.Buttons),
		Latch:     &platform.SimOutput{},
		PowerGood: func() bool { return true },
		LED:       &platform.SimOutput{},
		Log:       os.Stderr,
	}

	a, err := app.New(cfg, board, log)
	if err != nil {
		log.Error("pi: wiring", "err", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Warn("pi: stopped", "err", err)
	}
	_ = a.Display.Shutdown(context.Background())
}
