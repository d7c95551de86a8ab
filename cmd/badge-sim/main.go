//go:build !(badger2040 || badger2040_w)

// badge-sim runs the badge on simulated hardware and writes every panel
// commit as a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"badgecode-go/app"
	"badgecode-go/platform"
	"badgecode-go/services/display"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

var buttonNames = map[string]types.Button{
	"a":    types.ButtonA,
	"b":    types.ButtonB,
	"c":    types.ButtonC,
	"up":   types.ButtonUp,
	"down": types.ButtonDown,
}

func main() {
	out := flag.String("out", "frames", "directory for PNG snapshots")
	dur := flag.Duration("for", 10*time.Second, "how long to run")
	press := flag.String("press", "", "comma separated buttons to press after boot, e.g. c,up,b")
	online := flag.Bool("online", false, "fetch time and weather over HTTP")
	battery := flag.Bool("battery", false, "boot on battery: one pass then latch release")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	log := logx.New(os.Stderr, logx.ParseLevel(*level))
	slog.SetDefault(log)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Error("sim: output dir", "err", err)
		os.Exit(1)
	}

	board, sim := platform.Open(*online)
	if *battery {
		board.PowerGood = func() bool { return false }
	}
	var frames atomic.Int32
	sim.Panel.OnCommit = func(fb *image1bit.VerticalLSB, c display.Commit) error {
		n := frames.Add(1)
		kind := "partial"
		if c.Full {
			kind = "full"
		}
		name := filepath.Join(*out, fmt.Sprintf("%03d-%s.png", n, kind))
		return writePNG(name, fb)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *dur)
	defer cancel()

	ctx, a, err := app.Boot(ctx, board, log, func(cfg *types.BadgeConfig) {
		if *online {
			cfg.DisableSync = false
			cfg.WifiSSID = "sim"
		}
	})
	if err != nil {
		log.Error("sim: wiring", "err", err)
		os.Exit(1)
	}

	go pressAll(ctx, sim, *press, log)
	_ = a.Run(ctx)
	log.Info("sim: done", "frames", frames.Load(), "dir", *out, "latch", sim.Latch.On())
}

func pressAll(ctx context.Context, sim *platform.Sim, list string, log *slog.Logger) {
	if list == "" {
		return
	}
	// Let the boot redraw land first.
	time.Sleep(time.Second)
	for _, name := range strings.Split(list, ",") {
		b, ok := buttonNames[strings.TrimSpace(strings.ToLower(name))]
		if !ok {
			log.Warn("sim: unknown button", "name", name)
			continue
		}
		log.Info("sim: press", "button", b.String())
		sim.Pins[b].Press(ctx, 150*time.Millisecond)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func writePNG(name string, img *image1bit.VerticalLSB) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
