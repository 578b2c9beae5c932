package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/integrii/flaggy"

	"gpu-ca/internal/app"
	"gpu-ca/internal/core"
	_ "gpu-ca/internal/sims/conway"
	_ "gpu-ca/internal/sims/lenia"
	_ "gpu-ca/internal/sims/leniaop"
	_ "gpu-ca/internal/sims/smoothlife"
	"gpu-ca/internal/view"
)

func main() {
	cfg := app.NewConfig()
	cfg.Width, cfg.Height = 96, 48
	var logPath string

	flaggy.SetName("ca-term")
	flaggy.SetDescription("Terminal viewer for the cellular automata")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&cfg.Sim, "s", "sim", "Initial mode ["+strings.Join(app.DefaultModes, "|")+"]")
	flaggy.Int(&cfg.Width, "x", "width", "Grid width")
	flaggy.Int(&cfg.Height, "y", "height", "Grid height")
	flaggy.Int(&cfg.TPS, "t", "tps", "Generations per second while running")
	flaggy.Int64(&cfg.Seed, "", "seed", "Noise seed")
	flaggy.String(&cfg.KernelDir, "k", "kernels", "Directory overriding the embedded kernel sources")
	flaggy.Int(&cfg.Workers, "w", "workers", "Compute worker goroutines (0 = GOMAXPROCS)")
	flaggy.String(&cfg.Params, "p", "params", "Comma separated key=value parameters")
	flaggy.String(&logPath, "l", "log", "Write logs to this file")
	flaggy.Parse()

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		core.SetLogger(slog.New(slog.NewTextHandler(f, nil)))
	}

	dev, err := app.NewDevice(cfg.Workers)
	if err != nil {
		log.Fatal(err)
	}
	env := core.Env{Device: dev, KernelDir: cfg.KernelDir}
	modes, err := app.NewModes(env, core.Size{W: cfg.Width, H: cfg.Height}, app.DefaultModes, app.ParamMap(cfg.Params), cfg.Seed)
	if err != nil {
		log.Fatal(err)
	}
	defer modes.Release()
	if err := modes.Select(app.ModeIndex(cfg.Sim)); err != nil {
		log.Fatal(err)
	}

	t, err := view.NewTerminal(modes, dev, cfg.TPS)
	if err != nil {
		log.Fatal(err)
	}
	if err := t.Start(); err != nil {
		log.Fatal(err)
	}
}
