//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"gpu-ca/internal/app"
	"gpu-ca/internal/core"
	_ "gpu-ca/internal/sims/conway"
	_ "gpu-ca/internal/sims/lenia"
	_ "gpu-ca/internal/sims/leniaop"
	_ "gpu-ca/internal/sims/smoothlife"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	dev, err := app.NewDevice(cfg.Workers)
	if err != nil {
		log.Fatal(err)
	}
	size := core.Size{W: cfg.Width, H: cfg.Height}
	env := core.Env{Device: dev, KernelDir: cfg.KernelDir}
	modes, err := app.NewModes(env, size, app.DefaultModes, app.ParamMap(cfg.Params), cfg.Seed)
	if err != nil {
		log.Fatal(err)
	}
	defer modes.Release()
	if err := modes.Select(app.ModeIndex(cfg.Sim)); err != nil {
		log.Fatal(err)
	}

	game := app.New(modes, dev, cfg.Scale, cfg.Panel)

	ebiten.SetWindowTitle("gpu-ca")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.Panel, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
