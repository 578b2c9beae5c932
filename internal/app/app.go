//go:build ebiten

package app

import (
	"image/color"
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	"gpu-ca/internal/render"
	"gpu-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game adapts the resident automata to the ebiten.Game interface.
type Game struct {
	modes   *Modes
	dev     compute.Device
	hud     *ui.HUD
	overlay *ui.Overlay

	painter *render.GridPainter
	surface []byte

	onColor  color.Color
	offColor color.Color

	scale    int
	panel    int
	paused   bool
	tickOnce bool
}

// New constructs a Game drawing modes read back from dev.
func New(modes *Modes, dev compute.Device, scale, panel int) *Game {
	if scale <= 0 {
		scale = 1
	}
	size := modes.Current().Size()
	g := &Game{
		modes:    modes,
		dev:      dev,
		overlay:  ui.NewOverlay(scale),
		painter:  render.NewGridPainter(size.W, size.H),
		surface:  make([]byte, size.Cells()*4),
		onColor:  color.White,
		offColor: color.Black,
		scale:    scale,
		panel:    panel,
	}
	g.hud = ui.NewHUD(modes.Current, panel)
	return g
}

// Reset reseeds the active automaton.
func (g *Game) Reset(seed int64) {
	if err := g.modes.Reset(seed); err != nil {
		core.Logger().Warn("reset failed", "err", err)
	}
	g.tickOnce = false
}

// Update handles per-frame logic and advances the active automaton.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.modes.Seed())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.switchMode(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.switchMode(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.modes.Recharge(); err != nil {
			core.Logger().Warn("kernel recharge failed", "err", err)
		}
	}

	g.overlay.Update()
	g.hud.Update(g.gridWidth())

	if !g.paused || g.tickOnce {
		// Failures are logged by the automaton; the previous frame stays visible.
		_ = g.modes.Update()
		g.tickOnce = false
	}
	return nil
}

func (g *Game) switchMode(delta int) {
	if err := g.modes.Switch(delta); err != nil {
		core.Logger().Warn("mode switch failed", "err", err)
	}
}

// Draw renders the latest generation and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	size := g.modes.Current().Size()
	// On a failed read the surface keeps the last frame that was read.
	_ = g.dev.ReadSurface(g.modes.Current().CurrentTexture(), g.surface)
	g.painter.Blit(screen, g.surface, g.onColor, g.offColor, g.scale)
	g.overlay.Draw(screen, g.surface, size.W, size.H)
	g.hud.Draw(screen, g.gridWidth())
}

func (g *Game) gridWidth() int { return g.modes.Current().Size().W * g.scale }

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.modes.Current().Size()
	return s.W*g.scale + g.panel, s.H * g.scale
}
