//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"gpu-ca/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the status and parameter panel to the right of the grid view.
type HUD struct {
	current    func() core.Automaton
	panel      *Panel
	width      int
	img        *ebiten.Image
	lastHeight int

	rects        []controlRects
	panelOffsetX int

	pixel *ebiten.Image
}

type controlRects struct {
	top   int
	minus image.Rectangle
	plus  image.Rectangle
}

// NewHUD constructs a HUD following whichever automaton current returns.
func NewHUD(current func() core.Automaton, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{current: current, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	return h
}

// Update refreshes the panel and handles mouse and keyboard adjustments.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	sim := h.current()
	if h.panel == nil || h.panel.Sim() != sim {
		h.panel = NewPanel(sim)
		h.layoutControls()
	}
	h.panel.Refresh()
	h.handleInput()
}

// Draw paints the panel anchored at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int) {
	if h == nil || h.width <= 0 || h.panel == nil {
		return
	}
	height := screen.Bounds().Dy()
	if height <= 0 {
		return
	}
	if h.img == nil || h.lastHeight != height {
		h.img = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.img.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawStats()
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.img, op)
}

func (h *HUD) handleInput() {
	p := h.panel
	if len(p.Controls) == 0 {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		p.Select(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		p.Select(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		p.Adjust(p.Selected, 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		p.Adjust(p.Selected, -1)
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i, r := range h.rects {
		switch {
		case pointInRect(px, my, r.minus):
			p.Selected = i
			p.Adjust(i, -1)
			return
		case pointInRect(px, my, r.plus):
			p.Selected = i
			p.Adjust(i, 1)
			return
		}
	}
}

var (
	titleColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	textColor  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor   = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	selColor   = color.RGBA{R: 250, G: 200, B: 90, A: 255}
)

func (h *HUD) drawStats() {
	face := basicfont.Face7x13
	y := panelPadding + headerBaseline
	for _, line := range Stats(h.panel.Sim()) {
		text.Draw(h.img, line, face, panelPadding, y, textColor)
		y += statsSpacing
	}
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	p := h.panel
	headerY := controlsHeader + headerBaseline
	text.Draw(h.img, p.Title, face, panelPadding, headerY, titleColor)
	if len(p.Controls) == 0 {
		text.Draw(h.img, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, dimColor)
		return
	}
	for i, state := range p.Controls {
		r := h.rects[i]
		labelY := r.top + labelBaseline
		labelColor := textColor
		if i == p.Selected {
			labelColor = selColor
		}
		text.Draw(h.img, state.Control.Label, face, panelPadding, labelY, labelColor)
		valueColor := textColor
		if !state.HasValue() {
			valueColor = dimColor
		}
		bounds := text.BoundString(face, state.Value)
		valueX := r.minus.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.img, state.Value, face, valueX, labelY, valueColor)

		h.drawButton(r.minus, "-", p.CanAdjust(i, -1))
		h.drawButton(r.plus, "+", p.CanAdjust(i, 1))
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.img.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.img, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	h.rects = h.rects[:0]
	for i := range h.panel.Controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.rects = append(h.rects, controlRects{top: top, minus: minus, plus: plus})
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	infoSpacing    = 36
	statsSpacing   = 16
	controlsHeader = panelPadding + 3*statsSpacing + 8
	controlsTop    = controlsHeader + headerBaseline + 14
)
