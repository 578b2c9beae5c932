//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws optional debugging visuals on top of the grid.
type Overlay struct {
	scale        int
	showActivity bool
	activity     Activity
	maskImg      *ebiten.Image
	maskBuf      []byte
}

// NewOverlay constructs a new overlay for a grid drawn at scale.
func NewOverlay(scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{scale: scale}
}

// Update toggles the activity view with the 1 key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showActivity = !o.showActivity
		o.activity.Forget()
	}
}

// Enabled reports whether the overlay wants surface pixels each frame.
func (o *Overlay) Enabled() bool { return o.showActivity }

// Draw tints cells that changed since the previous frame. surface holds the
// RGBA bytes of a w x h grid.
func (o *Overlay) Draw(screen *ebiten.Image, surface []byte, w, h int) {
	if !o.showActivity || w <= 0 || h <= 0 || len(surface) != w*h*4 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != w || o.maskImg.Bounds().Dy() != h {
		o.maskImg = ebiten.NewImage(w, h)
		o.maskBuf = make([]byte, 4*w*h)
	}
	delta := o.activity.Observe(surface)
	tintMask(o.maskBuf, delta, color.RGBA{R: 90, G: 220, B: 120}, color.RGBA{R: 255, G: 120, B: 40})
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}
