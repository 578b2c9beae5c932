//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads device surface bytes into an ebiten image.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter creates a painter for a w x h grid.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{
		w:   w,
		h:   h,
		img: ebiten.NewImage(w, h),
		buf: make([]byte, w*h*4),
	}
}

// Blit shades surface and draws it onto dst scaled by scale.
func (p *GridPainter) Blit(dst *ebiten.Image, surface []byte, on, off color.Color, scale int) {
	if len(surface) != len(p.buf) {
		return
	}
	Shade(p.buf, surface, on, off)
	p.img.WritePixels(p.buf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(p.img, op)
}
