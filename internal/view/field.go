package view

import (
	"bytes"

	"github.com/logrusorgru/aurora"

	"gpu-ca/internal/render"
)

// Painter turns a cell state into the text drawn for it.
type Painter func(alpha uint8) string

// PlainPainter draws states with the density ramp only.
func PlainPainter(alpha uint8) string { return string(render.Glyph(alpha)) }

// ColorPainter draws states with the density ramp, highlighting strong cells.
func ColorPainter(alpha uint8) string {
	g := string(render.Glyph(alpha))
	switch {
	case alpha == 0:
		return g
	case alpha >= 192:
		return aurora.Green(g).Bold().String()
	case alpha >= 64:
		return aurora.Green(g).String()
	default:
		return aurora.Colorize(g, aurora.CyanFg).String()
	}
}

// Field renders a w x h RGBA surface into a cols x rows block of text,
// averaging grid cells when the grid is larger than the view.
func Field(surface []byte, w, h, cols, rows int, paint Painter) string {
	if cols > w {
		cols = w
	}
	if rows > h {
		rows = h
	}
	levels := render.Downsample(surface, w, h, cols, rows)
	if levels == nil {
		return ""
	}
	var b bytes.Buffer
	for r := 0; r < rows; r++ {
		if r != 0 {
			b.WriteByte('\n')
		}
		for c := 0; c < cols; c++ {
			b.WriteString(paint(levels[r*cols+c]))
		}
	}
	return b.String()
}
