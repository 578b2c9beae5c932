package render

import (
	"image"
	"image/color"
)

// Shade converts device surface bytes (state in alpha) into opaque
// display pixels, blending from off to on by the cell state.
func Shade(buf []byte, surface []byte, on, off color.Color) {
	rOn, gOn, bOn, _ := on.RGBA()
	rOff, gOff, bOff, _ := off.RGBA()
	for i := 0; i+3 < len(surface); i += 4 {
		a := uint32(surface[i+3])
		buf[i+0] = mix(rOff, rOn, a)
		buf[i+1] = mix(gOff, gOn, a)
		buf[i+2] = mix(bOff, bOn, a)
		buf[i+3] = 255
	}
}

func mix(lo, hi, a uint32) uint8 {
	lo >>= 8
	hi >>= 8
	return uint8((lo*(255-a) + hi*a + 127) / 255)
}

// Image renders a surface into an RGBA image.
func Image(w, h int, surface []byte, on, off color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Shade(img.Pix, surface, on, off)
	return img
}

// ramp orders glyphs from empty to full.
const ramp = " .:-=+*#%@"

// Glyph maps a cell state to a character for text output.
func Glyph(alpha uint8) byte {
	return ramp[int(alpha)*(len(ramp)-1)/255]
}

// Downsample returns the average alpha of each cols x rows block of a w x h
// surface, for viewers smaller than the grid.
func Downsample(surface []byte, w, h, cols, rows int) []uint8 {
	if cols <= 0 || rows <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	out := make([]uint8, cols*rows)
	for r := 0; r < rows; r++ {
		y0, y1 := r*h/rows, max((r+1)*h/rows, r*h/rows+1)
		for c := 0; c < cols; c++ {
			x0, x1 := c*w/cols, max((c+1)*w/cols, c*w/cols+1)
			sum, n := 0, 0
			for y := y0; y < min(y1, h); y++ {
				for x := x0; x < min(x1, w); x++ {
					sum += int(surface[(y*w+x)*4+3])
					n++
				}
			}
			if n > 0 {
				out[r*cols+c] = uint8(sum / n)
			}
		}
	}
	return out
}
