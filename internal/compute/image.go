package compute

import "fmt"

// Image is a kernel's view of a bound RGBA8 surface. Cell state lives in the
// alpha channel; RGB holds the constant "alive" colour.
type Image struct {
	W, H   int
	Pix    []byte
	access Access
}

// Wrap maps v onto [0, n) with toroidal wrap-around.
func Wrap(v, n int) int {
	return (v%n + n) % n
}

// Alpha returns the state of cell (x, y) normalised to [0, 1].
func (im *Image) Alpha(x, y int) float32 {
	if im.access == WriteOnly {
		panic(accessViolation{op: "read", access: im.access})
	}
	return float32(im.Pix[(y*im.W+x)*4+3]) / 255
}

// AlphaWrap reads a cell after wrapping both coordinates onto the torus.
func (im *Image) AlphaWrap(x, y int) float32 {
	return im.Alpha(Wrap(x, im.W), Wrap(y, im.H))
}

// SetAlpha stores v, clamped to [0, 1] and rounded to the nearest byte.
func (im *Image) SetAlpha(x, y int, v float32) {
	if im.access == ReadOnly {
		panic(accessViolation{op: "write", access: im.access})
	}
	i := (y*im.W + x) * 4
	im.Pix[i+0] = 255
	im.Pix[i+1] = 255
	im.Pix[i+2] = 255
	im.Pix[i+3] = Quantize(v)
}

// Quantize converts a normalised value to the stored byte.
func Quantize(v float32) uint8 {
	switch {
	case v != v || v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

type accessViolation struct {
	op     string
	access Access
}

func (a accessViolation) Error() string {
	return fmt.Sprintf("%s of %s image", a.op, a.access)
}
