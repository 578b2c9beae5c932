package ui

import (
	"image/color"
	"math"
)

// Activity tracks per-cell change between consecutive observed frames.
type Activity struct {
	prev  []uint8
	delta []float32
}

// Observe records the alpha channel of an RGBA surface and returns the
// signed change of each cell since the previous observation, in [-1, 1].
// The first observation, or one after a size change, reports no change.
func (a *Activity) Observe(surface []byte) []float32 {
	n := len(surface) / 4
	if len(a.prev) != n {
		a.prev = make([]uint8, n)
		a.delta = make([]float32, n)
		for i := range a.prev {
			a.prev[i] = surface[i*4+3]
		}
		return a.delta
	}
	for i := 0; i < n; i++ {
		v := surface[i*4+3]
		a.delta[i] = float32(int(v)-int(a.prev[i])) / 255
		a.prev[i] = v
	}
	return a.delta
}

// Forget drops the stored frame so the next observation starts fresh.
func (a *Activity) Forget() { a.prev = nil }

const (
	maxAlpha      = 140.0
	glowBase      = 0.35
	glowRange     = 0.65
	intensityBias = 0.75
)

// tintMask writes translucent pixels into buf: growing cells use grow and
// decaying ones decay, with opacity following the magnitude of change.
func tintMask(buf []byte, delta []float32, grow, decay color.RGBA) {
	for i, d := range delta {
		base := i * 4
		tint := grow
		if d < 0 {
			tint = decay
		}
		intensity := clamp01(math.Abs(float64(d)))
		if intensity == 0 {
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 0, 0, 0, 0
			continue
		}
		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		glow := glowBase + glowRange*math.Sqrt(intensity)
		// Premultiplied for ebiten.
		a := alpha / 255
		buf[base+0] = scaleColorComponent(tint.R, glow*a)
		buf[base+1] = scaleColorComponent(tint.G, glow*a)
		buf[base+2] = scaleColorComponent(tint.B, glow*a)
		buf[base+3] = uint8(alpha)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
