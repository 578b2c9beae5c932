// Package verify holds host reference implementations of the Lenia update
// and compares the direct convolution with the two-pass row reduction and
// an FFT circular convolution.
package verify

import (
	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

// Field is a host-side grid of normalised cell states.
type Field struct {
	W, H int
	V    []float32
}

// NewField returns a zero field.
func NewField(w, h int) Field {
	return Field{W: w, H: h, V: make([]float32, w*h)}
}

// FieldFromAlpha converts alpha bytes into a field.
func FieldFromAlpha(w, h int, alpha []uint8) Field {
	f := NewField(w, h)
	for i, a := range alpha {
		f.V[i] = float32(a) / 255
	}
	return f
}

// At reads (x, y) with toroidal wrap.
func (f Field) At(x, y int) float32 {
	return f.V[compute.Wrap(y, f.H)*f.W+compute.Wrap(x, f.W)]
}

// Alpha quantises the field to bytes.
func (f Field) Alpha() []uint8 {
	out := make([]uint8, len(f.V))
	for i, v := range f.V {
		out[i] = compute.Quantize(v)
	}
	return out
}

// Convolve returns the weighted window sum around (x, y), scanning rows
// outer and columns inner.
func Convolve(f Field, x, y int, p core.LeniaParams) core.Counter {
	return convolve(f, x, y, max(p.Radius, 0), p.RowWeights())
}

func convolve(f Field, x, y, r int, weights [][]float32) core.Counter {
	var c core.Counter
	for dy := -r; dy <= r; dy++ {
		row := weights[dy+r]
		for dx := -r; dx <= r; dx++ {
			w := row[dx+r]
			c.Live += f.At(x+dx, y+dy) * w
			c.Count += w
		}
	}
	return c
}

// Direct runs one Lenia step using the full window per cell.
func Direct(f Field, p core.LeniaParams) Field {
	out := NewField(f.W, f.H)
	r := max(p.Radius, 0)
	weights := p.RowWeights()
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			avg := convolve(f, x, y, r, weights).Average()
			out.V[y*f.W+x] = p.Integrate(f.V[y*f.W+x], avg)
		}
	}
	return out
}

// RowPass computes one Counter per cell per row offset, covering all
// 2r+1 offsets. The result is laid out with core.Index3D and depth 2r+1.
func RowPass(f Field, p core.LeniaParams) []core.Counter {
	r := max(p.Radius, 0)
	lines := core.TotalLines(r)
	weights := p.RowWeights()
	out := make([]core.Counter, f.W*f.H*lines)
	for x := 0; x < f.W; x++ {
		for y := 0; y < f.H; y++ {
			for z := 0; z < lines; z++ {
				row := weights[z]
				var c core.Counter
				for dx := -r; dx <= r; dx++ {
					w := row[dx+r]
					c.Live += f.At(x+dx, y+z-r) * w
					c.Count += w
				}
				out[core.Index3D(x, y, z, f.H, lines)] = c
			}
		}
	}
	return out
}

// Reduce sums the row counters of each cell and applies the growth update.
func Reduce(f Field, rows []core.Counter, p core.LeniaParams) Field {
	lines := core.TotalLines(max(p.Radius, 0))
	out := NewField(f.W, f.H)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var c core.Counter
			base := core.Index3D(x, y, 0, f.H, lines)
			for z := 0; z < lines; z++ {
				c = c.Add(rows[base+z])
			}
			out.V[y*f.W+x] = p.Integrate(f.V[y*f.W+x], c.Average())
		}
	}
	return out
}

// Separable runs one Lenia step as a row pass followed by a reduction.
func Separable(f Field, p core.LeniaParams) Field {
	return Reduce(f, RowPass(f, p), p)
}
