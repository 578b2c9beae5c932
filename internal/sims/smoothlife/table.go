package smoothlife

import (
	"fmt"
	"math"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

// EdgePolicy decides how spans that leave the grid are stored.
type EdgePolicy int

const (
	// EdgeWrap folds spans onto the torus.
	EdgeWrap EdgePolicy = iota
	// EdgeClamp pins span ends to the grid border.
	EdgeClamp
)

func (e EdgePolicy) String() string {
	if e == EdgeClamp {
		return "clamp"
	}
	return "wrap"
}

// ParseEdgePolicy maps "wrap" or "clamp" to a policy.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch s {
	case "wrap":
		return EdgeWrap, nil
	case "clamp":
		return EdgeClamp, nil
	}
	return EdgeWrap, fmt.Errorf("unknown edge policy %q", s)
}

// Span is one horizontal run of cells, both ends inclusive.
type Span struct {
	X0, X1, Y int
}

// Len returns the number of cells walked for a grid of width w.
func (s Span) Len(w int) int {
	return (s.X1-s.X0+w)%w + 1
}

// Layout describes the table geometry for a pair of radii.
type Layout struct {
	Size          core.Size
	Inner, Outer  float64
	NearNeighbors int
	Depth         int
}

// NewLayout computes the slice counts for the given radii. Slices come in
// start/end pairs, one pair per scan line of each disk.
func NewLayout(size core.Size, inner, outer float64) (Layout, error) {
	if inner < 1 || outer <= inner {
		return Layout{}, fmt.Errorf("radii inner=%v outer=%v: want 1 <= inner < outer", inner, outer)
	}
	near := 2 * core.TotalLines(int(inner))
	return Layout{
		Size:          size,
		Inner:         inner,
		Outer:         outer,
		NearNeighbors: near,
		Depth:         near + 2*core.TotalLines(int(outer)),
	}, nil
}

// Words is the number of float32 words the table occupies.
func (l Layout) Words() int { return l.Size.Cells() * l.Depth * 2 }

// Defines returns the preamble constants describing the layout.
func (l Layout) Defines() []compute.Define {
	return []compute.Define{
		compute.FloatDefine("I_RADIUS", l.Inner),
		compute.FloatDefine("O_RADIUS", l.Outer),
		compute.IntDefine("NEAR_NEIGHBORS", l.NearNeighbors),
		compute.IntDefine("C_DEPTH", l.Depth),
	}
}

// BuildTable fills the per-cell span table. Each slice holds an (x, y)
// coordinate; slices d and d+1 are the start and end of one span. The first
// NearNeighbors slices cover the inner disk, the rest the outer disk.
// Every stored coordinate lies within [0, dim-1].
func BuildTable(l Layout, policy EdgePolicy) []float32 {
	table := make([]float32, l.Words())
	w, h := l.Size.W, l.Size.H
	for col := 0; col < w; col++ {
		for row := 0; row < h; row++ {
			d := 0
			for _, radius := range []float64{l.Inner, l.Outer} {
				r := int(radius)
				for y := -r; y <= r; y++ {
					xoff := int(math.Floor(math.Sqrt(radius*radius - float64(y*y))))
					s := span(col, row, xoff, y, l.Size, policy)
					i := core.Index3D(col, row, d, h, l.Depth) * 2
					table[i], table[i+1] = float32(s.X0), float32(s.Y)
					table[i+2], table[i+3] = float32(s.X1), float32(s.Y)
					d += 2
				}
			}
		}
	}
	return table
}

func span(col, row, xoff, y int, size core.Size, policy EdgePolicy) Span {
	s := Span{X0: col - xoff, X1: col + xoff, Y: row + y}
	if policy == EdgeClamp {
		s.X0 = clamp(s.X0, size.W-1)
		s.X1 = clamp(s.X1, size.W-1)
		s.Y = clamp(s.Y, size.H-1)
		return s
	}
	if 2*xoff+1 >= size.W {
		s.X0, s.X1 = 0, size.W-1
	} else {
		s.X0 = compute.Wrap(s.X0, size.W)
		s.X1 = compute.Wrap(s.X1, size.W)
	}
	s.Y = compute.Wrap(s.Y, size.H)
	return s
}

func clamp(v, hi int) int {
	return min(max(v, 0), hi)
}

// SpanAt decodes the span stored at slice pair d of cell (col, row).
func SpanAt(table []float32, l Layout, col, row, d int) Span {
	i := core.Index3D(col, row, d, l.Size.H, l.Depth) * 2
	return Span{X0: int(table[i]), Y: int(table[i+1]), X1: int(table[i+2])}
}
