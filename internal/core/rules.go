package core

import "math"

// GaussBell evaluates exp(-((x-m)/s)^2 / 2).
func GaussBell(x, m, s float32) float32 {
	d := (x - m) / s
	return float32(math.Exp(float64(-d * d / 2)))
}

// EuclideanDistance returns the length of (x, y).
func EuclideanDistance(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}

// LeniaParams are the live-tunable values of the continuous variants.
type LeniaParams struct {
	Radius int
	Dt     float32
	Mu     float32
	Sigma  float32
	Rho    float32
	Omega  float32
}

// DefaultLeniaParams returns the stock Lenia parameters.
func DefaultLeniaParams() LeniaParams {
	return LeniaParams{Radius: 15, Dt: 5, Mu: 0.14, Sigma: 0.014, Rho: 0.5, Omega: 0.15}
}

// Weight returns the kernel weight of the offset (dx, dy) for the given
// radius. A zero radius collapses the window to its centre.
func (p LeniaParams) Weight(dx, dy int) float32 {
	norm := float32(0)
	if p.Radius > 0 {
		norm = EuclideanDistance(float32(dx), float32(dy)) / float32(p.Radius)
	}
	return GaussBell(norm, p.Rho, p.Omega)
}

// Growth maps a neighbourhood average to [-1, 1].
func (p LeniaParams) Growth(avg float32) float32 {
	return 2*GaussBell(avg, p.Mu, p.Sigma) - 1
}

// Integrate applies one Lenia step to old given its neighbourhood average.
func (p LeniaParams) Integrate(old, avg float32) float32 {
	dt := p.Dt
	if dt == 0 {
		dt = 1
	}
	return Clamp01(old + p.Growth(avg)/dt)
}

// RowWeights precomputes the kernel weights of every offset in the window,
// indexed [dy+r][dx+r].
func (p LeniaParams) RowWeights() [][]float32 {
	r := max(p.Radius, 0)
	rows := make([][]float32, TotalLines(r))
	for dy := -r; dy <= r; dy++ {
		row := make([]float32, TotalLines(r))
		for dx := -r; dx <= r; dx++ {
			row[dx+r] = p.Weight(dx, dy)
		}
		rows[dy+r] = row
	}
	return rows
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// LifeRule applies B3/S23 to a cell given its live Moore neighbours.
func LifeRule(alive bool, neighbours int) bool {
	if alive {
		return neighbours == 2 || neighbours == 3
	}
	return neighbours == 3
}

// SmoothLifeParams are the birth/death intervals and sigmoid widths of the
// discrete-time SmoothLife transition.
type SmoothLifeParams struct {
	B1, B2 float32
	D1, D2 float32
	AlphaN float32
	AlphaM float32
}

// DefaultSmoothLifeParams returns the stock transition parameters.
func DefaultSmoothLifeParams() SmoothLifeParams {
	return SmoothLifeParams{B1: 0.278, B2: 0.365, D1: 0.267, D2: 0.445, AlphaN: 0.028, AlphaM: 0.147}
}

func sigmoid(x, a, alpha float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-(x-a)*4/alpha))))
}

// Transition returns the new state for annulus filling n and inner filling m.
func (p SmoothLifeParams) Transition(n, m float32) float32 {
	alive := sigmoid(m, 0.5, p.AlphaM)
	lo := p.B1*(1-alive) + p.D1*alive
	hi := p.B2*(1-alive) + p.D2*alive
	return sigmoid(n, lo, p.AlphaN) * (1 - sigmoid(n, hi, p.AlphaN))
}
