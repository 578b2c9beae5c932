package leniaop

import (
	"gpu-ca/internal/core"
	"gpu-ca/internal/verify"
)

// CheckAccumulator reads back the counters written by the last row pass and
// the surface it read from, and compares every cell's reduced average with
// the direct window convolution. Call it right after a successful Update.
func (l *LeniaOp) CheckAccumulator(tol float64) (verify.Report, error) {
	if !l.grid.Ready() || l.grid.Generation() == 0 {
		return verify.Report{}, core.ErrNotInitialized
	}
	size := l.grid.Size()
	input, err := l.grid.PreviousAlpha()
	if err != nil {
		return verify.Report{}, err
	}
	depth := l.Depth()
	raw := make([]float32, size.Cells()*depth*core.CounterWords)
	if err := l.dev.ReadBuffer(l.acc, 0, raw); err != nil {
		return verify.Report{}, err
	}

	p := l.cfg.Params
	lines := core.TotalLines(p.Radius)
	field := verify.FieldFromAlpha(size.W, size.H, input)
	got := make([]float64, size.Cells())
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			var c core.Counter
			base := core.Index3D(x, y, 0, size.H, depth)
			for z := 0; z < lines; z++ {
				c = c.Add(core.LoadCounter(raw, base+z))
			}
			got[size.Index(x, y)] = float64(c.Average())
		}
	}
	if tol <= 0 {
		tol = 1e-4
	}
	return verify.Compare("accumulator/direct", verify.Averages(field, p), got, size.W, tol), nil
}
