package verify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"gpu-ca/internal/core"
)

// Mismatch is one cell where two implementations disagree.
type Mismatch struct {
	X, Y      int
	Want, Got float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("(%d,%d) want %.6f got %.6f", m.X, m.Y, m.Want, m.Got)
}

// Report summarises a cell-by-cell comparison.
type Report struct {
	Name       string
	Cells      int
	Failures   int
	MaxDiff    float64
	Mismatches []Mismatch
}

// OK reports whether every cell matched.
func (r Report) OK() bool { return r.Failures == 0 }

func (r Report) String() string {
	return fmt.Sprintf("%s: %d/%d cells differ, max diff %.3g", r.Name, r.Failures, r.Cells, r.MaxDiff)
}

// MaxListed bounds the mismatches kept in a Report.
const MaxListed = 16

// Compare checks want and got cell by cell within an absolute or relative
// tolerance. w is the grid width used to recover coordinates.
func Compare(name string, want, got []float64, w int, tol float64) Report {
	rep := Report{Name: name, Cells: len(want)}
	if len(want) != len(got) {
		rep.Failures = max(len(want), len(got))
		rep.MaxDiff = math.Inf(1)
		return rep
	}
	for i := range want {
		d := math.Abs(want[i] - got[i])
		if d > rep.MaxDiff || math.IsNaN(d) {
			rep.MaxDiff = d
		}
		if scalar.EqualWithinAbsOrRel(want[i], got[i], tol, tol) {
			continue
		}
		rep.Failures++
		if len(rep.Mismatches) < MaxListed {
			rep.Mismatches = append(rep.Mismatches, Mismatch{X: i % w, Y: i / w, Want: want[i], Got: got[i]})
		}
	}
	return rep
}

// Averages returns the direct neighbourhood average of every cell.
func Averages(f Field, p core.LeniaParams) []float64 {
	out := make([]float64, f.W*f.H)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			out[y*f.W+x] = float64(Convolve(f, x, y, p).Average())
		}
	}
	return out
}

// RowAverages returns the average obtained by reducing the row pass.
func RowAverages(f Field, rows []core.Counter, p core.LeniaParams) []float64 {
	lines := core.TotalLines(max(p.Radius, 0))
	out := make([]float64, f.W*f.H)
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			var c core.Counter
			base := core.Index3D(x, y, 0, f.H, lines)
			for z := 0; z < lines; z++ {
				c = c.Add(rows[base+z])
			}
			out[y*f.W+x] = float64(c.Average())
		}
	}
	return out
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Options selects the comparisons Check runs.
type Options struct {
	Tolerance float64
	FFT       bool
}

// Check compares the direct and two-pass paths on f, both on the
// neighbourhood averages and on the updated states, and optionally against
// the FFT reference. A zero tolerance selects 1e-4.
func Check(f Field, p core.LeniaParams, opts Options) []Report {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = 1e-4
	}
	direct := Averages(f, p)
	rows := RowPass(f, p)
	reports := []Report{
		Compare("average direct/two-pass", direct, RowAverages(f, rows, p), f.W, tol),
		// The growth bell amplifies summation-order noise by about 1/sigma.
		Compare("state direct/two-pass", widen(Direct(f, p).V), widen(Reduce(f, rows, p).V), f.W, 10*tol),
	}
	if opts.FFT {
		reports = append(reports, Compare("average direct/fft", direct, FFTAverages(f, p), f.W, max(tol, 1e-4)))
	}
	return reports
}
