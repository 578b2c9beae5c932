package verify

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

// FFTAverages computes every cell's weighted neighbourhood average as a
// circular convolution in the frequency domain: real FFT on rows, complex
// FFT on columns. Window offsets that wrap onto the same cell are folded,
// which matches the toroidal direct window on small grids.
func FFTAverages(f Field, p core.LeniaParams) []float64 {
	w, h := f.W, f.H
	halfC := w/2 + 1
	rowFFT := fourier.NewFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	r := max(p.Radius, 0)
	weights := p.RowWeights()
	kernel := make([]float64, w*h)
	total := 0.0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			wt := float64(weights[dy+r][dx+r])
			kernel[compute.Wrap(dy, h)*w+compute.Wrap(dx, w)] += wt
			total += wt
		}
	}

	grid := make([]float64, w*h)
	for i, v := range f.V {
		grid[i] = float64(v)
	}

	forward := func(spatial []float64) []complex128 {
		freq := make([]complex128, h*halfC)
		for y := 0; y < h; y++ {
			rowFFT.Coefficients(freq[y*halfC:(y+1)*halfC], spatial[y*w:(y+1)*w])
		}
		col := make([]complex128, h)
		for x := 0; x < halfC; x++ {
			for y := 0; y < h; y++ {
				col[y] = freq[y*halfC+x]
			}
			colFFT.Coefficients(col, col)
			for y := 0; y < h; y++ {
				freq[y*halfC+x] = col[y]
			}
		}
		return freq
	}

	gf := forward(grid)
	kf := forward(kernel)
	for i := range gf {
		gf[i] *= kf[i]
	}

	col := make([]complex128, h)
	for x := 0; x < halfC; x++ {
		for y := 0; y < h; y++ {
			col[y] = gf[y*halfC+x]
		}
		colFFT.Sequence(col, col)
		for y := 0; y < h; y++ {
			gf[y*halfC+x] = col[y]
		}
	}
	out := make([]float64, w*h)
	norm := 1 / float64(w*h)
	for y := 0; y < h; y++ {
		rowFFT.Sequence(out[y*w:(y+1)*w], gf[y*halfC:(y+1)*halfC])
		for x := 0; x < w; x++ {
			out[y*w+x] *= norm / total
		}
	}
	return out
}
