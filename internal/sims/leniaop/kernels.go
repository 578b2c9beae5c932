package leniaop

import (
	"embed"
	"fmt"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

//go:embed kernels/*.comp
var kernelFS embed.FS

const (
	rowsSource   = "kernels/lenia_op_step1.comp"
	reduceSource = "kernels/lenia_op_step2.comp"
)

// Kernels returns the kernel entries used by the separable automaton.
func Kernels() map[string]compute.Kernel {
	req := []string{"PREV_IMG_BIND", "CURR_IMG_BIND", "COUNTER_BIND", "MAX_RADIUS", "C_WIDTH", "C_HEIGHT"}
	return map[string]compute.Kernel{
		"leniaop.rows":   {Entry: rowsKernel, Requires: req},
		"leniaop.reduce": {Entry: reduceKernel, Requires: req},
	}
}

// accumulator resolves the counter buffer and checks it can hold every
// cell at the maximum depth.
func accumulator(env *compute.Env, w, h int) ([]float32, int, error) {
	acc, err := env.Buffer("COUNTER_BIND")
	if err != nil {
		return nil, 0, err
	}
	maxR, err := env.DefineInt("MAX_RADIUS")
	if err != nil {
		return nil, 0, err
	}
	depth := core.TotalLines(maxR)
	if need := w * h * depth * core.CounterWords; len(acc) < need {
		return nil, 0, fmt.Errorf("accumulator holds %d words, need %d", len(acc), need)
	}
	return acc, depth, nil
}

func uniforms(env *compute.Env) (core.LeniaParams, error) {
	p := core.LeniaUniforms(env)
	maxR, err := env.DefineInt("MAX_RADIUS")
	if err != nil {
		return p, err
	}
	if p.Radius > maxR {
		return p, fmt.Errorf("%w: %d exceeds MAX_RADIUS %d", core.ErrRadiusRange, p.Radius, maxR)
	}
	p.Radius = max(p.Radius, 0)
	return p, nil
}

func rowsKernel(env *compute.Env) (compute.Body, error) {
	prev, err := env.Image("PREV_IMG_BIND")
	if err != nil {
		return nil, err
	}
	acc, depth, err := accumulator(env, prev.W, prev.H)
	if err != nil {
		return nil, err
	}
	p, err := uniforms(env)
	if err != nil {
		return nil, err
	}
	r := p.Radius
	lines := core.TotalLines(r)
	weights := p.RowWeights()
	return func(x, y, z int) {
		if x >= prev.W || y >= prev.H || z >= lines {
			return
		}
		row := weights[z]
		ny := compute.Wrap(y+z-r, prev.H)
		var c core.Counter
		for dx := -r; dx <= r; dx++ {
			w := row[dx+r]
			c.Live += prev.Alpha(compute.Wrap(x+dx, prev.W), ny) * w
			c.Count += w
		}
		c.Store(acc, core.Index3D(x, y, z, prev.H, depth))
	}, nil
}

func reduceKernel(env *compute.Env) (compute.Body, error) {
	prev, err := env.Image("PREV_IMG_BIND")
	if err != nil {
		return nil, err
	}
	curr, err := env.Image("CURR_IMG_BIND")
	if err != nil {
		return nil, err
	}
	acc, depth, err := accumulator(env, prev.W, prev.H)
	if err != nil {
		return nil, err
	}
	p, err := uniforms(env)
	if err != nil {
		return nil, err
	}
	lines := core.TotalLines(p.Radius)
	return func(x, y, _ int) {
		if x >= prev.W || y >= prev.H {
			return
		}
		var c core.Counter
		base := core.Index3D(x, y, 0, prev.H, depth)
		for z := 0; z < lines; z++ {
			c = c.Add(core.LoadCounter(acc, base+z))
		}
		curr.SetAlpha(x, y, p.Integrate(prev.Alpha(x, y), c.Average()))
	}, nil
}
