package smoothlife

import (
	"embed"
	"fmt"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

//go:embed kernels/*.comp
var kernelFS embed.FS

const (
	ringsSource = "kernels/smoothlife_step1.comp"
	stepSource  = "kernels/smoothlife_step2.comp"
)

// Uniform names of the transition parameters.
const (
	uniformB1     = "u_b1"
	uniformB2     = "u_b2"
	uniformD1     = "u_d1"
	uniformD2     = "u_d2"
	uniformAlphaN = "u_alpha_n"
	uniformAlphaM = "u_alpha_m"
)

// Kernels returns the kernel entries used by the annular automaton.
func Kernels() map[string]compute.Kernel {
	return map[string]compute.Kernel{
		"smoothlife.rings": {
			Entry:    ringsKernel,
			Requires: []string{"PREV_IMG_BIND", "COUNTER_BIND", "INDICES_BIND", "NEAR_NEIGHBORS", "C_DEPTH"},
		},
		"smoothlife.step": {
			Entry:    stepKernel,
			Requires: []string{"PREV_IMG_BIND", "CURR_IMG_BIND", "COUNTER_BIND"},
		},
	}
}

func rings(env *compute.Env, cells int) ([]float32, error) {
	buf, err := env.Buffer("COUNTER_BIND")
	if err != nil {
		return nil, err
	}
	if len(buf) < cells*core.RingWords {
		return nil, fmt.Errorf("ring buffer holds %d words, need %d", len(buf), cells*core.RingWords)
	}
	return buf, nil
}

func ringsKernel(env *compute.Env) (compute.Body, error) {
	prev, err := env.Image("PREV_IMG_BIND")
	if err != nil {
		return nil, err
	}
	out, err := rings(env, prev.W*prev.H)
	if err != nil {
		return nil, err
	}
	table, err := env.Buffer("INDICES_BIND")
	if err != nil {
		return nil, err
	}
	near, err := env.DefineInt("NEAR_NEIGHBORS")
	if err != nil {
		return nil, err
	}
	depth, err := env.DefineInt("C_DEPTH")
	if err != nil {
		return nil, err
	}
	if need := prev.W * prev.H * depth * 2; len(table) < need {
		return nil, fmt.Errorf("index table holds %d words, need %d", len(table), need)
	}
	return func(x, y, _ int) {
		if x >= prev.W || y >= prev.H {
			return
		}
		var ring core.RingCounter
		for d := 0; d < depth; d += 2 {
			i := core.Index3D(x, y, d, prev.H, depth) * 2
			x0, row, x1 := int(table[i]), int(table[i+1]), int(table[i+2])
			n := (x1-x0+prev.W)%prev.W + 1
			var c core.Counter
			for k := 0; k < n; k++ {
				c.Live += prev.Alpha((x0+k)%prev.W, row)
				c.Count++
			}
			if d < near {
				ring.Inner = ring.Inner.Add(c)
			} else {
				ring.Outer = ring.Outer.Add(c)
			}
		}
		ring.Store(out, y*prev.W+x)
	}, nil
}

func stepKernel(env *compute.Env) (compute.Body, error) {
	prev, err := env.Image("PREV_IMG_BIND")
	if err != nil {
		return nil, err
	}
	curr, err := env.Image("CURR_IMG_BIND")
	if err != nil {
		return nil, err
	}
	in, err := rings(env, prev.W*prev.H)
	if err != nil {
		return nil, err
	}
	p := core.SmoothLifeParams{
		B1:     env.Float(uniformB1),
		B2:     env.Float(uniformB2),
		D1:     env.Float(uniformD1),
		D2:     env.Float(uniformD2),
		AlphaN: env.Float(uniformAlphaN),
		AlphaM: env.Float(uniformAlphaM),
	}
	return func(x, y, _ int) {
		if x >= prev.W || y >= prev.H {
			return
		}
		m, n := core.LoadRing(in, y*prev.W+x).Fillings()
		curr.SetAlpha(x, y, p.Transition(n, m))
	}, nil
}

func setUniforms(dev compute.Device, prog compute.ProgramID, p core.SmoothLifeParams) error {
	for name, v := range map[string]float32{
		uniformB1:     p.B1,
		uniformB2:     p.B2,
		uniformD1:     p.D1,
		uniformD2:     p.D2,
		uniformAlphaN: p.AlphaN,
		uniformAlphaM: p.AlphaM,
	} {
		if err := dev.SetUniformFloat(prog, name, v); err != nil {
			return err
		}
	}
	return nil
}
