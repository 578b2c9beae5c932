package lenia

import (
	"embed"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

//go:embed kernels/*.comp
var kernelFS embed.FS

const stepSource = "kernels/lenia_cs.comp"

// Kernels returns the kernel entries used by the naive Lenia automaton.
func Kernels() map[string]compute.Kernel {
	return map[string]compute.Kernel{
		"lenia.step": {Entry: stepKernel, Requires: []string{"PREV_IMG_BIND", "CURR_IMG_BIND"}},
	}
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
	p := core.LeniaUniforms(env)
	r := max(p.Radius, 0)
	weights := p.RowWeights()
	return func(x, y, _ int) {
		if x >= prev.W || y >= prev.H {
			return
		}
		var c core.Counter
		for dy := -r; dy <= r; dy++ {
			row := weights[dy+r]
			for dx := -r; dx <= r; dx++ {
				w := row[dx+r]
				c.Live += prev.AlphaWrap(x+dx, y+dy) * w
				c.Count += w
			}
		}
		curr.SetAlpha(x, y, p.Integrate(prev.Alpha(x, y), c.Average()))
	}, nil
}
