package conway

import (
	"embed"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

//go:embed kernels/*.comp
var kernelFS embed.FS

const stepSource = "kernels/conway_cs.comp"

// Kernels returns the kernel entries used by the discrete automaton.
func Kernels() map[string]compute.Kernel {
	return map[string]compute.Kernel{
		"conway.step": {Entry: stepKernel, Requires: []string{"PREV_IMG_BIND", "CURR_IMG_BIND"}},
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
	return func(x, y, _ int) {
		if x >= prev.W || y >= prev.H {
			return
		}
		n := 0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if (dx != 0 || dy != 0) && prev.AlphaWrap(x+dx, y+dy) > 0.5 {
					n++
				}
			}
		}
		next := float32(0)
		if core.LifeRule(prev.Alpha(x, y) > 0.5, n) {
			next = 1
		}
		curr.SetAlpha(x, y, next)
	}, nil
}
