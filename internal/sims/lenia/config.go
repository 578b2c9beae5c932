package lenia

import (
	"strconv"

	"gpu-ca/internal/core"
)

// Config controls the naive Lenia automaton.
type Config struct {
	Seed      int64
	KernelDir string
	MaxRadius int
	Params    core.LeniaParams
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Seed: 42, MaxRadius: core.DefaultMaxRadius, Params: core.DefaultLeniaParams()}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Parameter values outside their control bounds are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["kernels"]; ok {
		c.KernelDir = v
	}
	if v, ok := cfg["max_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MaxRadius = parsed
		}
	}
	for _, key := range []string{"radius", "dt", "mu", "sigma", "rho", "omega"} {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				c.Params.Set(key, parsed, c.MaxRadius)
			}
		}
	}
	return c
}
