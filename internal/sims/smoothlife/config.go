package smoothlife

import (
	"strconv"

	"gpu-ca/internal/core"
)

// Config controls the annular automaton.
type Config struct {
	Seed      int64
	KernelDir string

	InnerRadius float64
	OuterRadius float64
	Edge        EdgePolicy

	DensityNum int
	DensityDen int

	Params core.SmoothLifeParams
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Seed:        42,
		InnerRadius: 1.44,
		OuterRadius: 12,
		Edge:        EdgeWrap,
		DensityNum:  2,
		DensityDen:  5,
		Params:      core.DefaultSmoothLifeParams(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
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
	if v, ok := cfg["inner_radius"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 1 {
			c.InnerRadius = parsed
		}
	}
	if v, ok := cfg["outer_radius"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > c.InnerRadius {
			c.OuterRadius = parsed
		}
	}
	if v, ok := cfg["edge"]; ok {
		if parsed, err := ParseEdgePolicy(v); err == nil {
			c.Edge = parsed
		}
	}
	for key, dst := range c.paramFields() {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed <= 1 {
				*dst = float32(parsed)
			}
		}
	}
	return c
}

func (c *Config) paramFields() map[string]*float32 {
	return map[string]*float32{
		"b1":      &c.Params.B1,
		"b2":      &c.Params.B2,
		"d1":      &c.Params.D1,
		"d2":      &c.Params.D2,
		"alpha_n": &c.Params.AlphaN,
		"alpha_m": &c.Params.AlphaM,
	}
}
