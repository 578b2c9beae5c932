package conway

import "strconv"

// Config controls seeding and kernel loading for the discrete automaton.
type Config struct {
	Seed int64
	// KernelDir optionally overrides the embedded kernel sources.
	KernelDir string
	// Density is the alive probability used by Reset, as num/den.
	DensityNum int
	DensityDen int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Seed: 42, DensityNum: 2, DensityDen: 5}
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
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.DensityNum = int(parsed * 1000)
			c.DensityDen = 1000
		}
	}
	return c
}
