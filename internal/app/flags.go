package app

import (
	"flag"
	"strings"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Sim       string
	Width     int
	Height    int
	Scale     int
	TPS       int
	Seed      int64
	KernelDir string
	Workers   int
	Panel     int
	Params    string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "lenia", Width: 256, Height: 256, Scale: 3, TPS: 30, Seed: 42, Panel: 220}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "initial mode: "+strings.Join(DefaultModes, ", "))
	fs.IntVar(&c.Width, "w", c.Width, "grid width")
	fs.IntVar(&c.Height, "h", c.Height, "grid height")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.StringVar(&c.KernelDir, "kernels", c.KernelDir, "directory overriding the embedded kernel sources")
	fs.IntVar(&c.Workers, "workers", c.Workers, "compute worker goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&c.Panel, "panel", c.Panel, "HUD panel width in pixels")
	fs.StringVar(&c.Params, "params", c.Params, "comma separated key=value sim parameters")
}

// ParamMap parses a "k=v,k2=v2" list.
func ParamMap(s string) map[string]string {
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if ok && k != "" {
			out[k] = v
		}
	}
	return out
}

// ModeIndex returns the position of name in DefaultModes, or 0.
func ModeIndex(name string) int {
	for i, n := range DefaultModes {
		if n == name {
			return i
		}
	}
	return 0
}
