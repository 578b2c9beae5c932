package conway

import (
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	pcore "gpu-ca/pkg/core"
)

// Conway runs the Game of Life as a single kernel pass per generation.
type Conway struct {
	cfg   Config
	dev   compute.Device
	grid  *core.GridBuffer
	progs *core.ProgramSet
	watch core.Stopwatch
}

// New returns an uninitialised automaton; call Init before use.
func New(env core.Env, cfg Config) *Conway {
	if env.KernelDir != "" && cfg.KernelDir == "" {
		cfg.KernelDir = env.KernelDir
	}
	return &Conway{cfg: cfg, dev: env.Device, grid: core.NewGridBuffer(env.Device)}
}

// Name returns the simulation identifier.
func (c *Conway) Name() string { return "conway" }

// Size returns the grid dimensions.
func (c *Conway) Size() core.Size { return c.grid.Size() }

// Init allocates the surfaces and compiles the step kernel.
func (c *Conway) Init(size core.Size) error {
	if err := c.grid.Init(size); err != nil {
		return err
	}
	loader := compute.DirLoader(c.cfg.KernelDir, compute.FSLoader{FS: kernelFS})
	if c.progs != nil {
		c.progs.Release()
	}
	c.progs = core.NewProgramSet(c.dev, loader, core.StandardDefines(size), stepSource)
	return c.progs.Load()
}

// Update advances one generation. On a dispatch failure the previous frame
// stays current.
func (c *Conway) Update() error {
	defer c.watch.Time()()
	err := c.grid.Advance(func() error {
		gx, gy := core.CellGroups(c.grid.Size())
		if err := c.dev.Dispatch(c.progs.ID(0), gx, gy, 1); err != nil {
			return err
		}
		c.dev.Barrier()
		return nil
	})
	if err != nil {
		core.Logger().Warn("update failed, keeping previous frame", "sim", c.Name(), "err", err)
	}
	return err
}

// Reset seeds both surfaces with binary noise.
func (c *Conway) Reset(seed int64) error {
	c.cfg.Seed = seed
	core.Logger().Info("reset", "sim", c.Name(), "seed", seed)
	return c.grid.Reset(pcore.NewRNG(seed).BinaryNoise(c.cfg.DensityNum, c.cfg.DensityDen))
}

// Clean zero-fills both surfaces.
func (c *Conway) Clean() error { return c.grid.Clear() }

// Load writes an alpha pattern into both surfaces.
func (c *Conway) Load(alpha []uint8) error { return c.grid.Load(alpha) }

// Cells reads back the current generation, one alpha byte per cell.
func (c *Conway) Cells() ([]uint8, error) { return c.grid.Alpha() }

// CurrentTexture returns the surface to present.
func (c *Conway) CurrentTexture() compute.SurfaceID { return c.grid.Current() }

// Generation returns the number of updates since the last reset.
func (c *Conway) Generation() int { return c.grid.Generation() }

// UpdateTime returns the duration of the last update.
func (c *Conway) UpdateTime() time.Duration { return c.watch.Last() }

// RechargeKernels recompiles the kernel from its source file.
func (c *Conway) RechargeKernels() error {
	if c.progs == nil {
		return core.ErrNotInitialized
	}
	return c.progs.Load()
}

// Release frees device resources.
func (c *Conway) Release() {
	if c.progs != nil {
		c.progs.Release()
	}
	c.grid.Release()
}

func init() {
	core.Register("conway", core.Registration{
		Factory: func(env core.Env, cfg map[string]string) core.Automaton {
			return New(env, FromMap(cfg))
		},
		Kernels: Kernels(),
	})
}
