package lenia

import (
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	pcore "gpu-ca/pkg/core"
)

// Lenia evaluates the full weighted window for every cell in one pass.
type Lenia struct {
	cfg   Config
	dev   compute.Device
	grid  *core.GridBuffer
	progs *core.ProgramSet
	watch core.Stopwatch
}

// New returns an uninitialised automaton; call Init before use.
func New(env core.Env, cfg Config) *Lenia {
	if env.KernelDir != "" && cfg.KernelDir == "" {
		cfg.KernelDir = env.KernelDir
	}
	return &Lenia{cfg: cfg, dev: env.Device, grid: core.NewGridBuffer(env.Device)}
}

// Name returns the simulation identifier.
func (l *Lenia) Name() string { return "lenia" }

// Size returns the grid dimensions.
func (l *Lenia) Size() core.Size { return l.grid.Size() }

// Init allocates the surfaces and compiles the step kernel.
func (l *Lenia) Init(size core.Size) error {
	if err := l.grid.Init(size); err != nil {
		return err
	}
	loader := compute.DirLoader(l.cfg.KernelDir, compute.FSLoader{FS: kernelFS})
	if l.progs != nil {
		l.progs.Release()
	}
	l.progs = core.NewProgramSet(l.dev, loader, core.StandardDefines(size), stepSource)
	return l.progs.Load()
}

// Update advances one generation with the current parameters.
func (l *Lenia) Update() error {
	defer l.watch.Time()()
	err := l.grid.Advance(func() error {
		prog := l.progs.ID(0)
		if err := l.cfg.Params.SetUniforms(l.dev, prog); err != nil {
			return err
		}
		gx, gy := core.CellGroups(l.grid.Size())
		if err := l.dev.Dispatch(prog, gx, gy, 1); err != nil {
			return err
		}
		l.dev.Barrier()
		return nil
	})
	if err != nil {
		core.Logger().Warn("update failed, keeping previous frame", "sim", l.Name(), "err", err)
	}
	return err
}

// Reset seeds both surfaces with uniform noise.
func (l *Lenia) Reset(seed int64) error {
	l.cfg.Seed = seed
	core.Logger().Info("reset", "sim", l.Name(), "seed", seed)
	return l.grid.Reset(pcore.NewRNG(seed).UniformNoise())
}

// Clean zero-fills both surfaces.
func (l *Lenia) Clean() error { return l.grid.Clear() }

// Load writes an alpha pattern into both surfaces.
func (l *Lenia) Load(alpha []uint8) error { return l.grid.Load(alpha) }

// Cells reads back the current generation, one alpha byte per cell.
func (l *Lenia) Cells() ([]uint8, error) { return l.grid.Alpha() }

// CurrentTexture returns the surface to present.
func (l *Lenia) CurrentTexture() compute.SurfaceID { return l.grid.Current() }

// Generation returns the number of updates since the last reset.
func (l *Lenia) Generation() int { return l.grid.Generation() }

// UpdateTime returns the duration of the last update.
func (l *Lenia) UpdateTime() time.Duration { return l.watch.Last() }

// Params returns the live parameters.
func (l *Lenia) Params() core.LeniaParams { return l.cfg.Params }

// SetRadius changes the kernel radius, rejecting values outside
// [1, max radius].
func (l *Lenia) SetRadius(r int) error {
	if err := core.CheckRadius(r, l.cfg.MaxRadius); err != nil {
		return err
	}
	l.cfg.Params.Radius = r
	return nil
}

// Parameters implements the HUD snapshot.
func (l *Lenia) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{l.cfg.Params.Snapshot()}}
}

// ParameterControls lists the adjustable parameters.
func (l *Lenia) ParameterControls() []core.ParameterControl {
	return core.LeniaControls(l.cfg.MaxRadius)
}

// SetIntParameter updates an integer parameter.
func (l *Lenia) SetIntParameter(key string, value int) bool {
	return l.cfg.Params.Set(key, float64(value), l.cfg.MaxRadius)
}

// SetFloatParameter updates a floating point parameter.
func (l *Lenia) SetFloatParameter(key string, value float64) bool {
	return l.cfg.Params.Set(key, value, l.cfg.MaxRadius)
}

// RechargeKernels recompiles the kernel from its source file.
func (l *Lenia) RechargeKernels() error {
	if l.progs == nil {
		return core.ErrNotInitialized
	}
	return l.progs.Load()
}

// Release frees device resources.
func (l *Lenia) Release() {
	if l.progs != nil {
		l.progs.Release()
	}
	l.grid.Release()
}

func init() {
	core.Register("lenia", core.Registration{
		Factory: func(env core.Env, cfg map[string]string) core.Automaton {
			return New(env, FromMap(cfg))
		},
		Kernels: Kernels(),
	})
}
