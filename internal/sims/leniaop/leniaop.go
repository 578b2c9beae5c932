// Package leniaop implements Lenia as two kernel passes: a per-row scan into
// a 3D counter accumulator, then a per-cell reduction over the row counters.
package leniaop

import (
	"fmt"
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	"gpu-ca/internal/sims/lenia"
	pcore "gpu-ca/pkg/core"
)

// Config shares its shape and parsing with the naive variant.
type Config = lenia.Config

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config { return lenia.DefaultConfig() }

// FromMap populates the config from a string map.
func FromMap(cfg map[string]string) Config { return lenia.FromMap(cfg) }

// LeniaOp is the separable continuous automaton.
type LeniaOp struct {
	cfg   Config
	dev   compute.Device
	grid  *core.GridBuffer
	progs *core.ProgramSet
	acc   compute.BufferID
	watch core.Stopwatch
}

// New returns an uninitialised automaton; call Init before use.
func New(env core.Env, cfg Config) *LeniaOp {
	if env.KernelDir != "" && cfg.KernelDir == "" {
		cfg.KernelDir = env.KernelDir
	}
	if cfg.MaxRadius <= 0 {
		cfg.MaxRadius = core.DefaultMaxRadius
	}
	if cfg.Params.Radius > cfg.MaxRadius {
		cfg.Params.Radius = cfg.MaxRadius
	}
	return &LeniaOp{cfg: cfg, dev: env.Device, grid: core.NewGridBuffer(env.Device)}
}

// Name returns the simulation identifier.
func (l *LeniaOp) Name() string { return "leniaop" }

// Size returns the grid dimensions.
func (l *LeniaOp) Size() core.Size { return l.grid.Size() }

// Depth is the number of row counters stored per cell.
func (l *LeniaOp) Depth() int { return core.TotalLines(l.cfg.MaxRadius) }

// Init allocates the surfaces and the accumulator, then compiles both
// passes. The accumulator is sized for the maximum radius.
func (l *LeniaOp) Init(size core.Size) error {
	if err := l.grid.Init(size); err != nil {
		return err
	}
	if l.acc != compute.InvalidID {
		l.dev.DestroyBuffer(l.acc)
		l.acc = compute.InvalidID
	}
	acc, err := l.dev.CreateBuffer(size.Cells() * l.Depth() * core.CounterWords)
	if err != nil {
		l.grid.Release()
		return fmt.Errorf("accumulator: %w", err)
	}
	l.acc = acc

	defines := append(core.StandardDefines(size), compute.IntDefine("MAX_RADIUS", l.cfg.MaxRadius))
	loader := compute.DirLoader(l.cfg.KernelDir, compute.FSLoader{FS: kernelFS})
	if l.progs != nil {
		l.progs.Release()
	}
	l.progs = core.NewProgramSet(l.dev, loader, defines, rowsSource, reduceSource)
	return l.progs.Load()
}

// Update runs the row pass and the reduction.
func (l *LeniaOp) Update() error {
	defer l.watch.Time()()
	err := l.grid.Advance(func() error {
		if err := l.dev.BindBuffer(core.CounterBind, l.acc); err != nil {
			return err
		}
		size := l.grid.Size()
		gx, gy := core.CellGroups(size)

		rows := l.progs.ID(0)
		if err := l.cfg.Params.SetUniforms(l.dev, rows); err != nil {
			return err
		}
		if err := l.dev.Dispatch(rows, gx, gy, core.TotalLines(l.cfg.Params.Radius)); err != nil {
			return err
		}
		l.dev.Barrier()

		reduce := l.progs.ID(1)
		if err := l.cfg.Params.SetUniforms(l.dev, reduce); err != nil {
			return err
		}
		if err := l.dev.Dispatch(reduce, gx, gy, 1); err != nil {
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
func (l *LeniaOp) Reset(seed int64) error {
	l.cfg.Seed = seed
	core.Logger().Info("reset", "sim", l.Name(), "seed", seed)
	return l.grid.Reset(pcore.NewRNG(seed).UniformNoise())
}

// Clean zero-fills both surfaces.
func (l *LeniaOp) Clean() error { return l.grid.Clear() }

// Load writes an alpha pattern into both surfaces.
func (l *LeniaOp) Load(alpha []uint8) error { return l.grid.Load(alpha) }

// Cells reads back the current generation, one alpha byte per cell.
func (l *LeniaOp) Cells() ([]uint8, error) { return l.grid.Alpha() }

// CurrentTexture returns the surface to present.
func (l *LeniaOp) CurrentTexture() compute.SurfaceID { return l.grid.Current() }

// Generation returns the number of updates since the last reset.
func (l *LeniaOp) Generation() int { return l.grid.Generation() }

// UpdateTime returns the duration of the last update.
func (l *LeniaOp) UpdateTime() time.Duration { return l.watch.Last() }

// Params returns the live parameters.
func (l *LeniaOp) Params() core.LeniaParams { return l.cfg.Params }

// MaxRadius returns the largest radius the accumulator can hold.
func (l *LeniaOp) MaxRadius() int { return l.cfg.MaxRadius }

// SetRadius changes the kernel radius. Radii above the accumulator depth
// fail with core.ErrRadiusRange.
func (l *LeniaOp) SetRadius(r int) error {
	if err := core.CheckRadius(r, l.cfg.MaxRadius); err != nil {
		return err
	}
	l.cfg.Params.Radius = r
	return nil
}

// Parameters implements the HUD snapshot.
func (l *LeniaOp) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		l.cfg.Params.Snapshot(),
		{
			Name:   "Accumulator",
			Params: []core.Parameter{core.IntParam("max_radius", "Max radius", l.cfg.MaxRadius)},
		},
	}}
}

// ParameterControls lists the adjustable parameters.
func (l *LeniaOp) ParameterControls() []core.ParameterControl {
	return core.LeniaControls(l.cfg.MaxRadius)
}

// SetIntParameter updates an integer parameter.
func (l *LeniaOp) SetIntParameter(key string, value int) bool {
	return l.cfg.Params.Set(key, float64(value), l.cfg.MaxRadius)
}

// SetFloatParameter updates a floating point parameter.
func (l *LeniaOp) SetFloatParameter(key string, value float64) bool {
	return l.cfg.Params.Set(key, value, l.cfg.MaxRadius)
}

// RechargeKernels recompiles both passes from their source files.
func (l *LeniaOp) RechargeKernels() error {
	if l.progs == nil {
		return core.ErrNotInitialized
	}
	return l.progs.Load()
}

// Release frees device resources.
func (l *LeniaOp) Release() {
	if l.progs != nil {
		l.progs.Release()
	}
	if l.acc != compute.InvalidID {
		l.dev.DestroyBuffer(l.acc)
		l.acc = compute.InvalidID
	}
	l.grid.Release()
}

func init() {
	core.Register("leniaop", core.Registration{
		Factory: func(env core.Env, cfg map[string]string) core.Automaton {
			return New(env, FromMap(cfg))
		},
		Kernels: Kernels(),
	})
}
