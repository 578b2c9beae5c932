// Package smoothlife implements SmoothLife over a precomputed per-cell
// table of scan-line spans covering an inner disk and an outer disk.
package smoothlife

import (
	"fmt"
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	pcore "gpu-ca/pkg/core"
)

// SmoothLife is the annular continuous automaton.
type SmoothLife struct {
	cfg    Config
	dev    compute.Device
	grid   *core.GridBuffer
	progs  *core.ProgramSet
	layout Layout
	table  compute.BufferID
	rings  compute.BufferID
	watch  core.Stopwatch
}

// New returns an uninitialised automaton; call Init before use.
func New(env core.Env, cfg Config) *SmoothLife {
	if env.KernelDir != "" && cfg.KernelDir == "" {
		cfg.KernelDir = env.KernelDir
	}
	return &SmoothLife{cfg: cfg, dev: env.Device, grid: core.NewGridBuffer(env.Device)}
}

// Name returns the simulation identifier.
func (s *SmoothLife) Name() string { return "smoothlife" }

// Size returns the grid dimensions.
func (s *SmoothLife) Size() core.Size { return s.grid.Size() }

// Layout returns the geometry of the index table.
func (s *SmoothLife) Layout() Layout { return s.layout }

// Init allocates the surfaces, builds and uploads the index table, and
// compiles both passes.
func (s *SmoothLife) Init(size core.Size) error {
	layout, err := NewLayout(size, s.cfg.InnerRadius, s.cfg.OuterRadius)
	if err != nil {
		return err
	}
	s.releaseBuffers()
	if err := s.grid.Init(size); err != nil {
		return err
	}
	if err := s.allocate(layout); err != nil {
		s.releaseBuffers()
		s.grid.Release()
		return err
	}
	s.layout = layout

	defines := append(core.StandardDefines(size), layout.Defines()...)
	loader := compute.DirLoader(s.cfg.KernelDir, compute.FSLoader{FS: kernelFS})
	if s.progs != nil {
		s.progs.Release()
	}
	s.progs = core.NewProgramSet(s.dev, loader, defines, ringsSource, stepSource)
	return s.progs.Load()
}

func (s *SmoothLife) allocate(layout Layout) error {
	table, err := s.dev.CreateBuffer(layout.Words())
	if err != nil {
		return fmt.Errorf("index table: %w", err)
	}
	s.table = table
	if err := s.dev.WriteBuffer(table, 0, BuildTable(layout, s.cfg.Edge)); err != nil {
		return fmt.Errorf("index table: %w", err)
	}
	rings, err := s.dev.CreateBuffer(layout.Size.Cells() * core.RingWords)
	if err != nil {
		return fmt.Errorf("ring counters: %w", err)
	}
	s.rings = rings
	core.Logger().Debug("index table built", "depth", layout.Depth, "near", layout.NearNeighbors, "edge", s.cfg.Edge)
	return nil
}

// Update runs the span pass and the transition.
func (s *SmoothLife) Update() error {
	defer s.watch.Time()()
	err := s.grid.Advance(func() error {
		if err := s.dev.BindBuffer(core.CounterBind, s.rings); err != nil {
			return err
		}
		if err := s.dev.BindBuffer(core.IndicesBind, s.table); err != nil {
			return err
		}
		gx, gy := core.CellGroups(s.grid.Size())
		if err := s.dev.Dispatch(s.progs.ID(0), gx, gy, 1); err != nil {
			return err
		}
		s.dev.Barrier()

		step := s.progs.ID(1)
		if err := setUniforms(s.dev, step, s.cfg.Params); err != nil {
			return err
		}
		if err := s.dev.Dispatch(step, gx, gy, 1); err != nil {
			return err
		}
		s.dev.Barrier()
		return nil
	})
	if err != nil {
		core.Logger().Warn("update failed, keeping previous frame", "sim", s.Name(), "err", err)
	}
	return err
}

// Reset seeds both surfaces with binary noise.
func (s *SmoothLife) Reset(seed int64) error {
	s.cfg.Seed = seed
	core.Logger().Info("reset", "sim", s.Name(), "seed", seed)
	return s.grid.Reset(pcore.NewRNG(seed).BinaryNoise(s.cfg.DensityNum, s.cfg.DensityDen))
}

// Clean zero-fills both surfaces.
func (s *SmoothLife) Clean() error { return s.grid.Clear() }

// Load writes an alpha pattern into both surfaces.
func (s *SmoothLife) Load(alpha []uint8) error { return s.grid.Load(alpha) }

// Cells reads back the current generation, one alpha byte per cell.
func (s *SmoothLife) Cells() ([]uint8, error) { return s.grid.Alpha() }

// Rings reads back the ring counters of the last span pass.
func (s *SmoothLife) Rings() ([]core.RingCounter, error) {
	if !s.grid.Ready() {
		return nil, core.ErrNotInitialized
	}
	raw := make([]float32, s.layout.Size.Cells()*core.RingWords)
	if err := s.dev.ReadBuffer(s.rings, 0, raw); err != nil {
		return nil, err
	}
	out := make([]core.RingCounter, s.layout.Size.Cells())
	for i := range out {
		out[i] = core.LoadRing(raw, i)
	}
	return out, nil
}

// CurrentTexture returns the surface to present.
func (s *SmoothLife) CurrentTexture() compute.SurfaceID { return s.grid.Current() }

// Generation returns the number of updates since the last reset.
func (s *SmoothLife) Generation() int { return s.grid.Generation() }

// UpdateTime returns the duration of the last update.
func (s *SmoothLife) UpdateTime() time.Duration { return s.watch.Last() }

// Parameters implements the HUD snapshot.
func (s *SmoothLife) Parameters() core.ParameterSnapshot {
	p := s.cfg.Params
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Transition",
			Params: []core.Parameter{
				core.FloatParam("b1", "Birth low", float64(p.B1)),
				core.FloatParam("b2", "Birth high", float64(p.B2)),
				core.FloatParam("d1", "Survive low", float64(p.D1)),
				core.FloatParam("d2", "Survive high", float64(p.D2)),
				core.FloatParam("alpha_n", "Alpha N", float64(p.AlphaN)),
				core.FloatParam("alpha_m", "Alpha M", float64(p.AlphaM)),
			},
		},
		{
			Name: "Disks",
			Params: []core.Parameter{
				core.FloatParam("inner_radius", "Inner radius", s.cfg.InnerRadius),
				core.FloatParam("outer_radius", "Outer radius", s.cfg.OuterRadius),
				{Key: "edge", Label: "Edge", Type: core.ParamTypeString, Value: s.cfg.Edge.String()},
			},
		},
	}}
}

// ParameterControls lists the adjustable transition parameters.
func (s *SmoothLife) ParameterControls() []core.ParameterControl {
	ctrl := func(key, label string) core.ParameterControl {
		return core.ParameterControl{Key: key, Label: label, Type: core.ParamTypeFloat, Step: 0.001, Min: 0.001, Max: 1, HasMin: true, HasMax: true}
	}
	return []core.ParameterControl{
		ctrl("b1", "Birth low"),
		ctrl("b2", "Birth high"),
		ctrl("d1", "Survive low"),
		ctrl("d2", "Survive high"),
		ctrl("alpha_n", "Alpha N"),
		ctrl("alpha_m", "Alpha M"),
	}
}

// SetFloatParameter updates a transition parameter.
func (s *SmoothLife) SetFloatParameter(key string, value float64) bool {
	ctrl, ok := core.FindControl(s.ParameterControls(), key)
	if !ok || !ctrl.InRange(value) {
		return false
	}
	*s.cfg.paramFields()[key] = float32(value)
	return true
}

// RechargeKernels recompiles both passes from their source files.
func (s *SmoothLife) RechargeKernels() error {
	if s.progs == nil {
		return core.ErrNotInitialized
	}
	return s.progs.Load()
}

func (s *SmoothLife) releaseBuffers() {
	if s.table != compute.InvalidID {
		s.dev.DestroyBuffer(s.table)
		s.table = compute.InvalidID
	}
	if s.rings != compute.InvalidID {
		s.dev.DestroyBuffer(s.rings)
		s.rings = compute.InvalidID
	}
}

// Release frees device resources.
func (s *SmoothLife) Release() {
	if s.progs != nil {
		s.progs.Release()
	}
	s.releaseBuffers()
	s.grid.Release()
}

func init() {
	core.Register("smoothlife", core.Registration{
		Factory: func(env core.Env, cfg map[string]string) core.Automaton {
			return New(env, FromMap(cfg))
		},
		Kernels: Kernels(),
	})
}
