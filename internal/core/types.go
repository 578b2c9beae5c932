package core

import (
	"sort"
	"time"

	"gpu-ca/internal/compute"
)

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Cells returns the number of cells covered by the size.
func (s Size) Cells() int { return s.W * s.H }

// Automaton is the lifecycle every rule variant exposes to the orchestrator.
type Automaton interface {
	Name() string
	Size() Size
	// Init allocates device surfaces and compiles kernels. On allocation
	// failure the automaton stays inert.
	Init(size Size) error
	// Update advances exactly one generation.
	Update() error
	// Reset seeds both surfaces with the variant's noise.
	Reset(seed int64) error
	// Clean zero-fills both surfaces without reseeding.
	Clean() error
	// CurrentTexture is the surface holding the latest completed generation.
	CurrentTexture() compute.SurfaceID
	Generation() int
	UpdateTime() time.Duration
	// RechargeKernels reloads and recompiles kernel sources, keeping grid state.
	RechargeKernels() error
	Release()
}

// Env carries what a factory needs to build an automaton.
type Env struct {
	Device    compute.Device
	KernelDir string
}

// Factory constructs an Automaton using an optional configuration map.
type Factory func(env Env, cfg map[string]string) Automaton

// Registration ties a factory to the kernels its programs resolve against.
type Registration struct {
	Factory Factory
	Kernels map[string]compute.Kernel
}

var sims = map[string]Registration{}

// Register adds a simulation under the provided name.
func Register(name string, r Registration) {
	if name == "" || r.Factory == nil {
		return
	}
	sims[name] = r
}

// Sims exposes the registry of available simulations.
func Sims() map[string]Registration {
	return sims
}

// Names returns the registered simulation names in sorted order.
func Names() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Library builds a kernel library holding the kernels of every registered
// simulation.
func Library() (*compute.Library, error) {
	lib := compute.NewLibrary()
	for _, name := range Names() {
		if err := lib.AddAll(sims[name].Kernels); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
