package app

import (
	"errors"
	"fmt"
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

// DefaultModes lists the variants in switching order.
var DefaultModes = []string{"conway", "smoothlife", "lenia", "leniaop"}

// NewDevice builds a CPU compute device holding every registered kernel.
func NewDevice(workers int) (*compute.CPUDevice, error) {
	lib, err := core.Library()
	if err != nil {
		return nil, err
	}
	return compute.NewCPUDevice(lib, compute.WithWorkers(workers), compute.WithLogger(core.Logger())), nil
}

// Status is a presentation-ready summary of the active variant.
type Status struct {
	Mode       int
	Modes      int
	Name       string
	Generation int
	UpdateTime time.Duration
	Size       core.Size
}

// Modes keeps every variant resident and routes host actions to the active
// one. Only the active variant is updated.
type Modes struct {
	list  []core.Automaton
	index int
	seed  int64
}

// NewModes constructs and initialises the named variants on a shared grid
// size, then seeds the first one. Any failure releases what was built.
func NewModes(env core.Env, size core.Size, names []string, cfg map[string]string, seed int64) (*Modes, error) {
	if len(names) == 0 {
		return nil, errors.New("no modes")
	}
	m := &Modes{seed: seed}
	for _, name := range names {
		reg, ok := core.Sims()[name]
		if !ok {
			m.Release()
			return nil, fmt.Errorf("unknown sim %q", name)
		}
		a := reg.Factory(env, cfg)
		m.list = append(m.list, a)
		if err := a.Init(size); err != nil {
			m.Release()
			return nil, fmt.Errorf("init %s: %w", name, err)
		}
	}
	if err := m.Current().Reset(seed); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

// Current returns the active variant.
func (m *Modes) Current() core.Automaton { return m.list[m.index] }

// Index returns the active mode index.
func (m *Modes) Index() int { return m.index }

// Len returns the number of resident variants.
func (m *Modes) Len() int { return len(m.list) }

// Seed returns the seed used by the most recent reset.
func (m *Modes) Seed() int64 { return m.seed }

// Switch moves delta modes forward (negative for backward), wrapping around.
func (m *Modes) Switch(delta int) error {
	return m.Select(compute.Wrap(m.index+delta, len(m.list)))
}

// Select activates mode i. The outgoing variant is cleaned and the incoming
// one reseeded.
func (m *Modes) Select(i int) error {
	if i < 0 || i >= len(m.list) {
		return fmt.Errorf("mode %d out of range [0,%d)", i, len(m.list))
	}
	if i == m.index {
		return nil
	}
	if err := m.Current().Clean(); err != nil {
		return err
	}
	m.index = i
	core.Logger().Info("mode changed", "mode", i, "sim", m.Current().Name())
	return m.Current().Reset(m.seed)
}

// Update advances the active variant by one generation.
func (m *Modes) Update() error { return m.Current().Update() }

// Reset reseeds the active variant.
func (m *Modes) Reset(seed int64) error {
	m.seed = seed
	return m.Current().Reset(seed)
}

// Recharge recompiles the kernels of every resident variant.
func (m *Modes) Recharge() error {
	var errs []error
	for _, a := range m.list {
		if err := a.RechargeKernels(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	if len(errs) == 0 {
		core.Logger().Info("kernels recharged", "modes", len(m.list))
	}
	return errors.Join(errs...)
}

// Status summarises the active variant.
func (m *Modes) Status() Status {
	a := m.Current()
	return Status{
		Mode:       m.index,
		Modes:      len(m.list),
		Name:       a.Name(),
		Generation: a.Generation(),
		UpdateTime: a.UpdateTime(),
		Size:       a.Size(),
	}
}

// Release frees every variant.
func (m *Modes) Release() {
	for _, a := range m.list {
		a.Release()
	}
	m.list = nil
}
