package core

import (
	"fmt"

	"gpu-ca/internal/compute"
)

// ProgramSet compiles and owns the kernel programs of one automaton.
// Sources are loaded by path so they can be recharged at runtime.
type ProgramSet struct {
	dev     compute.Device
	loader  compute.Loader
	defines []compute.Define
	paths   []string
	ids     []compute.ProgramID
}

// NewProgramSet prepares programs for the given source paths. Nothing is
// compiled until Load.
func NewProgramSet(dev compute.Device, loader compute.Loader, defines []compute.Define, paths ...string) *ProgramSet {
	return &ProgramSet{dev: dev, loader: loader, defines: defines, paths: paths}
}

// Load compiles every source. On failure the previously loaded programs stay
// in place and the partial new set is released.
func (p *ProgramSet) Load() error {
	fresh := make([]compute.ProgramID, 0, len(p.paths))
	for _, path := range p.paths {
		text, err := p.loader.Load(path)
		if err == nil {
			var id compute.ProgramID
			id, err = p.dev.Compile(compute.Source{Name: path, Text: text, Defines: p.defines})
			if err == nil {
				fresh = append(fresh, id)
				continue
			}
		}
		for _, id := range fresh {
			p.dev.DestroyProgram(id)
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	p.Release()
	p.ids = fresh
	return nil
}

// ID returns the program compiled from the i-th path.
func (p *ProgramSet) ID(i int) compute.ProgramID {
	if i < 0 || i >= len(p.ids) {
		return compute.InvalidID
	}
	return p.ids[i]
}

// Loaded reports whether the set currently holds compiled programs.
func (p *ProgramSet) Loaded() bool { return len(p.ids) == len(p.paths) && len(p.ids) > 0 }

// Release destroys every compiled program.
func (p *ProgramSet) Release() {
	for _, id := range p.ids {
		p.dev.DestroyProgram(id)
	}
	p.ids = nil
}
