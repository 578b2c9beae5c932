package compute

import (
	"fmt"
	"sort"
	"sync"
)

// Body runs one work-item at its global invocation id.
type Body func(x, y, z int)

// Entry prepares a kernel for a single dispatch. It resolves bindings and
// uniforms once and returns the per-item body.
type Entry func(env *Env) (Body, error)

// Kernel is a named entry point together with the defines it depends on.
type Kernel struct {
	Entry    Entry
	Requires []string
}

// Library maps kernel entry names to their Go implementations. Devices
// resolve the `#pragma kernel` directive of a source against it.
type Library struct {
	mu      sync.RWMutex
	kernels map[string]Kernel
}

// NewLibrary returns an empty kernel library.
func NewLibrary() *Library {
	return &Library{kernels: map[string]Kernel{}}
}

// Add registers a kernel under name.
func (l *Library) Add(name string, k Kernel) error {
	if name == "" || k.Entry == nil {
		return fmt.Errorf("compute: kernel %q has no entry", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.kernels[name]; ok {
		return fmt.Errorf("compute: kernel %q already registered", name)
	}
	l.kernels[name] = k
	return nil
}

// AddAll registers every kernel of set.
func (l *Library) AddAll(set map[string]Kernel) error {
	for name, k := range set {
		if err := l.Add(name, k); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the kernel registered under name.
func (l *Library) Lookup(name string) (Kernel, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	k, ok := l.kernels[name]
	return k, ok
}

// Names lists registered kernels in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.kernels))
	for name := range l.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
