package compute

import (
	"fmt"
	"strconv"
)

// Env is what a kernel entry sees of the device for one dispatch.
type Env struct {
	defines  map[string]string
	ints     map[string]int
	floats   map[string]float32
	images   map[int]*Image
	buffers  map[int][]float32
	invocs   [3]int
	kernelID string
}

// Kernel returns the entry name being dispatched.
func (e *Env) Kernel() string { return e.kernelID }

// Invocations returns the total number of work-items per dimension.
func (e *Env) Invocations() (x, y, z int) {
	return e.invocs[0], e.invocs[1], e.invocs[2]
}

// DefineInt returns a preamble constant as an integer.
func (e *Env) DefineInt(name string) (int, error) {
	raw, ok := e.defines[name]
	if !ok {
		return 0, fmt.Errorf("define %s missing", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("define %s=%q is not numeric", name, raw)
	}
	return int(f), nil
}

// DefineFloat returns a preamble constant as a float.
func (e *Env) DefineFloat(name string) (float32, error) {
	raw, ok := e.defines[name]
	if !ok {
		return 0, fmt.Errorf("define %s missing", name)
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("define %s=%q is not numeric", name, raw)
	}
	return float32(f), nil
}

// Int returns an integer uniform. Unset uniforms read as zero.
func (e *Env) Int(name string) int { return e.ints[name] }

// Float returns a float uniform. Unset uniforms read as zero.
func (e *Env) Float(name string) float32 { return e.floats[name] }

// Image returns the surface bound at the slot named by a define, as in
// `layout(binding = PREV_IMG_BIND)`.
func (e *Env) Image(bind string) (*Image, error) {
	slot, err := e.DefineInt(bind)
	if err != nil {
		return nil, err
	}
	im, ok := e.images[slot]
	if !ok {
		return nil, fmt.Errorf("no surface bound at %s (%d)", bind, slot)
	}
	return im, nil
}

// Buffer returns the buffer bound at the slot named by a define.
func (e *Env) Buffer(bind string) ([]float32, error) {
	slot, err := e.DefineInt(bind)
	if err != nil {
		return nil, err
	}
	buf, ok := e.buffers[slot]
	if !ok {
		return nil, fmt.Errorf("no buffer bound at %s (%d)", bind, slot)
	}
	return buf, nil
}
