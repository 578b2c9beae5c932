package core

import (
	"fmt"

	"gpu-ca/internal/compute"
)

// GridBuffer owns the two device surfaces of a double-buffered grid. At any
// time one is current (the latest completed generation) and the other is
// previous. A failed allocation leaves the buffer inert with zero size.
type GridBuffer struct {
	dev      compute.Device
	size     Size
	current  compute.SurfaceID
	previous compute.SurfaceID
	gen      int
	scratch  []byte
}

// NewGridBuffer returns an unallocated grid buffer on dev.
func NewGridBuffer(dev compute.Device) *GridBuffer {
	return &GridBuffer{dev: dev}
}

// Init allocates two zeroed surfaces of the given size, replacing any
// previous allocation.
func (g *GridBuffer) Init(size Size) error {
	g.Release()
	a, err := g.dev.CreateSurface(size.W, size.H)
	if err != nil {
		return fmt.Errorf("grid buffer %dx%d: %w", size.W, size.H, err)
	}
	b, err := g.dev.CreateSurface(size.W, size.H)
	if err != nil {
		g.dev.DestroySurface(a)
		return fmt.Errorf("grid buffer %dx%d: %w", size.W, size.H, err)
	}
	g.size = size
	g.current, g.previous = a, b
	g.scratch = make([]byte, size.Cells()*4)
	Logger().Debug("grid buffer allocated", "w", size.W, "h", size.H)
	return nil
}

// Ready reports whether both surfaces are allocated.
func (g *GridBuffer) Ready() bool {
	return g.current != compute.InvalidID && g.previous != compute.InvalidID
}

// Size returns the grid dimensions, zero when inert.
func (g *GridBuffer) Size() Size { return g.size }

// Current returns the surface holding the latest completed generation.
func (g *GridBuffer) Current() compute.SurfaceID { return g.current }

// Previous returns the surface holding the generation before Current.
func (g *GridBuffer) Previous() compute.SurfaceID { return g.previous }

// Generation returns the number of completed updates since the last reset.
func (g *GridBuffer) Generation() int { return g.gen }

// Swap exchanges the roles of the two surfaces.
func (g *GridBuffer) Swap() {
	g.current, g.previous = g.previous, g.current
}

// Bind attaches previous as read-only input and current as write-only
// output.
func (g *GridBuffer) Bind() error {
	if err := g.dev.BindSurface(PrevImageBind, g.previous, compute.ReadOnly); err != nil {
		return err
	}
	return g.dev.BindSurface(CurrImageBind, g.current, compute.WriteOnly)
}

// Advance performs one generation: swap, bind and run pass. When pass fails
// the swap is undone so Current still names the last good frame.
func (g *GridBuffer) Advance(pass func() error) error {
	if !g.Ready() {
		return ErrNotInitialized
	}
	g.Swap()
	err := g.Bind()
	if err == nil {
		err = pass()
	}
	if err != nil {
		g.Swap()
		return err
	}
	g.gen++
	return nil
}

// Reset overwrites both surfaces with the same data. Each cell's alpha comes
// from fill; a nil fill zeroes the grid. RGB is the constant alive colour.
func (g *GridBuffer) Reset(fill func() uint8) error {
	if !g.Ready() {
		return ErrNotInitialized
	}
	if fill == nil {
		clear(g.scratch)
		return g.upload()
	}
	for i := 0; i < g.size.Cells(); i++ {
		g.scratch[i*4+0] = 255
		g.scratch[i*4+1] = 255
		g.scratch[i*4+2] = 255
		g.scratch[i*4+3] = fill()
	}
	return g.upload()
}

// Clear zero-fills both surfaces.
func (g *GridBuffer) Clear() error { return g.Reset(nil) }

// Load writes a full alpha pattern, one byte per cell, into both surfaces.
func (g *GridBuffer) Load(alpha []uint8) error {
	if !g.Ready() {
		return ErrNotInitialized
	}
	if len(alpha) != g.size.Cells() {
		return fmt.Errorf("grid buffer: pattern has %d cells, want %d", len(alpha), g.size.Cells())
	}
	i := 0
	return g.Reset(func() uint8 {
		a := alpha[i]
		i++
		return a
	})
}

func (g *GridBuffer) upload() error {
	if err := g.dev.WriteSurface(g.current, g.scratch); err != nil {
		return err
	}
	if err := g.dev.WriteSurface(g.previous, g.scratch); err != nil {
		return err
	}
	g.gen = 0
	return nil
}

// Alpha reads back the state of the current surface, one byte per cell.
func (g *GridBuffer) Alpha() ([]uint8, error) {
	return g.read(g.current)
}

// PreviousAlpha reads back the state of the previous surface.
func (g *GridBuffer) PreviousAlpha() ([]uint8, error) {
	return g.read(g.previous)
}

func (g *GridBuffer) read(id compute.SurfaceID) ([]uint8, error) {
	if !g.Ready() {
		return nil, ErrNotInitialized
	}
	if err := g.dev.ReadSurface(id, g.scratch); err != nil {
		return nil, err
	}
	out := make([]uint8, g.size.Cells())
	for i := range out {
		out[i] = g.scratch[i*4+3]
	}
	return out, nil
}

// Release frees both surfaces and leaves the buffer inert.
func (g *GridBuffer) Release() {
	if g.current != compute.InvalidID {
		g.dev.DestroySurface(g.current)
	}
	if g.previous != compute.InvalidID {
		g.dev.DestroySurface(g.previous)
	}
	g.current, g.previous = compute.InvalidID, compute.InvalidID
	g.size = Size{}
	g.scratch = nil
	g.gen = 0
}
