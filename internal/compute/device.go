// Package compute models the GPU compute path used by the automata: opaque
// resource handles, kernel programs compiled from source text, bindings and
// work-group dispatch. The automata only talk to the Device interface; the
// CPU implementation in this package runs kernels as Go functions.
package compute

import "errors"

// SurfaceID identifies a 2D RGBA8 surface owned by a Device.
type SurfaceID uint64

// BufferID identifies a linear float32 buffer owned by a Device.
type BufferID uint64

// ProgramID identifies a compiled kernel program.
type ProgramID uint64

// InvalidID is the zero handle. No live resource ever uses it.
const InvalidID = 0

// Access describes how a kernel may touch a bound surface.
type Access uint8

const (
	ReadOnly Access = iota + 1
	WriteOnly
	ReadWrite
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	default:
		return "invalid"
	}
}

var (
	// ErrOutOfMemory reports that an allocation did not fit the device budget.
	ErrOutOfMemory = errors.New("compute: out of device memory")
	// ErrInvalidHandle reports use of a released or unknown handle.
	ErrInvalidHandle = errors.New("compute: invalid handle")
	// ErrCompile reports a kernel source that could not be turned into a program.
	ErrCompile = errors.New("compute: compile failed")
	// ErrDispatch reports a device-side failure while running a kernel.
	ErrDispatch = errors.New("compute: dispatch failed")
)

// Device is the compile / bind / dispatch / readback surface the automata
// drive. Dispatch returns once every work-item has finished.
type Device interface {
	CreateSurface(w, h int) (SurfaceID, error)
	WriteSurface(id SurfaceID, pix []byte) error
	ReadSurface(id SurfaceID, dst []byte) error
	DestroySurface(id SurfaceID)

	CreateBuffer(words int) (BufferID, error)
	WriteBuffer(id BufferID, offset int, data []float32) error
	ReadBuffer(id BufferID, offset int, dst []float32) error
	DestroyBuffer(id BufferID)

	Compile(src Source) (ProgramID, error)
	DestroyProgram(id ProgramID)
	SetUniformInt(p ProgramID, name string, v int) error
	SetUniformFloat(p ProgramID, name string, v float32) error

	BindSurface(slot int, id SurfaceID, access Access) error
	BindBuffer(slot int, id BufferID) error

	Dispatch(p ProgramID, gx, gy, gz int) error
	// Barrier orders memory writes of the previous dispatch before the next.
	Barrier()
	// Finish blocks until all submitted work completed.
	Finish() error
}

// Groups returns the number of work-groups needed to cover n items with the
// given local size.
func Groups(n, local int) int {
	if n <= 0 || local <= 0 {
		return 0
	}
	return (n + local - 1) / local
}
