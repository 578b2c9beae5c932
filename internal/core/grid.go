package core

import "gpu-ca/internal/compute"

// Work-group local size shared by every kernel.
const (
	XThreads = 8
	YThreads = 8
	ZThreads = 1
)

// Binding slots shared by every kernel.
const (
	PrevImageBind = 0
	CurrImageBind = 1
	CounterBind   = 2
	IndicesBind   = 3
)

// Wrap applies toroidal wrapping to the provided coordinates.
func (s Size) Wrap(x, y int) (int, int) {
	return compute.Wrap(x, s.W), compute.Wrap(y, s.H)
}

// Index returns the linear index for coordinates (x, y) in row-major order.
func (s Size) Index(x, y int) int { return y*s.W + x }

// Index3D returns the linear index of (x, y, z) in an array laid out with z
// fastest, then y, then x.
func Index3D(x, y, z, maxY, maxZ int) int {
	return x*maxY*maxZ + y*maxZ + z
}

// TotalLines is the number of scan lines covered by a radius.
func TotalLines(radius int) int { return 2*radius + 1 }

// StandardDefines returns the preamble constants every kernel relies on.
func StandardDefines(size Size) []compute.Define {
	return []compute.Define{
		compute.IntDefine("X_THREADS", XThreads),
		compute.IntDefine("Y_THREADS", YThreads),
		compute.IntDefine("Z_THREADS", ZThreads),
		compute.IntDefine("PREV_IMG_BIND", PrevImageBind),
		compute.IntDefine("CURR_IMG_BIND", CurrImageBind),
		compute.IntDefine("COUNTER_BIND", CounterBind),
		compute.IntDefine("INDICES_BIND", IndicesBind),
		compute.IntDefine("C_WIDTH", size.W),
		compute.IntDefine("C_HEIGHT", size.H),
	}
}

// CellGroups returns the work-group counts covering every cell of size.
func CellGroups(size Size) (int, int) {
	return compute.Groups(size.W, XThreads), compute.Groups(size.H, YThreads)
}
