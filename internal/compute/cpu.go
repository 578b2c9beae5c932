package compute

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

type surface struct {
	w, h int
	pix  []byte
}

type program struct {
	name    string
	entry   string
	kernel  Kernel
	local   [3]int
	defines map[string]string
	ints    map[string]int
	floats  map[string]float32
}

type imageBinding struct {
	id     SurfaceID
	access Access
}

// CPUDevice executes kernels from a Library on the host. Work-groups are
// spread over a bounded set of goroutines and Dispatch waits for all of them.
type CPUDevice struct {
	mu sync.Mutex

	lib     *Library
	workers int
	limit   int64
	used    int64
	next    uint64
	fault   func(kernel string) error
	logger  *slog.Logger

	surfaces map[SurfaceID]*surface
	buffers  map[BufferID][]float32
	programs map[ProgramID]*program

	images  map[int]imageBinding
	storage map[int]BufferID
}

var _ Device = (*CPUDevice)(nil)

// CPUOption configures a CPUDevice.
type CPUOption func(*CPUDevice)

// WithWorkers bounds the number of goroutines used per dispatch.
func WithWorkers(n int) CPUOption {
	return func(d *CPUDevice) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithMemoryLimit caps the bytes of surfaces and buffers alive at once.
func WithMemoryLimit(bytes int64) CPUOption {
	return func(d *CPUDevice) { d.limit = bytes }
}

// WithFaultInjector installs a hook consulted before every dispatch. A non-nil
// return is reported as a dispatch failure.
func WithFaultInjector(f func(kernel string) error) CPUOption {
	return func(d *CPUDevice) { d.fault = f }
}

// WithLogger routes device diagnostics to l.
func WithLogger(l *slog.Logger) CPUOption {
	return func(d *CPUDevice) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewCPUDevice creates a device resolving kernel entries against lib.
func NewCPUDevice(lib *Library, opts ...CPUOption) *CPUDevice {
	if lib == nil {
		lib = NewLibrary()
	}
	d := &CPUDevice{
		lib:      lib,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.New(discard{}),
		surfaces: map[SurfaceID]*surface{},
		buffers:  map[BufferID][]float32{},
		programs: map[ProgramID]*program{},
		images:   map[int]imageBinding{},
		storage:  map[int]BufferID{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *CPUDevice) reserve(bytes int64) error {
	if d.limit > 0 && d.used+bytes > d.limit {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrOutOfMemory, bytes, d.used, d.limit)
	}
	d.used += bytes
	return nil
}

func (d *CPUDevice) handle() uint64 {
	d.next++
	return d.next
}

// CreateSurface allocates a zeroed w*h RGBA8 surface.
func (d *CPUDevice) CreateSurface(w, h int) (SurfaceID, error) {
	if w <= 0 || h <= 0 {
		return InvalidID, fmt.Errorf("%w: surface %dx%d", ErrOutOfMemory, w, h)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reserve(int64(w) * int64(h) * 4); err != nil {
		return InvalidID, err
	}
	id := SurfaceID(d.handle())
	d.surfaces[id] = &surface{w: w, h: h, pix: make([]byte, w*h*4)}
	return id, nil
}

// WriteSurface replaces the whole surface content.
func (d *CPUDevice) WriteSurface(id SurfaceID, pix []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: surface %d", ErrInvalidHandle, id)
	}
	if len(pix) != len(s.pix) {
		return fmt.Errorf("compute: surface %d wants %d bytes, got %d", id, len(s.pix), len(pix))
	}
	copy(s.pix, pix)
	return nil
}

// ReadSurface copies the surface content into dst.
func (d *CPUDevice) ReadSurface(id SurfaceID, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: surface %d", ErrInvalidHandle, id)
	}
	if len(dst) != len(s.pix) {
		return fmt.Errorf("compute: surface %d holds %d bytes, dst has %d", id, len(s.pix), len(dst))
	}
	copy(dst, s.pix)
	return nil
}

// DestroySurface releases the surface and drops any binding to it.
func (d *CPUDevice) DestroySurface(id SurfaceID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.surfaces[id]
	if !ok {
		return
	}
	d.used -= int64(len(s.pix))
	delete(d.surfaces, id)
	for slot, b := range d.images {
		if b.id == id {
			delete(d.images, slot)
		}
	}
}

// CreateBuffer allocates a zeroed buffer of float32 words.
func (d *CPUDevice) CreateBuffer(words int) (BufferID, error) {
	if words <= 0 {
		return InvalidID, fmt.Errorf("%w: buffer of %d words", ErrOutOfMemory, words)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reserve(int64(words) * 4); err != nil {
		return InvalidID, err
	}
	id := BufferID(d.handle())
	d.buffers[id] = make([]float32, words)
	return id, nil
}

// WriteBuffer copies data into the buffer starting at word offset.
func (d *CPUDevice) WriteBuffer(id BufferID, offset int, data []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, id)
	}
	if offset < 0 || offset+len(data) > len(buf) {
		return fmt.Errorf("compute: write [%d,%d) outside buffer %d of %d words", offset, offset+len(data), id, len(buf))
	}
	copy(buf[offset:], data)
	return nil
}

// ReadBuffer copies words starting at offset into dst.
func (d *CPUDevice) ReadBuffer(id BufferID, offset int, dst []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, id)
	}
	if offset < 0 || offset+len(dst) > len(buf) {
		return fmt.Errorf("compute: read [%d,%d) outside buffer %d of %d words", offset, offset+len(dst), id, len(buf))
	}
	copy(dst, buf[offset:])
	return nil
}

// DestroyBuffer releases the buffer and drops any binding to it.
func (d *CPUDevice) DestroyBuffer(id BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, ok := d.buffers[id]
	if !ok {
		return
	}
	d.used -= int64(len(buf)) * 4
	delete(d.buffers, id)
	for slot, b := range d.storage {
		if b == id {
			delete(d.storage, slot)
		}
	}
}

// Compile scans the preamble and text, resolves the kernel entry and checks
// that every define it requires is present.
func (d *CPUDevice) Compile(src Source) (ProgramID, error) {
	u, err := scan(src.Name, src.Full())
	if err != nil {
		return InvalidID, err
	}
	if err := u.checkLocal(src.Name); err != nil {
		return InvalidID, err
	}
	k, ok := d.lib.Lookup(u.entry)
	if !ok {
		return InvalidID, fmt.Errorf("%w: %s: unknown kernel entry %q", ErrCompile, src.Name, u.entry)
	}
	for _, req := range k.Requires {
		if _, ok := u.defines[req]; !ok {
			return InvalidID, fmt.Errorf("%w: %s: %s needs define %s", ErrCompile, src.Name, u.entry, req)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := ProgramID(d.handle())
	d.programs[id] = &program{
		name:    src.Name,
		entry:   u.entry,
		kernel:  k,
		local:   u.local,
		defines: u.defines,
		ints:    map[string]int{},
		floats:  map[string]float32{},
	}
	d.logger.Debug("compiled kernel", "source", src.Name, "entry", u.entry, "local", u.local)
	return id, nil
}

// DestroyProgram releases a compiled program.
func (d *CPUDevice) DestroyProgram(id ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, id)
}

// SetUniformInt sets an integer uniform on p.
func (d *CPUDevice) SetUniformInt(p ProgramID, name string, v int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, ok := d.programs[p]
	if !ok {
		return fmt.Errorf("%w: program %d", ErrInvalidHandle, p)
	}
	prog.ints[name] = v
	return nil
}

// SetUniformFloat sets a float uniform on p.
func (d *CPUDevice) SetUniformFloat(p ProgramID, name string, v float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, ok := d.programs[p]
	if !ok {
		return fmt.Errorf("%w: program %d", ErrInvalidHandle, p)
	}
	prog.floats[name] = v
	return nil
}

// BindSurface attaches a surface to an image slot with the given access.
func (d *CPUDevice) BindSurface(slot int, id SurfaceID, access Access) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.surfaces[id]; !ok {
		return fmt.Errorf("%w: surface %d", ErrInvalidHandle, id)
	}
	if access < ReadOnly || access > ReadWrite {
		return fmt.Errorf("compute: bad access %d for slot %d", access, slot)
	}
	d.images[slot] = imageBinding{id: id, access: access}
	return nil
}

// BindBuffer attaches a buffer to a storage slot.
func (d *CPUDevice) BindBuffer(slot int, id BufferID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.buffers[id]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrInvalidHandle, id)
	}
	d.storage[slot] = id
	return nil
}

// Dispatch runs gx*gy*gz work-groups of program p against the current
// bindings.
func (d *CPUDevice) Dispatch(p ProgramID, gx, gy, gz int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, ok := d.programs[p]
	if !ok {
		return fmt.Errorf("%w: program %d", ErrInvalidHandle, p)
	}
	if gx <= 0 || gy <= 0 || gz <= 0 {
		return fmt.Errorf("%w: %s: empty work grid %dx%dx%d", ErrDispatch, prog.entry, gx, gy, gz)
	}
	if d.fault != nil {
		if err := d.fault(prog.entry); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDispatch, prog.entry, err)
		}
	}

	env := &Env{
		defines:  prog.defines,
		ints:     prog.ints,
		floats:   prog.floats,
		images:   make(map[int]*Image, len(d.images)),
		buffers:  make(map[int][]float32, len(d.storage)),
		invocs:   [3]int{gx * prog.local[0], gy * prog.local[1], gz * prog.local[2]},
		kernelID: prog.entry,
	}
	for slot, b := range d.images {
		s := d.surfaces[b.id]
		env.images[slot] = &Image{W: s.w, H: s.h, Pix: s.pix, access: b.access}
	}
	for slot, id := range d.storage {
		env.buffers[slot] = d.buffers[id]
	}

	body, err := setup(prog.kernel.Entry, env)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDispatch, prog.entry, err)
	}
	return d.run(prog.entry, body, env.invocs)
}

func setup(entry Entry, env *Env) (body Body, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panic: %v", r)
		}
	}()
	return entry(env)
}

func (d *CPUDevice) run(entry string, body Body, n [3]int) error {
	nx, ny, nz := n[0], n[1], n[2]
	rows := ny * nz
	band := max(1, rows/(d.workers*4))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for start := 0; start < rows; start += band {
		end := min(start+band, rows)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s: %v", ErrDispatch, entry, r)
				}
			}()
			for row := start; row < end; row++ {
				z, y := row/ny, row%ny
				for x := 0; x < nx; x++ {
					body(x, y, z)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Barrier is satisfied by Dispatch returning only after every band joined.
func (d *CPUDevice) Barrier() {}

// Finish reports no pending work; dispatches are synchronous.
func (d *CPUDevice) Finish() error { return nil }

// InUse reports the bytes currently allocated on the device.
func (d *CPUDevice) InUse() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}
