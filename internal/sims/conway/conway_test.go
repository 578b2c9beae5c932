package conway

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

func newConway(t *testing.T, size core.Size, opts ...compute.CPUOption) *Conway {
	t.Helper()
	lib := compute.NewLibrary()
	if err := lib.AddAll(Kernels()); err != nil {
		t.Fatalf("kernels: %v", err)
	}
	c := New(core.Env{Device: compute.NewCPUDevice(lib, opts...)}, DefaultConfig())
	if err := c.Init(size); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(c.Release)
	return c
}

func pattern(size core.Size, live [][2]int) []uint8 {
	cells := make([]uint8, size.Cells())
	for _, p := range live {
		cells[size.Index(p[0], p[1])] = 255
	}
	return cells
}

func TestBlinkerOscillation(t *testing.T) {
	size := core.Size{W: 5, H: 5}
	c := newConway(t, size)
	if err := c.Load(pattern(size, [][2]int{{2, 1}, {2, 2}, {2, 3}})); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := c.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, _ := c.Cells()
	if want := pattern(size, [][2]int{{1, 2}, {2, 2}, {3, 2}}); !slices.Equal(cells, want) {
		t.Fatalf("after one step got %v, want %v", cells, want)
	}

	if err := c.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, _ = c.Cells()
	if want := pattern(size, [][2]int{{2, 1}, {2, 2}, {2, 3}}); !slices.Equal(cells, want) {
		t.Fatalf("after second step got %v, want %v", cells, want)
	}
}

func TestGliderTranslatesAcrossTorus(t *testing.T) {
	size := core.Size{W: 8, H: 8}
	glider := [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}
	c := newConway(t, size)
	if err := c.Load(pattern(size, glider)); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Eight periods carry the glider twice across the wrap seam.
	for period := 1; period <= 8; period++ {
		for i := 0; i < 4; i++ {
			if err := c.Update(); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
		moved := make([][2]int, len(glider))
		for i, p := range glider {
			moved[i] = [2]int{(p[0] + period) % size.W, (p[1] + period) % size.H}
		}
		cells, _ := c.Cells()
		if want := pattern(size, moved); !slices.Equal(cells, want) {
			t.Fatalf("period %d: glider not at expected offset", period)
		}
	}
	if c.Generation() != 32 {
		t.Fatalf("generation = %d, want 32", c.Generation())
	}
}

func TestDispatchFailureKeepsPreviousFrame(t *testing.T) {
	fail := false
	size := core.Size{W: 8, H: 8}
	c := newConway(t, size, compute.WithFaultInjector(func(string) error {
		if fail {
			return errors.New("lost")
		}
		return nil
	}))
	if err := c.Reset(3); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := c.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	before, _ := c.Cells()
	tex := c.CurrentTexture()

	fail = true
	if err := c.Update(); !errors.Is(err, compute.ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
	after, _ := c.Cells()
	if c.CurrentTexture() != tex || !slices.Equal(before, after) || c.Generation() != 1 {
		t.Fatalf("failed update changed the presented frame")
	}
}

func TestResetIsDeterministicAndBinary(t *testing.T) {
	size := core.Size{W: 16, H: 16}
	a := newConway(t, size)
	b := newConway(t, size)
	_ = a.Reset(9)
	_ = b.Reset(9)
	ca, _ := a.Cells()
	cb, _ := b.Cells()
	if !slices.Equal(ca, cb) {
		t.Fatalf("same seed produced different grids")
	}
	if slices.ContainsFunc(ca, func(v uint8) bool { return v != 0 && v != 255 }) {
		t.Fatalf("discrete reset produced grey cells")
	}
}

func TestRechargeKeepsGridState(t *testing.T) {
	size := core.Size{W: 8, H: 8}
	c := newConway(t, size)
	_ = c.Reset(5)
	before, _ := c.Cells()
	if err := c.RechargeKernels(); err != nil {
		t.Fatalf("recharge: %v", err)
	}
	after, _ := c.Cells()
	if !slices.Equal(before, after) {
		t.Fatalf("recharge touched grid state")
	}
	if err := c.Update(); err != nil {
		t.Fatalf("update after recharge: %v", err)
	}
}

func TestUpdateBeforeInit(t *testing.T) {
	c := New(core.Env{Device: compute.NewCPUDevice(nil)}, DefaultConfig())
	if err := c.Update(); !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

// writeKernel copies the embedded step kernel into dir, with its local_size
// line replaced by local.
func writeKernel(t *testing.T, dir, local string) {
	t.Helper()
	text, err := kernelFS.ReadFile(stepSource)
	if err != nil {
		t.Fatalf("read embedded kernel: %v", err)
	}
	src := strings.Replace(string(text), "#pragma local_size X_THREADS Y_THREADS Z_THREADS", local, 1)
	path := filepath.Join(dir, filepath.FromSlash(stepSource))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write kernel: %v", err)
	}
}

func overrideConway(t *testing.T, dir string) *Conway {
	t.Helper()
	lib := compute.NewLibrary()
	if err := lib.AddAll(Kernels()); err != nil {
		t.Fatalf("kernels: %v", err)
	}
	cfg := DefaultConfig()
	cfg.KernelDir = dir
	c := New(core.Env{Device: compute.NewCPUDevice(lib)}, cfg)
	t.Cleanup(c.Release)
	return c
}

func TestOverrideWithSmallerLocalSizeIsRejected(t *testing.T) {
	dir := t.TempDir()
	writeKernel(t, dir, "#pragma local_size 4 4 1")
	c := overrideConway(t, dir)
	if err := c.Init(core.Size{W: 16, H: 16}); !errors.Is(err, compute.ErrCompile) {
		t.Fatalf("expected ErrCompile, got %v", err)
	}
}

func TestRechargeToSmallerLocalSizeKeepsFullCoverage(t *testing.T) {
	dir := t.TempDir()
	writeKernel(t, dir, "#pragma local_size X_THREADS Y_THREADS Z_THREADS")
	size := core.Size{W: 16, H: 16}
	c := overrideConway(t, dir)
	if err := c.Init(size); err != nil {
		t.Fatalf("init: %v", err)
	}

	writeKernel(t, dir, "#pragma local_size 4 4 1")
	if err := c.RechargeKernels(); !errors.Is(err, compute.ErrCompile) {
		t.Fatalf("expected ErrCompile, got %v", err)
	}

	// Every cell of a full grid has eight live neighbours and dies.
	full := make([]uint8, size.Cells())
	for i := range full {
		full[i] = 255
	}
	if err := c.Load(full); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, _ := c.Cells()
	alive := 0
	for _, v := range cells {
		if v != 0 {
			alive++
		}
	}
	if alive != 0 {
		t.Fatalf("%d of %d cells skipped by the step", alive, len(cells))
	}
}

func TestReinitReleasesPreviousPrograms(t *testing.T) {
	c := newConway(t, core.Size{W: 8, H: 8})
	old := c.progs.ID(0)
	if err := c.Init(core.Size{W: 16, H: 16}); err != nil {
		t.Fatalf("reinit: %v", err)
	}
	if err := c.dev.Dispatch(old, 1, 1, 1); !errors.Is(err, compute.ErrInvalidHandle) {
		t.Fatalf("previous program still live after reinit: %v", err)
	}
	if err := c.Update(); err != nil {
		t.Fatalf("update after reinit: %v", err)
	}
}
