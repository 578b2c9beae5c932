package lenia

import (
	"errors"
	"testing"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

func newLenia(t *testing.T, size core.Size, cfg Config) *Lenia {
	t.Helper()
	lib := compute.NewLibrary()
	if err := lib.AddAll(Kernels()); err != nil {
		t.Fatalf("kernels: %v", err)
	}
	l := New(core.Env{Device: compute.NewCPUDevice(lib)}, cfg)
	if err := l.Init(size); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(l.Release)
	return l
}

func TestUniformGridStaysUniform(t *testing.T) {
	size := core.Size{W: 4, H: 4}
	cfg := DefaultConfig()
	cfg.Params.Radius = 3
	l := newLenia(t, size, cfg)
	flat := make([]uint8, size.Cells())
	for i := range flat {
		flat[i] = 128
	}
	if err := l.Load(flat); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := l.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, err := l.Cells()
	if err != nil {
		t.Fatalf("cells: %v", err)
	}
	for i, v := range cells {
		if v != cells[0] {
			t.Fatalf("cell %d = %d, cell 0 = %d", i, v, cells[0])
		}
	}
	v := float32(128) / 255
	want := int(compute.Quantize(cfg.Params.Integrate(v, v)))
	if d := int(cells[0]) - want; d < -1 || d > 1 {
		t.Fatalf("uniform update = %d, want %d", cells[0], want)
	}
}

func TestGrowthPeakOnHalfState(t *testing.T) {
	// State 0.5 with mu 0.5 sits on the growth peak: 0.5 + 1/dt = 0.7.
	size := core.Size{W: 4, H: 4}
	cfg := DefaultConfig()
	cfg.Params.Radius = 3
	cfg.Params.Mu = 0.5
	cfg.Params.Dt = 5
	l := newLenia(t, size, cfg)
	half := make([]uint8, size.Cells())
	for i := range half {
		half[i] = 128
	}
	if err := l.Load(half); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := l.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, err := l.Cells()
	if err != nil {
		t.Fatalf("cells: %v", err)
	}
	for i, v := range cells {
		if v != cells[0] {
			t.Fatalf("cell %d = %d, cell 0 = %d", i, v, cells[0])
		}
	}
	if got := float64(cells[0]) / 255; got < 0.69 || got > 0.71 {
		t.Fatalf("state after one step = %.3f, want about 0.7", got)
	}
}

func TestZeroRadiusStaysInWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Radius = 0
	l := newLenia(t, core.Size{W: 8, H: 8}, cfg)
	if err := l.Reset(1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := l.Update(); err != nil {
		t.Fatalf("update with zero radius: %v", err)
	}
}

func TestRadiusBounds(t *testing.T) {
	l := newLenia(t, core.Size{W: 8, H: 8}, DefaultConfig())
	if err := l.SetRadius(core.DefaultMaxRadius + 1); !errors.Is(err, core.ErrRadiusRange) {
		t.Fatalf("expected ErrRadiusRange, got %v", err)
	}
	if l.Params().Radius != 15 {
		t.Fatalf("rejected radius changed params: %d", l.Params().Radius)
	}
	if !l.SetIntParameter("radius", 4) || l.Params().Radius != 4 {
		t.Fatalf("radius 4 rejected")
	}
	if l.SetFloatParameter("sigma", 0) {
		t.Fatalf("sigma 0 accepted")
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{"radius": "7", "mu": "0.2", "dt": "100", "seed": "9"})
	if c.Params.Radius != 7 || c.Params.Mu != 0.2 || c.Seed != 9 {
		t.Fatalf("config = %+v", c)
	}
	if c.Params.Dt != DefaultConfig().Params.Dt {
		t.Fatalf("out of range dt applied: %v", c.Params.Dt)
	}
}

func TestResetNoiseIsNotBinary(t *testing.T) {
	l := newLenia(t, core.Size{W: 16, H: 16}, DefaultConfig())
	if err := l.Reset(2); err != nil {
		t.Fatalf("reset: %v", err)
	}
	cells, _ := l.Cells()
	grey := 0
	for _, v := range cells {
		if v != 0 && v != 255 {
			grey++
		}
	}
	if grey < len(cells)/2 {
		t.Fatalf("only %d grey cells in %d", grey, len(cells))
	}
}

func BenchmarkUpdate(b *testing.B) {
	lib := compute.NewLibrary()
	_ = lib.AddAll(Kernels())
	l := New(core.Env{Device: compute.NewCPUDevice(lib)}, DefaultConfig())
	if err := l.Init(core.Size{W: 64, H: 64}); err != nil {
		b.Fatalf("init: %v", err)
	}
	defer l.Release()
	_ = l.Reset(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := l.Update(); err != nil {
			b.Fatalf("update: %v", err)
		}
	}
}
