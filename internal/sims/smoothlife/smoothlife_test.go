package smoothlife

import (
	"math"
	"slices"
	"testing"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

func newSmoothLife(t *testing.T, size core.Size, cfg Config) *SmoothLife {
	t.Helper()
	lib := compute.NewLibrary()
	if err := lib.AddAll(Kernels()); err != nil {
		t.Fatalf("kernels: %v", err)
	}
	s := New(core.Env{Device: compute.NewCPUDevice(lib)}, cfg)
	if err := s.Init(size); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func TestLayoutMatchesStockRadii(t *testing.T) {
	l, err := NewLayout(core.Size{W: 64, H: 64}, 1.44, 12)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.NearNeighbors != 6 {
		t.Fatalf("near neighbours = %d, want 6", l.NearNeighbors)
	}
	if l.Depth != 6+2*25 {
		t.Fatalf("depth = %d", l.Depth)
	}
	if _, err := NewLayout(core.Size{W: 8, H: 8}, 3, 2); err == nil {
		t.Fatalf("outer <= inner accepted")
	}
}

func TestTableBoundsStayOnGrid(t *testing.T) {
	size := core.Size{W: 10, H: 7}
	l, _ := NewLayout(size, 1.44, 6)
	for _, policy := range []EdgePolicy{EdgeWrap, EdgeClamp} {
		table := BuildTable(l, policy)
		for i := 0; i < len(table); i += 2 {
			x, y := int(table[i]), int(table[i+1])
			if x < 0 || x >= size.W || y < 0 || y >= size.H {
				t.Fatalf("%v: entry %d = (%d,%d) off grid", policy, i/2, x, y)
			}
		}
	}
}

func TestNearNeighbourSlicesCoverInnerBlock(t *testing.T) {
	size := core.Size{W: 32, H: 32}
	l, _ := NewLayout(size, 1.44, 12)
	table := BuildTable(l, EdgeClamp)
	want := []Span{{X0: 4, X1: 6, Y: 4}, {X0: 4, X1: 6, Y: 5}, {X0: 4, X1: 6, Y: 6}}
	for i, w := range want {
		if got := SpanAt(table, l, 5, 5, 2*i); got != w {
			t.Fatalf("near slice %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestOuterSpansFollowCircle(t *testing.T) {
	size := core.Size{W: 64, H: 64}
	const col, row = 30, 30
	l, _ := NewLayout(size, 1.44, 12)
	table := BuildTable(l, EdgeWrap)
	cells := 0
	for d := l.NearNeighbors; d < l.Depth; d += 2 {
		y := (d-l.NearNeighbors)/2 - 12
		xoff := int(math.Floor(math.Sqrt(144 - float64(y*y))))
		got := SpanAt(table, l, col, row, d)
		if want := (Span{X0: col - xoff, X1: col + xoff, Y: row + y}); got != want {
			t.Fatalf("scan line %d = %+v, want %+v", y, got, want)
		}
		cells += got.Len(size.W)
	}
	disk := 0
	for y := -12; y <= 12; y++ {
		for x := -12; x <= 12; x++ {
			if x*x+y*y <= 144 {
				disk++
			}
		}
	}
	if cells != disk {
		t.Fatalf("spans cover %d cells, disk has %d", cells, disk)
	}
}

func TestWrapAndClampAgreeInInterior(t *testing.T) {
	size := core.Size{W: 40, H: 40}
	l, _ := NewLayout(size, 1.44, 5)
	wrap := BuildTable(l, EdgeWrap)
	clamp := BuildTable(l, EdgeClamp)
	for d := 0; d < l.Depth; d += 2 {
		if a, b := SpanAt(wrap, l, 20, 20, d), SpanAt(clamp, l, 20, 20, d); a != b {
			t.Fatalf("slice %d: wrap %+v clamp %+v", d, a, b)
		}
	}
	if a, b := SpanAt(wrap, l, 0, 0, l.NearNeighbors), SpanAt(clamp, l, 0, 0, l.NearNeighbors); a == b {
		t.Fatalf("corner spans identical under both policies: %+v", a)
	}
}

func TestWrappedSpanCoversFullRow(t *testing.T) {
	size := core.Size{W: 8, H: 8}
	l, _ := NewLayout(size, 1.44, 6)
	table := BuildTable(l, EdgeWrap)
	mid := SpanAt(table, l, 3, 3, l.NearNeighbors+2*6)
	if mid.Len(size.W) != size.W {
		t.Fatalf("wide span covers %d cells of %d", mid.Len(size.W), size.W)
	}
	edge := SpanAt(table, l, 0, 0, l.NearNeighbors)
	if edge.Len(size.W) != 1 || edge.Y != 2 {
		t.Fatalf("top span %+v", edge)
	}
}

func TestEmptyGridStaysEmpty(t *testing.T) {
	size := core.Size{W: 16, H: 16}
	s := newSmoothLife(t, size, DefaultConfig())
	if err := s.Clean(); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if err := s.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	cells, _ := s.Cells()
	if slices.ContainsFunc(cells, func(v uint8) bool { return v != 0 }) {
		t.Fatalf("empty grid grew cells")
	}
}

func TestFullGridDies(t *testing.T) {
	size := core.Size{W: 16, H: 16}
	s := newSmoothLife(t, size, DefaultConfig())
	full := make([]uint8, size.Cells())
	for i := range full {
		full[i] = 255
	}
	_ = s.Load(full)
	if err := s.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	rings, err := s.Rings()
	if err != nil {
		t.Fatalf("rings: %v", err)
	}
	m, n := rings[0].Fillings()
	if m != 1 || n != 1 {
		t.Fatalf("full grid fillings = (%v, %v)", m, n)
	}
	cells, _ := s.Cells()
	if slices.ContainsFunc(cells, func(v uint8) bool { return v != 0 }) {
		t.Fatalf("overcrowded cells survived")
	}
}

func TestRingCountsMatchDisks(t *testing.T) {
	size := core.Size{W: 32, H: 32}
	cfg := DefaultConfig()
	cfg.OuterRadius = 6
	s := newSmoothLife(t, size, cfg)
	_ = s.Reset(3)
	if err := s.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	rings, _ := s.Rings()
	for i, r := range rings {
		if r.Inner.Count != 9 {
			t.Fatalf("cell %d inner count %v, want 9", i, r.Inner.Count)
		}
		if r.Outer.Count != rings[0].Outer.Count {
			t.Fatalf("cell %d outer count %v differs on a torus", i, r.Outer.Count)
		}
		if r.Inner.Live > r.Outer.Live {
			t.Fatalf("cell %d inner sum exceeds outer", i)
		}
	}
}

func TestSetFloatParameter(t *testing.T) {
	s := New(core.Env{Device: compute.NewCPUDevice(nil)}, DefaultConfig())
	if !s.SetFloatParameter("b1", 0.25) || s.cfg.Params.B1 != 0.25 {
		t.Fatalf("b1 not updated")
	}
	if s.SetFloatParameter("b1", 2) || s.SetFloatParameter("radius", 0.5) {
		t.Fatalf("invalid update accepted")
	}
}
