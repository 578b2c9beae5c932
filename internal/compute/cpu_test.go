package compute

import (
	"errors"
	"strings"
	"testing"
)

const copySource = `
#pragma kernel test.copy
#pragma local_size X_THREADS Y_THREADS 1
`

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary()
	err := lib.AddAll(map[string]Kernel{
		"test.copy": {
			Requires: []string{"PREV_IMG_BIND", "CURR_IMG_BIND"},
			Entry: func(env *Env) (Body, error) {
				prev, err := env.Image("PREV_IMG_BIND")
				if err != nil {
					return nil, err
				}
				curr, err := env.Image("CURR_IMG_BIND")
				if err != nil {
					return nil, err
				}
				return func(x, y, _ int) {
					if x >= prev.W || y >= prev.H {
						return
					}
					curr.SetAlpha(x, y, prev.Alpha(x, y))
				}, nil
			},
		},
		"test.visit": {
			Entry: func(env *Env) (Body, error) {
				buf, err := env.Buffer("COUNTER_BIND")
				if err != nil {
					return nil, err
				}
				nx, ny, _ := env.Invocations()
				return func(x, y, z int) {
					buf[(z*ny+y)*nx+x]++
				}, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("register kernels: %v", err)
	}
	return lib
}

func bindDefines() []Define {
	return []Define{
		IntDefine("X_THREADS", 8),
		IntDefine("Y_THREADS", 8),
		IntDefine("PREV_IMG_BIND", 0),
		IntDefine("CURR_IMG_BIND", 1),
		IntDefine("COUNTER_BIND", 2),
	}
}

func TestPreambleRendersDefines(t *testing.T) {
	got := Preamble([]Define{IntDefine("MAX_RADIUS", 20), FloatDefine("O_RADIUS", 12)})
	want := "#version 460\n#define MAX_RADIUS 20\n#define O_RADIUS 12\n"
	if got != want {
		t.Fatalf("preamble = %q, want %q", got, want)
	}
}

func TestCompileErrors(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t))
	cases := map[string]Source{
		"no entry":      {Name: "empty", Text: "void main() {}\n", Defines: bindDefines()},
		"unknown entry": {Name: "unknown", Text: "#pragma kernel nope\n", Defines: bindDefines()},
		"missing define": {
			Name: "copy",
			Text: copySource,
			Defines: []Define{
				IntDefine("X_THREADS", 8), IntDefine("Y_THREADS", 8), IntDefine("PREV_IMG_BIND", 0),
			},
		},
		"bad local size": {Name: "bad", Text: "#pragma kernel test.copy\n#pragma local_size 8 x 1\n", Defines: bindDefines()},
		"local size off the thread defines": {Name: "small", Text: "#pragma kernel test.copy\n#pragma local_size 4 4 1\n", Defines: bindDefines()},
	}
	for name, src := range cases {
		if _, err := dev.Compile(src); !errors.Is(err, ErrCompile) {
			t.Fatalf("%s: expected ErrCompile, got %v", name, err)
		}
	}
}

func TestDispatchCopiesSurface(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t), WithWorkers(3))
	const w, h = 13, 9
	prev, err := dev.CreateSurface(w, h)
	if err != nil {
		t.Fatalf("create prev: %v", err)
	}
	curr, err := dev.CreateSurface(w, h)
	if err != nil {
		t.Fatalf("create curr: %v", err)
	}
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4+3] = byte(i)
	}
	if err := dev.WriteSurface(prev, pix); err != nil {
		t.Fatalf("write: %v", err)
	}
	prog, err := dev.Compile(Source{Name: "copy", Text: copySource, Defines: bindDefines()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := dev.BindSurface(0, prev, ReadOnly); err != nil {
		t.Fatalf("bind prev: %v", err)
	}
	if err := dev.BindSurface(1, curr, WriteOnly); err != nil {
		t.Fatalf("bind curr: %v", err)
	}
	if err := dev.Dispatch(prog, Groups(w, 8), Groups(h, 8), 1); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	out := make([]byte, w*h*4)
	if err := dev.ReadSurface(curr, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i := 0; i < w*h; i++ {
		if out[i*4+3] != byte(i) || out[i*4] != 255 {
			t.Fatalf("cell %d = %v, want alpha %d with rgb 255", i, out[i*4:i*4+4], i)
		}
	}
}

func TestDispatchVisitsEveryItemOnce(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t), WithWorkers(4))
	prog, err := dev.Compile(Source{Name: "visit", Text: "#pragma kernel test.visit\n", Defines: bindDefines()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	const gx, gy, gz = 3, 2, 5
	words := gx * 8 * gy * 8 * gz
	buf, err := dev.CreateBuffer(words)
	if err != nil {
		t.Fatalf("buffer: %v", err)
	}
	if err := dev.BindBuffer(2, buf); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := dev.Dispatch(prog, gx, gy, gz); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	out := make([]float32, words)
	if err := dev.ReadBuffer(buf, 0, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, v := range out {
		if v != 1 {
			t.Fatalf("item %d visited %v times", i, v)
		}
	}
}

func TestWriteToReadOnlySurfaceFailsDispatch(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t))
	a, _ := dev.CreateSurface(8, 8)
	b, _ := dev.CreateSurface(8, 8)
	prog, err := dev.Compile(Source{Name: "copy", Text: copySource, Defines: bindDefines()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_ = dev.BindSurface(0, a, ReadOnly)
	_ = dev.BindSurface(1, b, ReadOnly)
	err = dev.Dispatch(prog, 1, 1, 1)
	if !errors.Is(err, ErrDispatch) || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("expected read-only violation, got %v", err)
	}
}

func TestMissingBindingFailsDispatch(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t))
	prog, err := dev.Compile(Source{Name: "copy", Text: copySource, Defines: bindDefines()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := dev.Dispatch(prog, 1, 1, 1); !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
}

func TestFaultInjector(t *testing.T) {
	dev := NewCPUDevice(testLibrary(t), WithFaultInjector(func(kernel string) error {
		return errors.New("device lost")
	}))
	prog, err := dev.Compile(Source{Name: "visit", Text: "#pragma kernel test.visit\n", Defines: bindDefines()})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := dev.Dispatch(prog, 1, 1, 1); !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
}

func TestMemoryLimit(t *testing.T) {
	dev := NewCPUDevice(nil, WithMemoryLimit(8*8*4))
	id, err := dev.CreateSurface(8, 8)
	if err != nil {
		t.Fatalf("first surface: %v", err)
	}
	if _, err := dev.CreateSurface(1, 1); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	dev.DestroySurface(id)
	if dev.InUse() != 0 {
		t.Fatalf("in use after destroy = %d", dev.InUse())
	}
	if _, err := dev.CreateSurface(8, 8); err != nil {
		t.Fatalf("allocation after release: %v", err)
	}
}

func TestReleasedHandleIsInvalid(t *testing.T) {
	dev := NewCPUDevice(nil)
	id, _ := dev.CreateSurface(2, 2)
	dev.DestroySurface(id)
	if err := dev.ReadSurface(id, make([]byte, 16)); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle, got %v", err)
	}
	if err := dev.BindSurface(0, id, ReadOnly); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("expected ErrInvalidHandle on bind, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	for _, n := range []int{1, 5, 8} {
		if Wrap(-1, n) != n-1 {
			t.Fatalf("Wrap(-1,%d) = %d", n, Wrap(-1, n))
		}
		if Wrap(n, n) != 0 {
			t.Fatalf("Wrap(%d,%d) = %d", n, n, Wrap(n, n))
		}
		for v := -3 * n; v < 3*n; v++ {
			if Wrap(Wrap(v, n), n) != Wrap(v, n) {
				t.Fatalf("Wrap not idempotent at %d mod %d", v, n)
			}
		}
	}
	im := &Image{W: 3, H: 2, Pix: make([]byte, 3*2*4), access: ReadOnly}
	im.Pix[(1*3+2)*4+3] = 51
	if im.AlphaWrap(-1, -1) != im.Alpha(2, 1) || im.AlphaWrap(5, 3) != im.Alpha(2, 1) {
		t.Fatalf("wrapped read differs from edge cell")
	}
}

func TestQuantize(t *testing.T) {
	cases := map[float32]uint8{-1: 0, 0: 0, 0.5: 128, 1: 255, 2: 255}
	for in, want := range cases {
		if got := Quantize(in); got != want {
			t.Fatalf("Quantize(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestOverlayLoaderPrefersFirst(t *testing.T) {
	a := mapLoader{"k.comp": "override"}
	b := mapLoader{"k.comp": "default", "other.comp": "fallback"}
	o := Overlay{a, b}
	if got, _ := o.Load("k.comp"); got != "override" {
		t.Fatalf("got %q", got)
	}
	if got, _ := o.Load("other.comp"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
	if _, err := o.Load("missing.comp"); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

type mapLoader map[string]string

func (m mapLoader) Load(path string) (string, error) {
	if s, ok := m[path]; ok {
		return s, nil
	}
	return "", errors.New("not found")
}
