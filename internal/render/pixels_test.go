package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestShadeBlendsByAlpha(t *testing.T) {
	surface := []byte{255, 255, 255, 0, 255, 255, 255, 255, 255, 255, 255, 128}
	buf := make([]byte, len(surface))
	Shade(buf, surface, color.White, color.Black)
	if buf[0] != 0 || buf[3] != 255 {
		t.Fatalf("dead cell = %v", buf[0:4])
	}
	if buf[4] != 255 {
		t.Fatalf("live cell = %v", buf[4:8])
	}
	if buf[8] != 128 {
		t.Fatalf("half cell = %v", buf[8:12])
	}
}

func TestGlyphRamp(t *testing.T) {
	if Glyph(0) != ' ' || Glyph(255) != '@' {
		t.Fatalf("ramp ends = %q %q", Glyph(0), Glyph(255))
	}
}

func TestDownsampleAverages(t *testing.T) {
	// 4x2 surface: left half 0, right half 200.
	surface := make([]byte, 4*2*4)
	for y := 0; y < 2; y++ {
		for x := 2; x < 4; x++ {
			surface[(y*4+x)*4+3] = 200
		}
	}
	got := Downsample(surface, 4, 2, 2, 1)
	if len(got) != 2 || got[0] != 0 || got[1] != 200 {
		t.Fatalf("Downsample = %v", got)
	}
	if up := Downsample(surface, 4, 2, 8, 4); len(up) != 32 || up[7] != 200 {
		t.Fatalf("upsampled view = %v", up)
	}
}

func TestWritePNGScales(t *testing.T) {
	img := Image(2, 1, []byte{0, 0, 0, 0, 0, 0, 0, 255}, color.White, color.Black)
	var buf bytes.Buffer
	if err := WritePNG(&buf, img, 3); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
		t.Fatalf("bounds = %v", b)
	}
	if r, _, _, _ := out.At(5, 2).RGBA(); r>>8 != 255 {
		t.Fatalf("scaled live pixel red = %d", r>>8)
	}
}
