package view

import (
	"strings"
	"testing"
)

func surface(w, h int, alive func(x, y int) bool) []byte {
	s := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			s[i], s[i+1], s[i+2] = 255, 255, 255
			if alive(x, y) {
				s[i+3] = 255
			}
		}
	}
	return s
}

func TestFieldMatchesGridWhenViewIsLarger(t *testing.T) {
	s := surface(3, 2, func(x, y int) bool { return x == y })
	got := Field(s, 3, 2, 80, 24, PlainPainter)
	want := "@  \n @ "
	if got != want {
		t.Fatalf("Field = %q, want %q", got, want)
	}
}

func TestFieldDownsamples(t *testing.T) {
	s := surface(8, 8, func(x, y int) bool { return x < 4 })
	got := strings.Split(Field(s, 8, 8, 2, 2, PlainPainter), "\n")
	if len(got) != 2 || got[0] != "@ " || got[1] != "@ " {
		t.Fatalf("Field = %q", got)
	}
}

func TestColorPainterKeepsEmptyCellsPlain(t *testing.T) {
	if ColorPainter(0) != " " {
		t.Fatalf("empty cell = %q", ColorPainter(0))
	}
	if !strings.Contains(ColorPainter(255), "@") {
		t.Fatalf("full cell = %q", ColorPainter(255))
	}
}
