package ui

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	"gpu-ca/internal/sims/conway"
	"gpu-ca/internal/sims/lenia"
)

func env(t *testing.T) core.Env {
	t.Helper()
	lib := compute.NewLibrary()
	if err := lib.AddAll(lenia.Kernels()); err != nil {
		t.Fatalf("kernels: %v", err)
	}
	return core.Env{Device: compute.NewCPUDevice(lib)}
}

func TestPanelReadsLeniaControls(t *testing.T) {
	l := lenia.New(env(t), lenia.DefaultConfig())
	p := NewPanel(l)
	if p.Title != "Lenia Controls" {
		t.Fatalf("title = %q", p.Title)
	}
	if len(p.Controls) != 6 {
		t.Fatalf("controls = %d", len(p.Controls))
	}
	if p.Controls[0].Value != "15" || !p.Controls[0].HasValue() {
		t.Fatalf("radius value = %q", p.Controls[0].Value)
	}
}

func TestPanelAdjustClampsToBounds(t *testing.T) {
	l := lenia.New(env(t), lenia.DefaultConfig())
	p := NewPanel(l)
	for i := 0; i < 10; i++ {
		p.Adjust(0, 1)
	}
	if got := l.Params().Radius; got != lenia.DefaultConfig().MaxRadius {
		t.Fatalf("radius = %d, want max", got)
	}
	if p.CanAdjust(0, 1) {
		t.Fatalf("radius at max still adjustable upward")
	}
	if !p.CanAdjust(0, -1) {
		t.Fatalf("radius at max not adjustable downward")
	}
}

func TestPanelAdjustFloat(t *testing.T) {
	l := lenia.New(env(t), lenia.DefaultConfig())
	p := NewPanel(l)
	mu := -1
	for i, c := range p.Controls {
		if c.Control.Key == "mu" {
			mu = i
		}
	}
	if mu < 0 {
		t.Fatalf("mu control missing")
	}
	if !p.Adjust(mu, 1) {
		t.Fatalf("adjust mu failed")
	}
	p.Refresh()
	if p.Controls[mu].Value != "0.145" {
		t.Fatalf("mu = %q", p.Controls[mu].Value)
	}
}

func TestPanelSelectWraps(t *testing.T) {
	p := NewPanel(lenia.New(env(t), lenia.DefaultConfig()))
	p.Select(-1)
	if p.Selected != len(p.Controls)-1 {
		t.Fatalf("selected = %d", p.Selected)
	}
	p.Select(1)
	if p.Selected != 0 {
		t.Fatalf("selected = %d", p.Selected)
	}
}

func TestPanelWithoutParameters(t *testing.T) {
	c := conway.New(env(t), conway.DefaultConfig())
	p := NewPanel(c)
	if len(p.Controls) != 0 || p.Adjust(0, 1) {
		t.Fatalf("conway exposes controls")
	}
	p.Select(1)
	if p.Selected != 0 {
		t.Fatalf("selected moved without controls")
	}
}

func TestStatsLines(t *testing.T) {
	lines := Stats(lenia.New(env(t), lenia.DefaultConfig()))
	if len(lines) != 3 || lines[0] != "Type: lenia" || !strings.HasPrefix(lines[2], "Generation: 0") {
		t.Fatalf("stats = %q", lines)
	}
	if got := FormatDuration(1500 * time.Microsecond); got != "1.500 ms" {
		t.Fatalf("FormatDuration = %q", got)
	}
}

func TestActivityTracksChange(t *testing.T) {
	var a Activity
	frame := []byte{255, 255, 255, 0, 255, 255, 255, 255}
	if d := a.Observe(frame); d[0] != 0 || d[1] != 0 {
		t.Fatalf("first observation = %v", d)
	}
	frame[3], frame[7] = 255, 0
	d := a.Observe(frame)
	if d[0] != 1 || d[1] != -1 {
		t.Fatalf("delta = %v", d)
	}
	buf := make([]byte, 8)
	tintMask(buf, d, color.RGBA{G: 255}, color.RGBA{R: 255})
	if buf[3] == 0 || buf[7] == 0 || buf[1] == 0 || buf[4] == 0 {
		t.Fatalf("mask = %v", buf)
	}
	if buf[0] != 0 || buf[5] != 0 {
		t.Fatalf("tint leaked across channels: %v", buf)
	}
}
