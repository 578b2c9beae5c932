package core

import (
	"errors"
	"testing"
)

func TestLeniaParamsSetRespectsBounds(t *testing.T) {
	p := DefaultLeniaParams()
	if !p.Set("radius", 20, DefaultMaxRadius) || p.Radius != 20 {
		t.Fatalf("radius 20 rejected")
	}
	if p.Set("radius", 21, DefaultMaxRadius) || p.Radius != 20 {
		t.Fatalf("radius 21 accepted")
	}
	if p.Set("radius", 0, DefaultMaxRadius) {
		t.Fatalf("radius 0 accepted")
	}
	if p.Set("radius", 2.5, DefaultMaxRadius) {
		t.Fatalf("fractional radius accepted")
	}
	if !p.Set("mu", 0.3, DefaultMaxRadius) || p.Mu != 0.3 {
		t.Fatalf("mu not updated: %v", p.Mu)
	}
	if p.Set("unknown", 1, DefaultMaxRadius) {
		t.Fatalf("unknown key accepted")
	}
}

func TestCheckRadius(t *testing.T) {
	if err := CheckRadius(DefaultMaxRadius, DefaultMaxRadius); err != nil {
		t.Fatalf("max radius rejected: %v", err)
	}
	if err := CheckRadius(DefaultMaxRadius+1, DefaultMaxRadius); !errors.Is(err, ErrRadiusRange) {
		t.Fatalf("expected ErrRadiusRange, got %v", err)
	}
}

func TestSnapshotLookup(t *testing.T) {
	snap := ParameterSnapshot{Groups: []ParameterGroup{DefaultLeniaParams().Snapshot()}}
	p, ok := snap.Lookup("radius")
	if !ok || p.Value != "15" {
		t.Fatalf("radius param = %+v", p)
	}
	p, ok = snap.Lookup("mu")
	if !ok || p.Value != "0.14" {
		t.Fatalf("mu param = %+v", p)
	}
}
