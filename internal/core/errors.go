package core

import "errors"

var (
	// ErrNotInitialized is returned by operations on an automaton whose
	// surfaces were never allocated.
	ErrNotInitialized = errors.New("automaton not initialized")
	// ErrRadiusRange is returned when a radius is outside [1, max radius].
	ErrRadiusRange = errors.New("radius out of range")
)
