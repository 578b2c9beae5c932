package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gpu-ca/internal/core"
)

type parameterProvider interface {
	Parameters() core.ParameterSnapshot
}

// ControlState is the presentation state of one adjustable parameter.
type ControlState struct {
	Control core.ParameterControl
	Value   string

	intValue   int
	floatValue float64
	hasValue   bool
}

// HasValue reports whether the control's current value could be read.
func (c ControlState) HasValue() bool { return c.hasValue }

// Panel tracks the parameter controls of one automaton independently of how
// they are drawn.
type Panel struct {
	sim      core.Automaton
	Title    string
	Controls []ControlState
	Selected int

	snapshot    core.ParameterSnapshot
	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
}

// NewPanel builds the control list for sim.
func NewPanel(sim core.Automaton) *Panel {
	p := &Panel{sim: sim, Title: buildTitle(sim)}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			p.Controls = append(p.Controls, ControlState{Control: ctrl, Value: "--"})
		}
	}
	p.intSetter, _ = sim.(core.IntParameterSetter)
	p.floatSetter, _ = sim.(core.FloatParameterSetter)
	p.Refresh()
	return p
}

// Sim returns the automaton the panel controls.
func (p *Panel) Sim() core.Automaton { return p.sim }

// Snapshot returns the parameters read by the last Refresh.
func (p *Panel) Snapshot() core.ParameterSnapshot { return p.snapshot }

func buildTitle(sim core.Automaton) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return fmt.Sprintf("%s Controls", strings.ToUpper(name[:1])+name[1:])
}

// Refresh re-reads parameter values from the automaton.
func (p *Panel) Refresh() {
	provider, ok := p.sim.(parameterProvider)
	if !ok {
		p.snapshot = core.ParameterSnapshot{}
		return
	}
	p.snapshot = provider.Parameters()
	for i := range p.Controls {
		state := &p.Controls[i]
		state.hasValue = false
		state.Value = "--"
		param, ok := p.snapshot.Lookup(state.Control.Key)
		if !ok {
			continue
		}
		switch state.Control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.floatValue = float64(parsed)
			state.Value = strconv.Itoa(parsed)
			state.hasValue = true
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.Value = formatFloat(state.Control, parsed)
			state.hasValue = true
		}
	}
}

// Select moves the keyboard selection, wrapping around.
func (p *Panel) Select(delta int) {
	if len(p.Controls) == 0 {
		return
	}
	n := len(p.Controls)
	p.Selected = ((p.Selected+delta)%n + n) % n
}

// Adjust steps control i in direction (+1 or -1) and applies it to the
// automaton. It reports whether the value changed.
func (p *Panel) Adjust(i, direction int) bool {
	if i < 0 || i >= len(p.Controls) || direction == 0 {
		return false
	}
	state := &p.Controls[i]
	if !state.hasValue {
		return false
	}
	switch state.Control.Type {
	case core.ParamTypeInt:
		if p.intSetter == nil {
			return false
		}
		target := p.intTarget(state, direction)
		if target == state.intValue {
			return false
		}
		if !p.intSetter.SetIntParameter(state.Control.Key, target) {
			return false
		}
		state.intValue = target
		state.floatValue = float64(target)
		state.Value = strconv.Itoa(target)
		return true
	case core.ParamTypeFloat:
		if p.floatSetter == nil {
			return false
		}
		target := p.floatTarget(state, direction)
		if math.Abs(target-state.floatValue) < 1e-9 {
			return false
		}
		if !p.floatSetter.SetFloatParameter(state.Control.Key, target) {
			return false
		}
		state.floatValue = target
		state.Value = formatFloat(state.Control, target)
		return true
	}
	return false
}

// CanAdjust reports whether a step in direction would stay within bounds.
func (p *Panel) CanAdjust(i, direction int) bool {
	if i < 0 || i >= len(p.Controls) || direction == 0 {
		return false
	}
	state := &p.Controls[i]
	if !state.hasValue {
		return false
	}
	switch state.Control.Type {
	case core.ParamTypeInt:
		if p.intSetter == nil {
			return false
		}
		return p.intTarget(state, direction) != state.intValue
	case core.ParamTypeFloat:
		if p.floatSetter == nil {
			return false
		}
		return math.Abs(p.floatTarget(state, direction)-state.floatValue) > 1e-9
	}
	return false
}

func (p *Panel) intTarget(state *ControlState, direction int) int {
	step := int(math.Round(state.Control.Step))
	if step <= 0 {
		step = 1
	}
	target := state.intValue + direction*step
	if state.Control.HasMin && target < int(math.Round(state.Control.Min)) {
		target = int(math.Round(state.Control.Min))
	}
	if state.Control.HasMax && target > int(math.Round(state.Control.Max)) {
		target = int(math.Round(state.Control.Max))
	}
	return target
}

func (p *Panel) floatTarget(state *ControlState, direction int) float64 {
	step := state.Control.Step
	if step <= 0 {
		step = 0.05
	}
	target := state.floatValue + float64(direction)*step
	if state.Control.HasMin && target < state.Control.Min {
		target = state.Control.Min
	}
	if state.Control.HasMax && target > state.Control.Max {
		target = state.Control.Max
	}
	return target
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// Stats returns the status lines shown for an automaton.
func Stats(sim core.Automaton) []string {
	if sim == nil {
		return nil
	}
	return []string{
		"Type: " + sim.Name(),
		"Update: " + FormatDuration(sim.UpdateTime()),
		"Generation: " + strconv.Itoa(sim.Generation()),
	}
}

// FormatDuration prints d in milliseconds with microsecond resolution.
func FormatDuration(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64) + " ms"
}
