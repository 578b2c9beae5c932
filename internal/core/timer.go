package core

import "time"

// FixedStep paces generations at a steady rate independent of how often the
// host polls it.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewFixedStep returns a pacer targeting tps generations per second. The first
// poll always steps.
func NewFixedStep(tps int) *FixedStep {
	f := &FixedStep{}
	f.SetTPS(tps)
	f.Restart()
	return f
}

// SetTPS changes the rate; non-positive values fall back to 60.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the interval between generations.
func (f *FixedStep) Step() time.Duration { return f.step }

// Restart drops any backlog, so that resuming after a pause does not burst.
func (f *FixedStep) Restart() {
	f.last = time.Time{}
	f.accumulator = f.step
}

// ShouldStep reports whether a generation is due now.
func (f *FixedStep) ShouldStep() bool { return f.Due(time.Now()) }

// Due reports whether a generation is due at now, consuming one step of
// accumulated time when it is. Callers poll it until false to catch up.
func (f *FixedStep) Due(now time.Time) bool {
	if f.last.IsZero() {
		f.last = now
	}
	if now.After(f.last) {
		f.accumulator += now.Sub(f.last)
		f.last = now
	}
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}

// Stopwatch records how long the most recent update took.
type Stopwatch struct {
	last  time.Duration
	total time.Duration
	runs  int
}

// Time starts measuring and returns the function that stops it.
func (s *Stopwatch) Time() func() {
	start := time.Now()
	return func() {
		s.last = time.Since(start)
		s.total += s.last
		s.runs++
	}
}

// Last returns the duration of the most recent measurement.
func (s *Stopwatch) Last() time.Duration { return s.last }

// Mean returns the average duration across all measurements.
func (s *Stopwatch) Mean() time.Duration {
	if s.runs == 0 {
		return 0
	}
	return s.total / time.Duration(s.runs)
}

// Reset forgets all measurements.
func (s *Stopwatch) Reset() { *s = Stopwatch{} }
