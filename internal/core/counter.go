package core

// Counter is a weighted (sum, total) pair stored as two consecutive float32
// words in a device buffer.
type Counter struct {
	Live  float32
	Count float32
}

// CounterWords is the buffer footprint of one Counter.
const CounterWords = 2

// LoadCounter reads the Counter at element index i.
func LoadCounter(buf []float32, i int) Counter {
	return Counter{Live: buf[i*CounterWords], Count: buf[i*CounterWords+1]}
}

// Store writes c at element index i.
func (c Counter) Store(buf []float32, i int) {
	buf[i*CounterWords] = c.Live
	buf[i*CounterWords+1] = c.Count
}

// Add accumulates o into c.
func (c Counter) Add(o Counter) Counter {
	return Counter{Live: c.Live + o.Live, Count: c.Count + o.Count}
}

// Average returns Live/Count, or zero for an empty counter.
func (c Counter) Average() float32 {
	if c.Count == 0 {
		return 0
	}
	return c.Live / c.Count
}

// RingCounter holds the inner disk and outer disk sums of one cell.
type RingCounter struct {
	Inner Counter
	Outer Counter
}

// RingWords is the buffer footprint of one RingCounter.
const RingWords = 2 * CounterWords

// LoadRing reads the RingCounter at element index i.
func LoadRing(buf []float32, i int) RingCounter {
	base := i * RingWords
	return RingCounter{
		Inner: Counter{Live: buf[base], Count: buf[base+1]},
		Outer: Counter{Live: buf[base+2], Count: buf[base+3]},
	}
}

// Store writes r at element index i.
func (r RingCounter) Store(buf []float32, i int) {
	base := i * RingWords
	buf[base] = r.Inner.Live
	buf[base+1] = r.Inner.Count
	buf[base+2] = r.Outer.Live
	buf[base+3] = r.Outer.Count
}

// Fillings returns the inner filling m and the annulus filling n.
func (r RingCounter) Fillings() (m, n float32) {
	m = r.Inner.Average()
	n = Counter{Live: r.Outer.Live - r.Inner.Live, Count: r.Outer.Count - r.Inner.Count}.Average()
	return m, n
}
