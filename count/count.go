// Package count implements the two character counters under
// comparison: a scalar reference that walks content one byte at a
// time and a vector counter that dispatches to the best block kernel
// the cpu offers. Both read the content region of an aligned buffer
// and must agree on every input; Verify and VerifyAll check exactly
// that.
package count

import (
	"time"

	"github.com/mhr3/charbench/buffer"
	"github.com/mhr3/charbench/internal/kernel"
)

// Metrics describes one counting pass.
type Metrics struct {
	Elapsed    time.Duration
	Length     int // full buffer length, sentinel included
	ContentLen int // bytes actually counted
	Alignment  int
	Unique     int // distinct values seen, full tallies only
}

// Milliseconds returns the elapsed time in fractional milliseconds.
func (m Metrics) Milliseconds() float64 {
	return float64(m.Elapsed) / float64(time.Millisecond)
}

// ThroughputMBps returns megabytes processed per second, over the full
// buffer length.
func (m Metrics) ThroughputMBps() float64 {
	if m.Elapsed <= 0 {
		return 0
	}
	return float64(m.Length) / m.Elapsed.Seconds() / (1 << 20)
}

// A Counter tallies characters over a buffer's content region.
// CountTarget returns occurrences of a single byte; CountAll returns
// the full per-value tally.
type Counter interface {
	Name() string
	CountTarget(b *buffer.Buffer, target byte) (uint64, Metrics)
	CountAll(b *buffer.Buffer) (Frequency, Metrics)
}

// ScalarCounter is the reference implementation. It never touches the
// vector kernels, so it stays trustworthy when those are suspect.
type ScalarCounter struct{}

func (ScalarCounter) Name() string { return "scalar" }

func (ScalarCounter) CountTarget(b *buffer.Buffer, target byte) (uint64, Metrics) {
	start := time.Now()
	n := kernel.CountScalar(b.Content(), target)
	return uint64(n), metricsFor(b, time.Since(start), 0)
}

func (ScalarCounter) CountAll(b *buffer.Buffer) (Frequency, Metrics) {
	start := time.Now()
	var counts [256]uint64
	for _, c := range b.Content() {
		counts[c]++
	}
	freq := newFrequency(&counts)
	return freq, metricsFor(b, time.Since(start), len(freq))
}

// VectorCounter counts through the active block kernel. With the
// kernel forced to scalar it degrades to reference behavior while
// keeping this code path.
type VectorCounter struct{}

func (VectorCounter) Name() string { return "vector/" + kernel.Active().String() }

func (VectorCounter) CountTarget(b *buffer.Buffer, target byte) (uint64, Metrics) {
	start := time.Now()
	n := kernel.Count(b.Content(), target)
	return uint64(n), metricsFor(b, time.Since(start), 0)
}

// CountAll finds the distinct values in one scalar pre-pass, then runs
// the block kernel once per distinct value. Text buffers hold under a
// hundred distinct values, so this stays a bounded number of scans.
func (VectorCounter) CountAll(b *buffer.Buffer) (Frequency, Metrics) {
	start := time.Now()
	content := b.Content()

	var seen [256]bool
	for _, c := range content {
		seen[c] = true
	}

	freq := make(Frequency)
	for v := 0; v < 256; v++ {
		if seen[v] {
			freq[byte(v)] = uint64(kernel.Count(content, byte(v)))
		}
	}
	return freq, metricsFor(b, time.Since(start), len(freq))
}

func metricsFor(b *buffer.Buffer, elapsed time.Duration, unique int) Metrics {
	return Metrics{
		Elapsed:    elapsed,
		Length:     b.Len(),
		ContentLen: b.ContentLen(),
		Alignment:  b.Alignment(),
		Unique:     unique,
	}
}
