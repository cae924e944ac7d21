package bench

import (
	"math"
	"slices"
	"time"
)

// Stats summarizes the timing samples of one run.
type Stats struct {
	Mean   time.Duration
	Median time.Duration
	StdDev time.Duration
	Min    time.Duration
	Max    time.Duration
}

// Summarize computes mean, median, population standard deviation, min
// and max. An empty sample set returns the zero value.
func Summarize(samples []Sample) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	durs := make([]float64, len(samples))
	var sum float64
	lo, hi := samples[0].Elapsed, samples[0].Elapsed
	for i, s := range samples {
		durs[i] = float64(s.Elapsed)
		sum += durs[i]
		if s.Elapsed < lo {
			lo = s.Elapsed
		}
		if s.Elapsed > hi {
			hi = s.Elapsed
		}
	}
	mean := sum / float64(len(durs))

	// population variance: the repetitions are the whole population,
	// not a sample of a larger one
	var sq float64
	for _, d := range durs {
		diff := d - mean
		sq += diff * diff
	}
	std := math.Sqrt(sq / float64(len(durs)))

	slices.Sort(durs)
	var median float64
	if n := len(durs); n%2 == 1 {
		median = durs[n/2]
	} else {
		median = (durs[n/2-1] + durs[n/2]) / 2
	}

	return Stats{
		Mean:   time.Duration(mean),
		Median: time.Duration(median),
		StdDev: time.Duration(std),
		Min:    lo,
		Max:    hi,
	}
}

// ThroughputMBps converts the mean duration into megabytes per second
// for a buffer of length bytes.
func (s Stats) ThroughputMBps(length int) float64 {
	if s.Mean <= 0 {
		return 0
	}
	return float64(length) / s.Mean.Seconds() / (1 << 20)
}
