// Package bench drives the measured comparison between the scalar and
// vector counters: warm-up passes, repeated timed passes over one
// deterministic aligned buffer, and summary statistics. Allocation,
// fill and verification all happen outside the timed sections.
package bench

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/mhr3/charbench/buffer"
	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
)

// Sample is one timed counting pass.
type Sample struct {
	Elapsed   time.Duration
	Length    int
	Alignment int
}

// Result is the outcome of timing one counter over one configuration.
type Result struct {
	RunID     string
	Impl      string
	Config    config.Run
	Addr      uintptr // aligned buffer address, for alignment reporting
	Samples   []Sample
	Stats     Stats
	Count     uint64          // target mode: occurrences of the target
	Frequency count.Frequency // full mode: per-value tally, else nil
	Verified  bool            // equivalence gate outcome
}

// Throughput returns the mean throughput in MB/s over the full buffer.
func (r *Result) Throughput() float64 {
	return r.Stats.ThroughputMBps(r.Config.Length)
}

// A Runner times counters. The zero value is usable: logging falls
// back to slog.Default and progress goes unreported.
type Runner struct {
	Log      *slog.Logger
	Progress func(done, total int)
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r *Runner) report(done, total int) {
	if r.Progress != nil {
		r.Progress(done, total)
	}
}

// Run times ctr over a fresh deterministically filled buffer. The
// equivalence gate runs once per configuration before any timing; a
// failed gate marks the result unverified but the run still measures,
// so the mismatch can be inspected alongside its numbers.
func (r *Runner) Run(cfg config.Run, ctr count.Counter) (*Result, error) {
	arena := buffer.NewArena()
	defer arena.FreeAll()

	buf, err := arena.Alloc(cfg.Length, cfg.Alignment)
	if err != nil {
		return nil, fmt.Errorf("bench: allocate %d@%d: %w", cfg.Length, cfg.Alignment, err)
	}
	buffer.NewFiller(cfg.Seed).Fill(buf)

	res := &Result{
		RunID:    uuid.NewString(),
		Impl:     ctr.Name(),
		Config:   cfg,
		Addr:     buf.Addr(),
		Verified: r.verify(cfg, buf),
	}

	target := cfg.TargetByte()
	measure := func() Sample {
		var m count.Metrics
		if cfg.Mode == config.ModeAll {
			res.Frequency, m = ctr.CountAll(buf)
		} else {
			res.Count, m = ctr.CountTarget(buf, target)
		}
		return Sample{Elapsed: m.Elapsed, Length: m.Length, Alignment: m.Alignment}
	}

	for i := 0; i < cfg.Warmup; i++ {
		measure()
	}

	res.Samples = make([]Sample, 0, cfg.Repetitions)
	r.report(0, cfg.Repetitions)
	for i := 0; i < cfg.Repetitions; i++ {
		res.Samples = append(res.Samples, measure())
		r.report(i+1, cfg.Repetitions)
	}
	res.Stats = Summarize(res.Samples)

	r.logger().Debug("run complete",
		slog.String("run_id", res.RunID),
		slog.String("impl", res.Impl),
		slog.Int("length", cfg.Length),
		slog.Int("alignment", cfg.Alignment),
		slog.Bool("verified", res.Verified),
		slog.Duration("mean", res.Stats.Mean),
	)
	return res, nil
}

// verify runs the equivalence gate: one scalar and one vector pass
// over the same buffer, compared with the checker for the mode.
func (r *Runner) verify(cfg config.Run, buf *buffer.Buffer) bool {
	scalar, vector := count.ScalarCounter{}, count.VectorCounter{}
	if cfg.Mode == config.ModeAll {
		sf, _ := scalar.CountAll(buf)
		vf, _ := vector.CountAll(buf)
		return count.VerifyAll(r.logger(), buf, sf, vf)
	}
	s, _ := scalar.CountTarget(buf, cfg.TargetByte())
	v, _ := vector.CountTarget(buf, cfg.TargetByte())
	return count.Verify(r.logger(), buf, cfg.TargetByte(), s, v)
}

// Comparison pairs a scalar and a vector result over one
// configuration. Valid means both gates passed and the counts agree
// across the two runs.
type Comparison struct {
	Scalar *Result
	Vector *Result
	Valid  bool
}

// Speedup returns scalar mean time over vector mean time.
func (c *Comparison) Speedup() float64 {
	if c.Scalar == nil || c.Vector == nil || c.Vector.Stats.Mean <= 0 {
		return 0
	}
	return float64(c.Scalar.Stats.Mean) / float64(c.Vector.Stats.Mean)
}

// Compare times a then b over the same configuration. Both runs fill
// from the same seed, so they count identical bytes.
func (r *Runner) Compare(cfg config.Run, a, b count.Counter) (*Comparison, error) {
	ra, err := r.Run(cfg, a)
	if err != nil {
		return nil, err
	}
	rb, err := r.Run(cfg, b)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Scalar: ra, Vector: rb}
	cmp.Valid = ra.Verified && rb.Verified && countsAgree(cfg.Mode, ra, rb)
	if !cmp.Valid {
		r.logger().Warn("comparison not valid",
			slog.String("scalar_run", ra.RunID),
			slog.String("vector_run", rb.RunID),
		)
	}
	return cmp, nil
}

func countsAgree(mode string, a, b *Result) bool {
	if mode == config.ModeAll {
		return maps.Equal(a.Frequency, b.Frequency)
	}
	return a.Count == b.Count
}
