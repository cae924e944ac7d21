package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/mhr3/charbench/bench"
	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
	"github.com/mhr3/charbench/report"
)

var (
	rootCmd = &cobra.Command{
		Use:   "charbench",
		Short: "Compare scalar and vectorized character counting",
		Long: `charbench times a scalar counting loop against a SIMD-accelerated one
over deterministically filled, aligned buffers. Every run re-checks that
both implementations count the same thing before any numbers are
reported.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Time one counter over one configuration",
		Long: `Run times a single counter implementation. On a terminal with no
configuration flags given, an interactive form collects the parameters
first. With --plain the result is emitted as a raw CSV row on stdout.`,
		Args: cobra.NoArgs,
		RunE: runBenchmark,
	}

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "Time scalar against vector and report the speedup",
		Long: `Compare times both implementations over the same buffer and prints
the speedup. With --plain the vector result is emitted as a raw CSV row
on stdout for plotting pipelines.`,
		Args: cobra.NoArgs,
		RunE: runCompare,
	}

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Compare across a ladder of buffer sizes",
		Long: `Sweep repeats the scalar/vector comparison at each size of a ladder,
keeping every other parameter fixed. The cache ladder spans 1KB to 32MB;
the pow2 ladder walks powers of two between --min and --max.`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}

	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show counting kernels, cpu features, and version",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}

	// persistent flags
	configPath string
	presetName string
	verbose    bool
	noColor    bool

	// configuration flags, applied over the preset when set
	flagLength    int
	flagAlignment int
	flagReps      int
	flagWarmup    int
	flagSeed      uint64
	flagTarget    string
	flagMode      string
	flagOutputDir string
	flagExport    bool
	flagCompress  bool
	flagDetailed  bool

	flagImpl   string
	flagKernel string
	flagPlain  bool
	flagLadder string
	flagMin    int
	flagMax    int

	presetFile *config.File
)

// configFlagNames are the flags that shadow preset fields. Any of them
// being set also suppresses the interactive form.
var configFlagNames = []string{
	"length", "alignment", "reps", "warmup", "seed",
	"target", "mode", "output-dir", "export", "compress", "detailed",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "preset file (yaml)")
	pf.StringVarP(&presetName, "preset", "p", "", "preset name from the config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&noColor, "no-color", false, "disable styled output")

	for _, cmd := range []*cobra.Command{runCmd, compareCmd, sweepCmd} {
		addConfigFlags(cmd)
		cmd.Flags().StringVar(&flagKernel, "kernel", "", "force the vector kernel: scalar, swar, sse2")
	}
	runCmd.Flags().StringVar(&flagImpl, "impl", "vector", "counter implementation: scalar or vector")
	runCmd.Flags().BoolVar(&flagPlain, "plain", false, "raw CSV row on stdout")
	compareCmd.Flags().BoolVar(&flagPlain, "plain", false, "raw CSV row on stdout")
	sweepCmd.Flags().StringVar(&flagLadder, "ladder", "cache", "size ladder: cache or pow2")
	sweepCmd.Flags().IntVar(&flagMin, "min", 1<<10, "smallest pow2 ladder size")
	sweepCmd.Flags().IntVar(&flagMax, "max", 32<<20, "largest pow2 ladder size")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(infoCmd)
}

func addConfigFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVarP(&flagLength, "length", "l", config.DefaultLength, "buffer length in bytes, sentinel included")
	fl.IntVarP(&flagAlignment, "alignment", "a", config.DefaultAlignment, "buffer alignment, power of two")
	fl.IntVarP(&flagReps, "reps", "r", config.DefaultRepetitions, "timed repetitions")
	fl.IntVar(&flagWarmup, "warmup", config.DefaultWarmup, "untimed warm-up passes")
	fl.Uint64Var(&flagSeed, "seed", config.DefaultSeed, "deterministic fill seed")
	fl.StringVarP(&flagTarget, "target", "t", config.DefaultTarget, "byte to count")
	fl.StringVarP(&flagMode, "mode", "m", config.ModeTarget, "counting mode: target or all")
	fl.StringVarP(&flagOutputDir, "output-dir", "o", "", "directory for CSV exports")
	fl.BoolVar(&flagExport, "export", false, "write CSV exports")
	fl.BoolVar(&flagCompress, "compress", false, "gzip CSV exports")
	fl.BoolVar(&flagDetailed, "detailed", false, "detailed distribution output")
}

// setup configures logging and loads the preset file before any command
// runs.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if configPath != "" {
		f, err := config.Load(configPath)
		if err != nil {
			return err
		}
		presetFile = f
		slog.Debug("presets loaded",
			slog.String("file", configPath),
			slog.Int("count", len(f.Names())),
		)
	} else if presetName != "" {
		return errors.New("--preset requires --config")
	}
	return nil
}

// resolveConfig builds the run configuration: defaults, then the chosen
// preset, then any flags set on the command line.
func resolveConfig(cmd *cobra.Command) (config.Run, error) {
	cfg := config.Default()
	if presetFile != nil {
		var err error
		if cfg, err = presetFile.Preset(presetName); err != nil {
			return cfg, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("length") {
		cfg.Length = flagLength
	}
	if fl.Changed("alignment") {
		cfg.Alignment = flagAlignment
	}
	if fl.Changed("reps") {
		cfg.Repetitions = flagReps
	}
	if fl.Changed("warmup") {
		cfg.Warmup = flagWarmup
	}
	if fl.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if fl.Changed("target") {
		cfg.Target = flagTarget
	}
	if fl.Changed("mode") {
		cfg.Mode = flagMode
	}
	if fl.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if fl.Changed("export") {
		cfg.Export = flagExport
	}
	if fl.Changed("compress") {
		cfg.Compress = flagCompress
	}
	if fl.Changed("detailed") {
		cfg.Detailed = flagDetailed
	}
	return cfg, cfg.Validate()
}

func configFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range configFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func interactiveEligible(cmd *cobra.Command) bool {
	return stdinIsTTY() && stdoutIsTTY() && !flagPlain &&
		configPath == "" && !configFlagsChanged(cmd)
}

func counterFor(impl string) (count.Counter, error) {
	switch impl {
	case "scalar":
		return count.ScalarCounter{}, nil
	case "vector":
		return count.VectorCounter{}, nil
	default:
		return nil, fmt.Errorf("unknown implementation %q (scalar or vector)", impl)
	}
}

func forceKernel() error {
	if flagKernel == "" {
		return nil
	}
	return count.ForceKernel(flagKernel)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if interactiveEligible(cmd) {
		cfg, err = interactiveConfig(cfg)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	if err := forceKernel(); err != nil {
		return err
	}
	ctr, err := counterFor(flagImpl)
	if err != nil {
		return err
	}

	runner := &bench.Runner{}
	var res *bench.Result
	err = withProgress(runner, ctr.Name(), cfg.Repetitions, func() error {
		var err error
		res, err = runner.Run(cfg, ctr)
		return err
	})
	if err != nil {
		return err
	}

	if flagPlain {
		if res.Frequency != nil {
			err = report.WriteDistribution(os.Stdout, res.Frequency)
		} else {
			err = report.WritePlotRow(os.Stdout, res)
		}
		if err != nil {
			return err
		}
	} else {
		c := newConsole()
		c.Run(res)
		if cfg.Detailed && res.Frequency != nil {
			c.Frequency(res.Frequency, true)
		}
	}

	if cfg.Export {
		if err := exportResults(cfg, time.Now(), res); err != nil {
			return err
		}
	}
	if !res.Verified {
		return errors.New("scalar and vector counts disagree")
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := forceKernel(); err != nil {
		return err
	}

	runner := &bench.Runner{}
	var cres *bench.Comparison
	err = withProgress(runner, "compare", cfg.Repetitions, func() error {
		var err error
		cres, err = runner.Compare(cfg, count.ScalarCounter{}, count.VectorCounter{})
		return err
	})
	if err != nil {
		return err
	}

	if flagPlain {
		if err := report.WritePlotRow(os.Stdout, cres.Vector); err != nil {
			return err
		}
	} else {
		newConsole().Comparison(cres)
	}

	if cfg.Export {
		if err := exportResults(cfg, time.Now(), cres.Scalar, cres.Vector); err != nil {
			return err
		}
	}
	if !cres.Valid {
		return errors.New("comparison not valid: counts disagree")
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sizes, err := ladderSizes()
	if err != nil {
		return err
	}
	if err := forceKernel(); err != nil {
		return err
	}

	runner := &bench.Runner{}
	var cmps []*bench.Comparison
	err = withProgress(runner, "sweep", cfg.Repetitions, func() error {
		var err error
		cmps, err = runner.Sweep(cfg, sizes)
		return err
	})
	if err != nil {
		return err
	}

	newConsole().Sweep(cmps)

	if cfg.Export {
		now := time.Now()
		results := make([]*bench.Result, 0, 2*len(cmps))
		for _, cmp := range cmps {
			results = append(results, cmp.Scalar, cmp.Vector)
		}
		if err := exportSummary(cfg, now, results...); err != nil {
			return err
		}
	}

	invalid := 0
	for _, cmp := range cmps {
		if !cmp.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d comparisons not valid", invalid, len(cmps))
	}
	return nil
}

func ladderSizes() ([]int, error) {
	switch flagLadder {
	case "cache":
		return bench.CacheSizes(), nil
	case "pow2":
		if flagMin < 16 || flagMin&(flagMin-1) != 0 {
			return nil, fmt.Errorf("min must be a power of two of at least 16, got %d", flagMin)
		}
		if flagMax < flagMin {
			return nil, fmt.Errorf("max %d is below min %d", flagMax, flagMin)
		}
		return bench.Pow2Sizes(flagMin, flagMax), nil
	default:
		return nil, fmt.Errorf("unknown ladder %q (cache or pow2)", flagLadder)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	newConsole().Capabilities(count.Kernels(), count.KernelOverridden())
	fmt.Fprintf(os.Stdout, "cpu: sse2=%v popcnt=%v avx2=%v\n",
		cpu.X86.HasSSE2, cpu.X86.HasPOPCNT, cpu.X86.HasAVX2)
	fmt.Fprintf(os.Stdout, "charbench %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	return nil
}

// exportResults writes the timestamped run file, appends each result to
// the cumulative summary, and writes the distribution file when a full
// tally is present.
func exportResults(cfg config.Run, now time.Time, results ...*bench.Result) error {
	dir, err := ensureOutputDir(cfg)
	if err != nil {
		return err
	}

	runPath := filepath.Join(dir, report.RunFilename(now))
	err = report.Export(runPath, cfg.Compress, func(w io.Writer) error {
		for _, res := range results {
			if err := report.WriteRun(w, res, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := appendSummaries(dir, now, results); err != nil {
		return err
	}

	for _, res := range results {
		if res.Frequency == nil {
			continue
		}
		freq := res.Frequency
		distPath := filepath.Join(dir, report.DistributionFilename(now))
		err := report.Export(distPath, cfg.Compress, func(w io.Writer) error {
			return report.WriteDistribution(w, freq)
		})
		if err != nil {
			return err
		}
		break // identical tallies, one file
	}

	slog.Info("results exported", slog.String("file", runPath))
	return nil
}

// exportSummary appends results to the cumulative summary without
// writing a run file. Sweeps use it: the summary rows carry the length
// column the plots need.
func exportSummary(cfg config.Run, now time.Time, results ...*bench.Result) error {
	dir, err := ensureOutputDir(cfg)
	if err != nil {
		return err
	}
	if err := appendSummaries(dir, now, results); err != nil {
		return err
	}
	slog.Info("summary updated", slog.String("file", filepath.Join(dir, report.SummaryFilename)))
	return nil
}

func ensureOutputDir(cfg config.Run) (string, error) {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("output dir %s: %w", dir, err)
	}
	return dir, nil
}

func appendSummaries(dir string, now time.Time, results []*bench.Result) error {
	summary := filepath.Join(dir, report.SummaryFilename)
	for _, res := range results {
		if err := report.AppendSummary(summary, res, now); err != nil {
			return err
		}
	}
	return nil
}

func newConsole() *report.Console {
	return report.NewConsole(os.Stdout, noColor || !stdoutIsTTY())
}

func stdinIsTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func stderrIsTTY() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
