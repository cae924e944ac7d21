package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/mhr3/charbench/config"
)

// interactiveConfig walks the run parameters in a form, starting from
// base. Numeric fields validate as they are typed; the assembled run is
// validated once more before it is returned.
func interactiveConfig(base config.Run) (config.Run, error) {
	cfg := base
	length := strconv.Itoa(cfg.Length)
	alignment := strconv.Itoa(cfg.Alignment)
	reps := strconv.Itoa(cfg.Repetitions)
	warmup := strconv.Itoa(cfg.Warmup)
	seed := strconv.FormatUint(cfg.Seed, 10)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Buffer length (bytes)").
				Description("includes the final sentinel byte").
				Value(&length).
				Validate(intAtLeast(16)),
			huh.NewInput().
				Title("Alignment (bytes)").
				Description("power of two up to 4096").
				Value(&alignment).
				Validate(validAlignment),
			huh.NewInput().
				Title("Repetitions").
				Value(&reps).
				Validate(intAtLeast(1)),
			huh.NewInput().
				Title("Warm-up passes").
				Value(&warmup).
				Validate(intAtLeast(0)),
			huh.NewInput().
				Title("Seed").
				Value(&seed).
				Validate(validSeed),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("count one byte", config.ModeTarget),
					huh.NewOption("tally every byte value", config.ModeAll),
				).
				Value(&cfg.Mode),
			huh.NewInput().
				Title("Target character").
				CharLimit(1).
				Value(&cfg.Target),
			huh.NewConfirm().
				Title("Export results to CSV?").
				Value(&cfg.Export),
		),
	)
	if err := form.Run(); err != nil {
		return cfg, err
	}

	cfg.Length, _ = strconv.Atoi(length)
	cfg.Alignment, _ = strconv.Atoi(alignment)
	cfg.Repetitions, _ = strconv.Atoi(reps)
	cfg.Warmup, _ = strconv.Atoi(warmup)
	cfg.Seed, _ = strconv.ParseUint(seed, 10, 64)
	return cfg, cfg.Validate()
}

func intAtLeast(min int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		if n < min {
			return fmt.Errorf("must be at least %d", min)
		}
		return nil
	}
}

func validAlignment(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	if n < 1 || n > config.MaxAlignment || n&(n-1) != 0 {
		return fmt.Errorf("must be a power of two between 1 and %d", config.MaxAlignment)
	}
	return nil
}

func validSeed(s string) error {
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("not a valid seed: %q", s)
	}
	return nil
}
