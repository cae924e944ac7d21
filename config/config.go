// Package config defines the benchmark run parameters, their
// validation rules, and the YAML preset file format.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Counting modes.
const (
	ModeTarget = "target" // count occurrences of a single byte
	ModeAll    = "all"    // tally every byte value
)

// Defaults for a Run.
const (
	DefaultLength      = 1024
	DefaultAlignment   = 32
	DefaultRepetitions = 100
	DefaultWarmup      = 3
	DefaultSeed        = 42
	DefaultTarget      = "a"
)

// MaxAlignment bounds requested alignments to one page.
const MaxAlignment = 4096

// ErrConfig wraps every validation failure.
var ErrConfig = errors.New("config: invalid run")

// Run holds the parameters of one benchmark run. The buffer length
// includes the sentinel byte, so n-16 leaves 15 counted bytes, and so
// on; lengths below 16 are rejected.
type Run struct {
	Length      int    `yaml:"length" validate:"min=16"`
	Alignment   int    `yaml:"alignment" validate:"pow2,max=4096"`
	Repetitions int    `yaml:"repetitions" validate:"min=1"`
	Warmup      int    `yaml:"warmup" validate:"min=0"`
	Seed        uint64 `yaml:"seed"`
	Target      string `yaml:"target" validate:"omitempty,ascii"`
	Mode        string `yaml:"mode" validate:"oneof=target all"`
	OutputDir   string `yaml:"output_dir"`
	Export      bool   `yaml:"export"`
	Compress    bool   `yaml:"compress"`
	Detailed    bool   `yaml:"detailed"`
}

// Default returns the canonical configuration: 1KB of seed-42 content
// at 32-byte alignment, 100 repetitions after 3 warm-up passes,
// counting 'a'.
func Default() Run {
	return Run{
		Length:      DefaultLength,
		Alignment:   DefaultAlignment,
		Repetitions: DefaultRepetitions,
		Warmup:      DefaultWarmup,
		Seed:        DefaultSeed,
		Target:      DefaultTarget,
		Mode:        ModeTarget,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("pow2", isPow2); err != nil {
		panic(err)
	}
	return v
}

func isPow2(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 1 && n&(n-1) == 0
}

// Validate checks the run against its rules. All failures wrap
// ErrConfig.
func (r Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrConfig, err)
	}
	if r.Mode == ModeTarget && len(r.Target) != 1 {
		return fmt.Errorf("%w: target must be a single byte, got %q", ErrConfig, r.Target)
	}
	return nil
}

// TargetByte returns the counted byte value, 0 when unset.
func (r Run) TargetByte() byte {
	if len(r.Target) == 0 {
		return 0
	}
	return r.Target[0]
}
