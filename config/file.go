package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrPreset is returned for unknown preset names.
var ErrPreset = errors.New("config: unknown preset")

// File is an on-disk preset collection.
type File struct {
	Default string
	Presets map[string]Run
}

// Load reads a preset file. Every preset decodes over Default(), so
// omitted fields keep their defaults while explicit zeroes stick.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw struct {
		Default string               `yaml:"default"`
		Presets map[string]yaml.Node `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	f := &File{Default: raw.Default, Presets: make(map[string]Run, len(raw.Presets))}
	for name, node := range raw.Presets {
		run := Default()
		if err := node.Decode(&run); err != nil {
			return nil, fmt.Errorf("config: preset %q: %w", name, err)
		}
		if err := run.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		f.Presets[name] = run
	}
	if f.Default != "" {
		if _, ok := f.Presets[f.Default]; !ok {
			return nil, fmt.Errorf("%w: default %q", ErrPreset, f.Default)
		}
	}
	return f, nil
}

// Preset returns the named preset. An empty name falls back to the
// file's default preset, and to Default() when the file names none.
func (f *File) Preset(name string) (Run, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" {
		return Default(), nil
	}
	run, ok := f.Presets[name]
	if !ok {
		return Run{}, fmt.Errorf("%w: %q", ErrPreset, name)
	}
	return run, nil
}

// Names returns the preset names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
