// Package config loads the TOML configuration: seat options, per-device
// input settings, and the binding list. It also builds the immutable
// binding table snapshot the engine matches against.
package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"waybind/internal/binding"
	"waybind/internal/group"
	"waybind/internal/keyboard"
)

// Config is the full parsed configuration.
type Config struct {
	Seat    Seat             `toml:"seat"`
	Input   map[string]Input `toml:"input"`
	Binding []BindingSpec    `toml:"binding"`
}

// Seat holds seat-wide options.
type Seat struct {
	// KeyboardGrouping selects the grouping policy: "smart" or "none".
	KeyboardGrouping string `toml:"keyboard_grouping"`
}

// Input holds per-device settings, keyed by device identifier in the
// [input."<identifier>"] table. The identifier "*" applies to all devices
// without a specific entry.
type Input struct {
	XKBLayout  string `toml:"xkb_layout"`
	XKBVariant string `toml:"xkb_variant"`
	XKBOptions string `toml:"xkb_options"`

	// RepeatDelayMs and RepeatRate override the key-repeat defaults.
	// A nil field keeps the default.
	RepeatDelayMs *int `toml:"repeat_delay_ms"`
	RepeatRate    *int `toml:"repeat_rate"`
}

// BindingSpec is one [[binding]] entry before parsing.
type BindingSpec struct {
	// Keys is the "+"-joined combination, e.g. "Mod4+Shift+Return".
	Keys string `toml:"keys"`

	// Command is the action text passed to the executor.
	Command string `toml:"command"`

	// Code interprets the key tokens as keycodes instead of keysyms.
	Code bool `toml:"code"`

	// Release fires the binding on combination release.
	Release bool `toml:"release"`

	// Locked keeps the binding usable while the seat is locked.
	Locked bool `toml:"locked"`

	// Input restricts the binding to one device identifier; empty means
	// any device.
	Input string `toml:"input"`

	// Group restricts the binding to a layout group index; nil means any.
	Group *uint32 `toml:"group"`
}

// RepeatDelay returns the configured delay or the engine default.
func (in Input) RepeatDelay() time.Duration {
	if in.RepeatDelayMs == nil {
		return keyboard.DefaultRepeatDelay
	}
	return time.Duration(*in.RepeatDelayMs) * time.Millisecond
}

// RepeatRateOrDefault returns the configured rate or the engine default.
func (in Input) RepeatRateOrDefault() int32 {
	if in.RepeatRate == nil {
		return keyboard.DefaultRepeatRate
	}
	return int32(*in.RepeatRate)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Seat:  Seat{KeyboardGrouping: group.PolicyKeymap.String()},
		Input: map[string]Input{},
	}
}

// FileSystem abstracts file access so tests can load from memory.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

func (OSFS) Open(name string) (fs.File, error)    { return os.Open(name) }
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Load reads and validates the configuration at path. A missing file is
// not an error; it yields the defaults.
func Load(path string) (*Config, error) {
	return LoadFS(OSFS{}, path)
}

// LoadFS is Load with an explicit file system.
func LoadFS(fsys FileSystem, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadReader parses configuration from a reader.
func LoadReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := group.ParsePolicy(c.Seat.KeyboardGrouping); err != nil {
		return err
	}
	for name, in := range c.Input {
		if in.RepeatDelayMs != nil && *in.RepeatDelayMs < 0 {
			return fmt.Errorf("input %q: negative repeat_delay_ms", name)
		}
		if in.RepeatRate != nil && *in.RepeatRate < 0 {
			return fmt.Errorf("input %q: negative repeat_rate", name)
		}
	}
	for i, spec := range c.Binding {
		if spec.Command == "" {
			return fmt.Errorf("binding %d (%q): missing command", i, spec.Keys)
		}
	}
	return nil
}

// GroupingPolicy returns the parsed grouping policy. Validation already
// ran during Load, so an invalid value can only mean the Config was built
// by hand; it falls back to the default policy.
func (c *Config) GroupingPolicy() group.Policy {
	p, err := group.ParsePolicy(c.Seat.KeyboardGrouping)
	if err != nil {
		return group.PolicyKeymap
	}
	return p
}

// InputFor returns the settings for a device identifier, falling back to
// the "*" entry and then to the zero value.
func (c *Config) InputFor(identifier string) Input {
	if in, ok := c.Input[identifier]; ok {
		return in
	}
	return c.Input["*"]
}

// BuildTable parses every binding spec into the immutable table the
// resolver consumes. Creation order becomes the tie-break order.
func (c *Config) BuildTable() (*binding.Table, error) {
	table := &binding.Table{}
	for i, spec := range c.Binding {
		b := &binding.Binding{
			OnRelease: spec.Release,
			OnLock:    spec.Locked,
			Input:     spec.Input,
			Group:     binding.GroupAny,
			Order:     i,
			Command:   spec.Command,
		}
		if b.Input == "" {
			b.Input = binding.InputAny
		}
		if spec.Group != nil {
			b.Group = *spec.Group
		}

		var err error
		if spec.Code {
			b.Modifiers, b.Keys, err = binding.ParseKeycodeSpec(spec.Keys)
		} else {
			b.Modifiers, b.Keys, err = binding.ParseKeysymSpec(spec.Keys)
		}
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		if spec.Code {
			table.Keycode = append(table.Keycode, b)
		} else {
			table.Keysym = append(table.Keysym, b)
		}
	}
	return table, nil
}
