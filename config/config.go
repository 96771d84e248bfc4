// Package config holds the simulation configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"go.yaml.in/yaml/v3"
)

// Config holds the parameters of one simulation run.
type Config struct {
	// MemorySize is the size of the flat memory in bytes.
	// Default: 0x20000 (128 KiB).
	MemorySize uint32 `json:"memory_size" yaml:"memory_size"`

	// MaxCycles is the supervisory cycle ceiling. 0 disables it.
	// Default: 10000.
	MaxCycles uint64 `json:"max_cycles" yaml:"max_cycles"`

	// ClockMHz is the simulated clock, used only to report simulated time.
	// Default: 100 MHz.
	ClockMHz float64 `json:"clock_mhz" yaml:"clock_mhz"`

	// DumpStart and DumpLength select the memory range printed after the
	// run. A DumpLength of 0 disables the memory dump.
	// Default: 16 bytes at 0x10000.
	DumpStart  uint32 `json:"dump_start" yaml:"dump_start"`
	DumpLength uint32 `json:"dump_length" yaml:"dump_length"`

	// Debug enables the per-instruction trace.
	Debug bool `json:"debug" yaml:"debug"`
}

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		MemorySize: 0x20000,
		MaxCycles:  10000,
		ClockMHz:   100,
		DumpStart:  0x10000,
		DumpLength: 16,
		Debug:      false,
	}
}

// Load reads a Config from a JSON file, or a YAML file if the extension is
// .yaml or .yml. Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the Config to path, as YAML if the extension asks for it and
// as indented JSON otherwise.
func (c *Config) Save(path string) error {
	data, err := c.Marshal(isYAML(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal serializes the Config as YAML or indented JSON.
func (c *Config) Marshal(asYAML bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if asYAML {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return data, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.MemorySize < 4 {
		return fmt.Errorf("memory_size must be >= 4")
	}
	if c.MemorySize%4 != 0 {
		return fmt.Errorf("memory_size must be a multiple of 4")
	}
	if c.ClockMHz <= 0 {
		return fmt.Errorf("clock_mhz must be > 0")
	}
	if c.DumpStart%4 != 0 {
		return fmt.Errorf("dump_start must be word aligned")
	}
	if uint64(c.DumpStart)+uint64(c.DumpLength) > uint64(c.MemorySize) {
		return fmt.Errorf("dump range [0x%x, 0x%x) exceeds memory_size 0x%x",
			c.DumpStart, uint64(c.DumpStart)+uint64(c.DumpLength), c.MemorySize)
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Freq returns the simulated clock frequency.
func (c *Config) Freq() sim.Freq {
	return sim.Freq(c.ClockMHz) * sim.MHz
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
