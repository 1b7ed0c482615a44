// Package config loads the settings of the ads7953 sampler from YAML.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the sampler configuration.
type Config struct {
	Bus      BusConfig      `yaml:"bus"`
	Sampling SamplingConfig `yaml:"sampling"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// BusConfig selects the SPI port and GPIO lines.
type BusConfig struct {
	Port       string `yaml:"port"`
	SpeedHz    int64  `yaml:"speed_hz"`
	ChipSelect string `yaml:"chip_select"`
	Busy       string `yaml:"busy"`
}

// SamplingConfig contains the acquisition parameters.
type SamplingConfig struct {
	Channels     int           `yaml:"channels"`
	Depth        int           `yaml:"depth"` // readings averaged per channel
	Window       time.Duration `yaml:"window"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
	Gain2x       bool          `yaml:"gain_2x"`
	ExternalRef  bool          `yaml:"external_ref"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// Default returns the reference configuration: 16 channels, 4 readings
// averaged, 60 second windows.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Port:       "",
			SpeedHz:    1000000,
			ChipSelect: "GPIO10",
			Busy:       "GPIO11",
		},
		Sampling: SamplingConfig{
			Channels:     16,
			Depth:        4,
			Window:       60 * time.Second,
			ReadyTimeout: 100 * time.Millisecond,
			Gain2x:       true,
			ExternalRef:  true,
		},
		Metrics: MetricsConfig{
			Listen: ":9100",
		},
	}
}

// Load loads configuration from a YAML file. Fields missing from the file
// keep their default value. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: could not read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: could not parse %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// maxMillis is the longest duration the driver's 32-bit millisecond clock
// can measure.
const maxMillis = math.MaxUint32 * time.Millisecond

// Validate checks the configuration for values the driver would reject.
func (c *Config) Validate() error {
	if c.Sampling.Channels < 1 || c.Sampling.Channels > 16 {
		return fmt.Errorf("config: channels must be between 1 and 16, got %d", c.Sampling.Channels)
	}
	if c.Sampling.Depth < 1 {
		return fmt.Errorf("config: depth must be positive, got %d", c.Sampling.Depth)
	}
	if c.Sampling.Window < time.Millisecond || c.Sampling.Window > maxMillis {
		return fmt.Errorf("config: window must be between 1ms and %v, got %v", maxMillis, c.Sampling.Window)
	}
	if c.Sampling.ReadyTimeout < 0 || c.Sampling.ReadyTimeout > maxMillis {
		return fmt.Errorf("config: ready_timeout must be between 0 and %v, got %v", maxMillis, c.Sampling.ReadyTimeout)
	}
	if c.Bus.SpeedHz <= 0 {
		return fmt.Errorf("config: speed_hz must be positive, got %d", c.Bus.SpeedHz)
	}
	return nil
}
