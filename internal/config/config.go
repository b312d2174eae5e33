package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the blink timing and device parameters for the clock daemon.
type Config struct {
	// DevicePath is the sysfs directory of the LED to drive,
	// e.g. /sys/class/leds/led0.
	DevicePath string `yaml:"device_path"`
	// BaseDuration is the full duration of one blink (on-phase plus
	// off-phase) and of the pause between the hour and minute groups.
	BaseDuration time.Duration `yaml:"base_duration"`
	// PauseDuration is the pause between two renderings of the time.
	PauseDuration time.Duration `yaml:"pause_duration"`
	// ShortDuty is the fraction of BaseDuration a short blink stays lit.
	ShortDuty DutyCycle `yaml:"short_duty"`
	// LongDuty is the fraction of BaseDuration a long blink stays lit.
	LongDuty DutyCycle `yaml:"long_duty"`
	// Format selects the clock face, "12h" or "24h".
	Format string `yaml:"format"`
	// User is an optional account to drop privileges to once the
	// device files are open. Empty means keep the invoking user.
	User string `yaml:"user,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for clock settings.
	DefaultConfigFilename = "morseclock.yaml"

	// DefaultBaseDuration is the default full duration of one blink.
	DefaultBaseDuration = 400 * time.Millisecond

	// DefaultPauseDuration is the default pause between two renderings.
	DefaultPauseDuration = 15 * time.Second

	// DefaultShortDuty is the default on-fraction of a short blink.
	DefaultShortDuty DutyCycle = 0.25

	// DefaultLongDuty is the default on-fraction of a long blink.
	DefaultLongDuty DutyCycle = 0.75

	// DefaultFormat is the default clock face.
	DefaultFormat = "12h"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// ErrInvalidDutyCycle is returned for duty cycles outside (0, 1].
	ErrInvalidDutyCycle = errors.New("invalid duty cycle")
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDevicePathRequired is returned when the LED sysfs path is missing.
	errDevicePathRequired = errors.New("device path must be provided")
	// errBaseDurationRequired is returned when the base duration is not positive.
	errBaseDurationRequired = errors.New("base duration must be positive")
	// errNegativePause is returned when the inter-cycle pause is negative.
	errNegativePause = errors.New("pause duration must not be negative")
	// errUnknownFormat is returned for clock formats other than 12h and 24h.
	errUnknownFormat = errors.New(`format must be "12h" or "24h"`)
)

// DutyCycle is the fraction of a blink's duration spent illuminated.
// Valid values lie in (0, 1].
type DutyCycle float64

// NewDutyCycle validates the provided fraction and returns it as a DutyCycle.
func NewDutyCycle(value float64) (DutyCycle, error) {
	d := DutyCycle(value)

	return d, d.Validate()
}

// Validate reports ErrInvalidDutyCycle for values outside (0, 1].
func (d DutyCycle) Validate() error {
	if d <= 0 || d > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidDutyCycle, float64(d))
	}

	return nil
}

// UnmarshalYAML decodes and validates a duty cycle from YAML.
func (d *DutyCycle) UnmarshalYAML(node *yaml.Node) error {
	var value float64
	if err := node.Decode(&value); err != nil {
		return fmt.Errorf("decode duty cycle: %w", err)
	}

	parsed, err := NewDutyCycle(value)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Default returns a configuration populated with default timing values.
// The device path is left empty and must come from the CLI.
func Default() *Config {
	return &Config{
		BaseDuration:  DefaultBaseDuration,
		PauseDuration: DefaultPauseDuration,
		ShortDuty:     DefaultShortDuty,
		LongDuty:      DefaultLongDuty,
		Format:        DefaultFormat,
	}
}

// Load reads configuration from the provided path and fills in defaults.
// An empty path refers to DefaultConfigFilename; if that default file does
// not exist, the defaults are returned so flags can carry the whole
// configuration. An explicitly provided path must exist.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and ranges.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DevicePath == "" {
		return errDevicePathRequired
	}

	if cfg.BaseDuration <= 0 {
		return errBaseDurationRequired
	}

	if cfg.PauseDuration < 0 {
		return errNegativePause
	}

	if err := cfg.ShortDuty.Validate(); err != nil {
		return fmt.Errorf("short duty: %w", err)
	}

	if err := cfg.LongDuty.Validate(); err != nil {
		return fmt.Errorf("long duty: %w", err)
	}

	if cfg.Format != "12h" && cfg.Format != "24h" {
		return errUnknownFormat
	}

	return nil
}
