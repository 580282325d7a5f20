// Package config loads the codexline configuration: defaults overlaid
// with ~/.config/codexline/config.yaml, overlaid with CLI flags (flag
// application is the caller's job).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"codexline/sound"
)

// Config is the full configuration surface consumed by the core.
type Config struct {
	// Minimal suppresses the approval, sandbox, activity, and directory
	// fields.
	Minimal bool `yaml:"minimal"`

	// Format is the explicit field order. Empty means the default order.
	Format []string `yaml:"format"`

	// Labels overrides per-field labels; an empty value keeps the field
	// but drops its label.
	Labels map[string]string `yaml:"labels"`

	// Sound is the trigger mode: off, all, some, or assistant.
	Sound string `yaml:"sound"`

	// SoundVolume is the advisory volume, 1..100.
	SoundVolume int `yaml:"sound_volume"`

	// SoundReverb is the advisory reverb preset: none, subtle, default,
	// or lush.
	SoundReverb string `yaml:"sound_reverb"`

	// Width is the column budget: 0 auto-detects, negative disables
	// truncation.
	Width int `yaml:"width"`

	// IntervalSeconds is the watch refresh interval.
	IntervalSeconds int `yaml:"interval_seconds"`

	// Dir overrides the session directory.
	Dir string `yaml:"dir"`

	// Limit caps how many sessions are discovered and rendered.
	Limit int `yaml:"limit"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Sound:           string(sound.ModeOff),
		SoundVolume:     50,
		SoundReverb:     string(sound.ReverbDefault),
		IntervalSeconds: 5,
		Limit:           1,
	}
}

// Load reads the user config file over the defaults. A missing file is
// not an error.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Defaults(), nil
	}
	return LoadFile(filepath.Join(home, ".config", "codexline", "config.yaml"))
}

// LoadFile reads one config file over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the sound surface. Field names in Format and Labels
// are validated separately by the composer, which owns the alias table.
func (c *Config) Validate() error {
	if _, err := sound.ParseMode(c.Sound); err != nil {
		return err
	}
	if _, err := sound.ParseReverb(c.SoundReverb); err != nil {
		return err
	}
	if c.SoundVolume < 1 || c.SoundVolume > 100 {
		return fmt.Errorf("sound volume %d out of range 1-100", c.SoundVolume)
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval must be positive, got %d", c.IntervalSeconds)
	}
	return nil
}
