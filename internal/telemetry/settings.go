// Package telemetry builds the JSON payloads streamed over UDP during
// playback and manages the sender's persisted settings.
package telemetry

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings configures the telemetry sender. Persisted as a small YAML file
// next to the user's other tool state.
type Settings struct {
	Enabled   bool   `yaml:"enabled"`
	IP        string `yaml:"ip"`
	Port      int    `yaml:"port"`
	RateHz    int    `yaml:"rate_hz"`
	SessionID string `yaml:"session_id,omitempty"`
}

// DefaultSettings returns the out-of-the-box configuration: disabled,
// loopback target, 90 Hz.
func DefaultSettings() Settings {
	return Settings{
		Enabled: false,
		IP:      "127.0.0.1",
		Port:    9000,
		RateHz:  90,
	}
}

func clampPort(p int) int {
	return max(1, min(65535, p))
}

// clampRate keeps the send rate in a range the scheduler can honor.
func clampRate(r int) int {
	return max(1, min(240, r))
}

// normalize applies the field clamps and defaults a missing target IP.
func (s Settings) normalize() Settings {
	if s.IP == "" {
		s.IP = "127.0.0.1"
	}
	s.Port = clampPort(s.Port)
	s.RateHz = clampRate(s.RateHz)
	return s
}

// LoadSettings reads settings from path. A missing file yields defaults;
// anything present is clamped into a valid configuration.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), err
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), err
	}
	return s.normalize(), nil
}

// SaveSettings persists settings to path, clamping fields on the way out.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s.normalize())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
