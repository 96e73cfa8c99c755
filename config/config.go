// Package config loads retrowave settings from defaults, an optional YAML
// file, RETROWAVE_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"retrowave/audio"
)

const EnvPrefix = "RETROWAVE"

const (
	KeyBackend    = "backend"
	KeySampleRate = "sample_rate"
	KeyVolume     = "volume"
	KeyBufferMs   = "buffer_ms"
	KeyLogPath    = "log_path"
)

type Config struct {
	Backend    string  `mapstructure:"backend"`
	SampleRate int     `mapstructure:"sample_rate"`
	Volume     float64 `mapstructure:"volume"`
	BufferMs   int     `mapstructure:"buffer_ms"`
	LogPath    string  `mapstructure:"log_path"`
}

func Defaults() Config {
	return Config{
		Backend:    audio.BackendAuto,
		SampleRate: audio.DefaultSampleRate,
		Volume:     0.8,
		BufferMs:   audio.DefaultBufferMs,
	}
}

func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyBackend, d.Backend)
	v.SetDefault(KeySampleRate, d.SampleRate)
	v.SetDefault(KeyVolume, d.Volume)
	v.SetDefault(KeyBufferMs, d.BufferMs)
	v.SetDefault(KeyLogPath, d.LogPath)
}

// DefaultPath is $XDG_CONFIG_HOME/retrowave/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "retrowave", "config.yaml"), nil
}

// Load reads configuration into v and returns the validated result. An
// explicit path must exist; the default path is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if def, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(def); statErr == nil {
			v.SetConfigFile(def)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", def, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Volume = min(max(cfg.Volume, 0), 1)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(audio.Backends(), c.Backend) {
		errs = append(errs, fmt.Errorf("backend %q is not one of %s", c.Backend, strings.Join(audio.Backends(), ", ")))
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate %d out of range [8000, 192000]", c.SampleRate))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume %v out of range [0, 1]", c.Volume))
	}
	if c.BufferMs < 1 || c.BufferMs > 1000 {
		errs = append(errs, fmt.Errorf("buffer_ms %d out of range [1, 1000]", c.BufferMs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) Audio() audio.Config {
	return audio.Config{
		SampleRate: c.SampleRate,
		BufferMs:   c.BufferMs,
		Volume:     c.Volume,
	}
}
