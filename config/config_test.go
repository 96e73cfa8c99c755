package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the default config path at an empty temp dir so the
// developer's own config never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeConfig(t *testing.T, dir, yaml string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
backend: "null"
sample_rate: 22050
volume: 0.5
buffer_ms: 20
log_path: /tmp/rw
`)
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Config{Backend: "null", SampleRate: 22050, Volume: 0.5, BufferMs: 20, LogPath: "/tmp/rw"}, cfg)
}

func TestLoadDefaultPathFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "retrowave"), 0755))
	writeConfig(t, filepath.Join(dir, "retrowave"), "backend: speaker\n")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "speaker", cfg.Backend)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(viper.New(), "/does/not/exist.yaml")
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "sample_rate: 22050\nbackend: malgo\n")
	t.Setenv("RETROWAVE_SAMPLE_RATE", "48000")
	t.Setenv("RETROWAVE_BACKEND", "NULL")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, "null", cfg.Backend)
}

func TestFlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RETROWAVE_VOLUME", "0.2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("volume", 0.8, "")
	require.NoError(t, flags.Parse([]string{"--volume=0.6"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag(KeyVolume, flags.Lookup("volume")))
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Volume)
}

func TestVolumeClamped(t *testing.T) {
	isolate(t)
	t.Setenv("RETROWAVE_VOLUME", "7")
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Volume)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Backend = "alsa"
	cfg.SampleRate = 100
	cfg.BufferMs = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alsa")
	assert.Contains(t, err.Error(), "sample_rate")
	assert.Contains(t, err.Error(), "buffer_ms")
}

func TestAudioConfig(t *testing.T) {
	ac := Defaults().Audio()
	assert.Equal(t, 44100, ac.SampleRate)
	assert.Equal(t, 0.8, ac.Volume)
	assert.Equal(t, 50, ac.BufferMs)
}
