package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 120.0, cfg.BPM)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "fail-fast", cfg.Mode)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "patchbind.yaml", "bpm: 90\nseed: 7\nmode: collect-all\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 44100, cfg.SampleRate, "absent field keeps default")
	assert.Equal(t, 90.0, cfg.BPM)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "collect-all", cfg.Mode)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeFile(t, "bad.yaml", "tempo: 90\n"))
	assert.ErrorContains(t, err, "tempo")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, "sample_rate must be greater than 0"},
		{"negative bpm", func(c *Config) { c.BPM = -1 }, "bpm must be greater than 0"},
		{"bpm too high", func(c *Config) { c.BPM = 1000 }, "bpm must be at most 999"},
		{"unknown mode", func(c *Config) { c.Mode = "yolo" }, `mode must be one of [fail-fast collect-all], got "yolo"`},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "nope" }, "metrics_addr must be host:port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.msg)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.SampleRate = 0
	cfg.BPM = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_rate")
	assert.Contains(t, err.Error(), "bpm")
}

func TestMetricsAddrPortOnly(t *testing.T) {
	cfg := Default()
	cfg.MetricsAddr = ":9090"
	assert.NoError(t, cfg.Validate())
}

func TestSampleTable(t *testing.T) {
	cfg := Default()
	tbl, err := cfg.SampleTable()
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Frozen())

	cfg.Samples = writeFile(t, "samples.yaml", "samples:\n  \"808\": { channels: 2, frames: 100 }\n")
	tbl, err = cfg.SampleTable()
	require.NoError(t, err)
	h, ok := tbl.Lookup("808")
	require.True(t, ok)
	s, _ := tbl.View(h)
	assert.Equal(t, 100, s.Frames)
	assert.Equal(t, 2, s.Channels)
}

func TestContext(t *testing.T) {
	cfg := Default()
	cfg.Seed = 9
	ctx := cfg.Context(nil)
	assert.Equal(t, 44100, ctx.SampleRate)
	assert.Equal(t, 120.0, ctx.BPM)
	assert.Equal(t, uint64(9), ctx.Seed)
	assert.Nil(t, ctx.Samples)
}
