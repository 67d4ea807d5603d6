package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flux.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, uint32(48000), cfg.SampleRate)
	assert.Equal(t, uint32(512), cfg.BlockSize)
	assert.Equal(t, uint32(60), cfg.FrameRate)
	assert.Equal(t, 256, cfg.MaxTasks)
	assert.Empty(t, cfg.TraceDB, "tracing is off by default")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
sample_rate: 44100
block_size: 256
frame_rate: 30
max_tasks: 64
step_quota: 32
trace_ring: 2048
trace_db: /tmp/flux-trace.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), cfg.SampleRate)
	assert.Equal(t, uint32(256), cfg.BlockSize)
	assert.Equal(t, uint32(30), cfg.FrameRate)
	assert.Equal(t, 64, cfg.MaxTasks)
	assert.Equal(t, 32, cfg.StepQuota)
	assert.Equal(t, 2048, cfg.TraceRing)
	assert.Equal(t, "/tmp/flux-trace.db", cfg.TraceDB)
}

func TestLoad_AbsentFieldsKeepDefaults(t *testing.T) {
	path := writeConfig(t, "sample_rate: 96000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(96000), cfg.SampleRate)
	assert.Equal(t, uint32(512), cfg.BlockSize, "absent fields fall back to defaults")
	assert.Equal(t, uint32(60), cfg.FrameRate)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "sample_rate: [not a number\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "sample_rate: 0\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_rate")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero block size", func(c *Config) { c.BlockSize = 0 }, true},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, true},
		{"negative step quota", func(c *Config) { c.StepQuota = -1 }, true},
		{"negative trace ring", func(c *Config) { c.TraceRing = -1 }, true},
		{"zero max tasks is allowed", func(c *Config) { c.MaxTasks = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
