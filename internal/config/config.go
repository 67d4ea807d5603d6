// Package config loads engine configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the stream, registry, and trace parameters for an engine
// context.
type Config struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate uint32 `yaml:"sample_rate"`
	// BlockSize is the samples advanced per audio block tick.
	BlockSize uint32 `yaml:"block_size"`
	// FrameRate drives the frame-domain tick in the offline render loop.
	FrameRate uint32 `yaml:"frame_rate"`
	// MaxTasks is the registry capacity.
	MaxTasks int `yaml:"max_tasks"`
	// StepQuota bounds zero-wait task re-entries per pass.
	StepQuota int `yaml:"step_quota"`
	// TraceRing is the trace buffer capacity between the tick path and
	// the drain goroutine.
	TraceRing int `yaml:"trace_ring"`
	// TraceDB enables trace persistence when non-empty.
	TraceDB string `yaml:"trace_db"`
}

// Default returns the stock configuration: 48 kHz, 512-sample blocks,
// 60 fps, tracing disabled.
func Default() Config {
	return Config{
		SampleRate: 48000,
		BlockSize:  512,
		FrameRate:  60,
		MaxTasks:   256,
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with. Malformed
// engine state is a startup error, never tolerated into steady state.
func (c Config) Validate() error {
	if c.SampleRate == 0 {
		return fmt.Errorf("sample_rate must be positive")
	}
	if c.BlockSize == 0 {
		return fmt.Errorf("block_size must be positive")
	}
	if c.FrameRate == 0 {
		return fmt.Errorf("frame_rate must be positive")
	}
	if c.MaxTasks < 0 || c.StepQuota < 0 || c.TraceRing < 0 {
		return fmt.Errorf("capacities must not be negative")
	}
	return nil
}
