package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"bad mode", func(c *Config) { c.Mode = "staging" }, "mode"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"zero timeout", func(c *Config) { c.StageTimeoutSecs = 0 }, "stage_timeout_secs"},
		{"negative retries", func(c *Config) { c.StageRetries = -1 }, "stage_retries"},
		{"inverted cuts", func(c *Config) { c.MasteryLowCut = 0.8 }, "mastery cuts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packgen.yaml")
	data := []byte("addr: \":9090\"\nmode: production\nconcurrency: 8\nmastery_low_cut: 0.3\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "production", cfg.Mode)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 0.3, cfg.MasteryLowCut)
	// Untouched keys keep their defaults.
	assert.Equal(t, 120, cfg.StageTimeoutSecs)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("PACKGEN_ADDR", ":7070")
	t.Setenv("PACKGEN_CONCURRENCY", "2")

	cfg := Default().FromEnv()
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestDerivedConfigs(t *testing.T) {
	cfg := Default()
	cfg.StageTimeoutSecs = 30
	cfg.JobRetentionHours = 2
	cfg.RenderPollSecs = 1

	assert.Equal(t, 30*time.Second, cfg.Pipeline().StageTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JobStore().Retention)
	assert.Equal(t, time.Second, cfg.Render().PollInterval)
	assert.Equal(t, cfg.MasteryLowCut, cfg.Cuts().Low)
}
