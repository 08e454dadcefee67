package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/pipeline"
	"github.com/teachkit/packgen/internal/render"
)

// Config is the service-level configuration. LLM provider settings are
// loaded separately from the environment by the llm package.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// Mode is the runtime mode: "development" or "production". Controls
	// logger output and gin's mode.
	Mode string `yaml:"mode"`

	// DBPath overrides the default SQLite database location.
	DBPath string `yaml:"db_path"`

	// Concurrency bounds parallel group pipelines per run.
	Concurrency int `yaml:"concurrency"`

	// StageTimeoutSecs bounds one attempt of one LLM stage.
	StageTimeoutSecs int `yaml:"stage_timeout_secs"`

	// StageRetries is the retry budget for group-scoped stages.
	StageRetries int `yaml:"stage_retries"`

	// JobRetentionHours is how long finished jobs stay queryable.
	JobRetentionHours int `yaml:"job_retention_hours"`

	// MasteryLowCut and MasteryHighCut are the score boundaries between
	// low/medium and medium/high mastery.
	MasteryLowCut  float64 `yaml:"mastery_low_cut"`
	MasteryHighCut float64 `yaml:"mastery_high_cut"`

	// RenderBaseURL points at the asset rendering backend. Empty
	// disables rendering endpoints' submission to a real backend and
	// uses the in-memory mock instead.
	RenderBaseURL string `yaml:"render_base_url"`

	// RenderAPIKey authenticates against the rendering backend.
	RenderAPIKey string `yaml:"render_api_key"`

	// RenderPollSecs is the delay between render status checks.
	RenderPollSecs int `yaml:"render_poll_secs"`

	// RenderTimeoutMins bounds how long one render is watched.
	RenderTimeoutMins int `yaml:"render_timeout_mins"`
}

// Default returns the default service configuration.
func Default() Config {
	return Config{
		Addr:              ":8080",
		Mode:              "development",
		Concurrency:       4,
		StageTimeoutSecs:  120,
		StageRetries:      2,
		JobRetentionHours: 24,
		MasteryLowCut:     grouping.DefaultCuts().Low,
		MasteryHighCut:    grouping.DefaultCuts().High,
		RenderPollSecs:    5,
		RenderTimeoutMins: 10,
	}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// FromEnv overlays PACKGEN_* environment variables onto cfg.
func (c Config) FromEnv() Config {
	if v := os.Getenv("PACKGEN_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("PACKGEN_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("PACKGEN_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("PACKGEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("PACKGEN_RENDER_BASE_URL"); v != "" {
		c.RenderBaseURL = v
	}
	if v := os.Getenv("PACKGEN_RENDER_API_KEY"); v != "" {
		c.RenderAPIKey = v
	}
	return c
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.Mode != "development" && c.Mode != "production" {
		return fmt.Errorf("mode must be development or production, got %q", c.Mode)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.StageTimeoutSecs <= 0 {
		return fmt.Errorf("stage_timeout_secs must be positive, got %d", c.StageTimeoutSecs)
	}
	if c.StageRetries < 0 {
		return fmt.Errorf("stage_retries must not be negative, got %d", c.StageRetries)
	}
	if c.MasteryLowCut <= 0 || c.MasteryHighCut >= 1 || c.MasteryLowCut >= c.MasteryHighCut {
		return fmt.Errorf("mastery cuts must satisfy 0 < low < high < 1, got %.2f and %.2f",
			c.MasteryLowCut, c.MasteryHighCut)
	}
	return nil
}

// Pipeline derives the orchestrator settings.
func (c Config) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Cuts = c.Cuts()
	cfg.Concurrency = c.Concurrency
	cfg.StageTimeout = time.Duration(c.StageTimeoutSecs) * time.Second
	cfg.StageRetries = c.StageRetries
	return cfg
}

// JobStore derives the job store settings.
func (c Config) JobStore() job.StoreConfig {
	cfg := job.DefaultStoreConfig()
	if c.JobRetentionHours > 0 {
		cfg.Retention = time.Duration(c.JobRetentionHours) * time.Hour
	}
	return cfg
}

// Render derives the render service settings.
func (c Config) Render() render.Config {
	cfg := render.DefaultConfig()
	if c.RenderPollSecs > 0 {
		cfg.PollInterval = time.Duration(c.RenderPollSecs) * time.Second
	}
	if c.RenderTimeoutMins > 0 {
		cfg.PollTimeout = time.Duration(c.RenderTimeoutMins) * time.Minute
	}
	return cfg
}

// Cuts derives the mastery boundaries.
func (c Config) Cuts() grouping.MasteryCuts {
	return grouping.MasteryCuts{Low: c.MasteryLowCut, High: c.MasteryHighCut}
}
