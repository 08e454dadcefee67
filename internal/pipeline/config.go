package pipeline

import (
	"time"

	"github.com/teachkit/packgen/internal/grouping"
)

// Config holds orchestrator settings.
type Config struct {
	// Cuts are the mastery score boundaries used when partitioning.
	Cuts grouping.MasteryCuts

	// Concurrency bounds how many group pipelines run at once.
	Concurrency int

	// StageTimeout bounds one attempt of one LLM stage.
	StageTimeout time.Duration

	// StageRetries is how many extra attempts a group-scoped stage gets
	// after its first failure. Lesson-scoped stages never retry: their
	// failure fails the whole run.
	StageRetries int

	// RetryDelay is the pause between stage attempts.
	RetryDelay time.Duration

	// DefaultGroupCount is used when a request doesn't specify one.
	DefaultGroupCount int

	// DefaultClassSize sizes the synthetic roster when no student
	// records are supplied.
	DefaultClassSize int
}

// DefaultConfig returns the default orchestrator settings.
func DefaultConfig() Config {
	return Config{
		Cuts:              grouping.DefaultCuts(),
		Concurrency:       4,
		StageTimeout:      120 * time.Second,
		StageRetries:      2,
		RetryDelay:        2 * time.Second,
		DefaultGroupCount: 3,
		DefaultClassSize:  20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cuts == (grouping.MasteryCuts{}) {
		c.Cuts = d.Cuts
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = d.StageTimeout
	}
	if c.StageRetries < 0 {
		c.StageRetries = d.StageRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.DefaultGroupCount <= 0 {
		c.DefaultGroupCount = d.DefaultGroupCount
	}
	if c.DefaultClassSize <= 0 {
		c.DefaultClassSize = d.DefaultClassSize
	}
	return c
}
