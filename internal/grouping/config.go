package grouping

// Config holds grouping settings.
type Config struct {
	// Cuts are the mastery-level thresholds on the aggregate score.
	Cuts MasteryCuts

	// WeakThreshold marks a skill as weak for a group when the group's
	// mean score on it falls below this value.
	WeakThreshold float64

	// MaxWeakSkills caps how many weak skills are attached to a profile.
	MaxWeakSkills int

	// Labeler settings.
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible grouping defaults.
func DefaultConfig() Config {
	return Config{
		Cuts:          DefaultCuts(),
		WeakThreshold: 0.6,
		MaxWeakSkills: 5,
		MaxTokens:     512,
		Temperature:   0.5,
	}
}
