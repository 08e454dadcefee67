package packplan

// PackPlan is the content plan for one group's teaching pack.
type PackPlan struct {
	GroupID    string   `json:"group_id"`
	FocusArea  string   `json:"focus_area"`
	Strategy   string   `json:"strategy"`
	SkillGaps  []string `json:"skill_gaps"`
	Activities []string `json:"activities"`
}

// Config holds pack planning settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible planning defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.5,
	}
}
