package skillmap

// Config holds skill extraction settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MinSkills and MaxSkills bound the size of the extracted graph.
	MinSkills int
	MaxSkills int
}

// DefaultConfig returns sensible defaults for skill extraction.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.3,
		MinSkills:   3,
		MaxSkills:   15,
	}
}
