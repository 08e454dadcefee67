package skillmap

// Difficulty bounds for a skill on the ordinal scale.
const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Skill is a single node in the skill graph derived from a lesson.
type Skill struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Difficulty    int      `json:"difficulty"`
	Prerequisites []string `json:"prerequisites"`

	// SourceConcepts lists the lesson key concepts and objectives this
	// skill was derived from. Used to check extraction coverage.
	SourceConcepts []string `json:"source_concepts,omitempty"`
}
