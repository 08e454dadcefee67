package grouping

// Level is the ordinal mastery label for a group.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// MasteryCuts are the ordinal cut points on the aggregate score.
// Scores below Low are "low", scores at or above High are "high",
// everything between is "medium".
type MasteryCuts struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

// DefaultCuts returns the default mastery thresholds.
func DefaultCuts() MasteryCuts {
	return MasteryCuts{Low: 0.40, High: 0.70}
}

// LevelFor maps an aggregate score to a mastery level. The label is
// always derived from this numeric rule so grouping stays reproducible.
func (c MasteryCuts) LevelFor(score float64) Level {
	switch {
	case score < c.Low:
		return LevelLow
	case score < c.High:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// GroupProfile describes one mastery-based student group. Members form a
// partition of the roster: every student appears in exactly one group.
type GroupProfile struct {
	GroupID        string   `json:"group_id"`
	Members        []string `json:"members"`
	MasteryLevel   Level    `json:"mastery_level"`
	AggregateScore float64  `json:"aggregate_score"`
	LearningStyle  string   `json:"learning_style"`
	Rationale      string   `json:"rationale"`
	WeakSkills     []string `json:"weak_skills"`
}
