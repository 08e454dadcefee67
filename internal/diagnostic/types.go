package diagnostic

// Question is a single diagnostic assessment item keyed to a skill.
type Question struct {
	ID           string `json:"id"`
	SkillID      string `json:"skill_id"`
	Text         string `json:"text"`
	AnswerKey    string `json:"answer_key"`
	Difficulty   int    `json:"difficulty"`
	TimeEstimate int    `json:"time_estimate_mins"`
}

// Diagnostic is the assessment built from a skill graph.
// TotalTime is always computed by summing question estimates, never taken
// from generated output.
type Diagnostic struct {
	Questions    []Question `json:"questions"`
	TotalTime    int        `json:"total_time_mins"`
	Instructions string     `json:"instructions"`

	// UncoveredSkills lists skills the generator produced no question for.
	// They reduce diagnostic coverage but do not fail the run.
	UncoveredSkills []string `json:"uncovered_skills,omitempty"`
}

// Covers reports whether the diagnostic has at least one question for the
// given skill.
func (d *Diagnostic) Covers(skillID string) bool {
	for _, q := range d.Questions {
		if q.SkillID == skillID {
			return true
		}
	}
	return false
}
