package roster

// StudentRecord is one student in the roster. Supplied externally and
// read-only to the pipeline. Scores, when present, map skill IDs to a
// normalized [0,1] proficiency.
type StudentRecord struct {
	ID     string             `json:"id"`
	Name   string             `json:"name,omitempty"`
	Code   string             `json:"code,omitempty"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

// HasScores reports whether any record in the roster carries scores.
func HasScores(students []StudentRecord) bool {
	for _, s := range students {
		if len(s.Scores) > 0 {
			return true
		}
	}
	return false
}
