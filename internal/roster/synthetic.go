package roster

import (
	"fmt"
	"math/rand"
)

// passRate is the share of synthetic skill scores that land in the
// passing range, mirroring a typical classroom distribution.
const passRate = 0.7

// Synthetic builds a mock roster of m students with varied per-skill
// score profiles. The same seed always produces the same roster, so
// grouping stays reproducible across runs.
func Synthetic(m int, skillIDs []string, seed int64) []StudentRecord {
	rng := rand.New(rand.NewSource(seed))

	students := make([]StudentRecord, 0, m)
	for i := 0; i < m; i++ {
		// Base ability spreads students across the mastery bands.
		ability := 0.15 + 0.8*float64(i)/float64(max(m-1, 1))

		s := StudentRecord{
			ID:   fmt.Sprintf("student-%03d", i+1),
			Name: fmt.Sprintf("Student %d", i+1),
		}

		if len(skillIDs) > 0 {
			s.Scores = make(map[string]float64, len(skillIDs))
			for _, id := range skillIDs {
				score := ability + (rng.Float64()-0.5)*0.3
				if rng.Float64() > passRate {
					score -= 0.25
				}
				s.Scores[id] = clamp01(score)
			}
		}

		students = append(students, s)
	}
	return students
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
