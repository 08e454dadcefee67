package eval

import (
	"maps"
	"slices"
	"strings"
)

// GroundTruth is the externally supplied reference for evaluation.
// It is used only for scoring, never for generation.
type GroundTruth struct {
	KeyConcepts []string `json:"key_concepts"`
	Skills      []string `json:"skills"`

	// ExpectedAnswers maps a concept or skill term to the answer a
	// correct pack teaches for it.
	ExpectedAnswers map[string]string `json:"expected_answers,omitempty"`
}

// Empty reports whether there is nothing to score against. Evaluation is
// skipped entirely in that case, not scored as zero.
func (gt GroundTruth) Empty() bool {
	return len(gt.KeyConcepts) == 0 && len(gt.Skills) == 0 && len(gt.ExpectedAnswers) == 0
}

// items returns all ground-truth reference terms: key concepts, skills,
// and the keys of ExpectedAnswers, deduplicated case-insensitively. The
// answer keys are included so an answers-only ground truth still has
// terms to score against. They are appended in sorted order to keep
// scoring deterministic.
func (gt GroundTruth) items() []string {
	out := make([]string, 0, len(gt.KeyConcepts)+len(gt.Skills)+len(gt.ExpectedAnswers))
	seen := make(map[string]bool, cap(out))
	add := func(term string) {
		key := strings.ToLower(term)
		if term == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, term)
	}
	for _, c := range gt.KeyConcepts {
		add(c)
	}
	for _, s := range gt.Skills {
		add(s)
	}
	for _, k := range slices.Sorted(maps.Keys(gt.ExpectedAnswers)) {
		add(k)
	}
	return out
}

// Scores holds the three metric scores and their weighted combination.
// Each metric is in [0,1]; Overall = 0.4*Accuracy + 0.3*Coverage +
// 0.3*Soundness.
type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Coverage  float64 `json:"coverage"`
	Soundness float64 `json:"soundness"`
	Overall   float64 `json:"overall"`
}

// GroupScores are the scores for one group's pack.
type GroupScores struct {
	GroupID string `json:"group_id"`
	Scores
}

// Record is the full evaluation result: per-group and aggregate scores.
type Record struct {
	Groups    []GroupScores `json:"groups"`
	Aggregate Scores        `json:"aggregate"`
}

// Metric weights for the overall score.
const (
	weightAccuracy  = 0.4
	weightCoverage  = 0.3
	weightSoundness = 0.3
)

func (s *Scores) combine() {
	s.Overall = weightAccuracy*s.Accuracy + weightCoverage*s.Coverage + weightSoundness*s.Soundness
}
