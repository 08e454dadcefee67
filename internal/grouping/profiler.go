package grouping

import (
	"fmt"
	"sort"

	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/roster"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Profiler partitions a roster into mastery-based groups.
type Profiler struct {
	cfg Config
	log *logger.Logger
}

// NewProfiler creates a profiler.
func NewProfiler(cfg Config, log *logger.Logger) *Profiler {
	if log == nil {
		log = logger.Nop()
	}
	return &Profiler{cfg: cfg, log: log}
}

// Partition splits the roster into n groups. The returned bool is true
// when the run degraded (fewer students than requested groups, n reduced
// to the roster size). The partition is total and disjoint and every
// group is non-empty.
func (p *Profiler) Partition(students []roster.StudentRecord, g *skillmap.Graph, n int) ([]GroupProfile, bool, error) {
	if n <= 0 {
		return nil, false, fmt.Errorf("group count must be positive, got %d", n)
	}
	if len(students) == 0 {
		return nil, false, fmt.Errorf("cannot partition an empty roster")
	}

	degraded := false
	if n > len(students) {
		p.log.Warn("fewer students than requested groups, reducing group count",
			"requested", n, "students", len(students))
		n = len(students)
		degraded = true
	}

	var groups []GroupProfile
	if roster.HasScores(students) {
		groups = p.partitionByScore(students, g, n)
	} else {
		groups = p.partitionRoundRobin(students, g, n)
	}
	return groups, degraded, nil
}

// partitionByScore sorts students by aggregate diagnostic-skill score and
// splits them into n contiguous mastery bands of near-equal size, with the
// remainder going to the lowest-index (lowest-mastery) groups.
func (p *Profiler) partitionByScore(students []roster.StudentRecord, g *skillmap.Graph, n int) []GroupProfile {
	ranked := make([]scoredMember, len(students))
	for i, s := range students {
		ranked[i] = scoredMember{rec: s, score: aggregateScore(s, g)}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].rec.ID < ranked[j].rec.ID
	})

	base := len(ranked) / n
	rem := len(ranked) % n

	groups := make([]GroupProfile, 0, n)
	idx := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		members := ranked[idx : idx+size]
		idx += size

		var sum float64
		ids := make([]string, len(members))
		for j, m := range members {
			ids[j] = m.rec.ID
			sum += m.score
		}
		avg := sum / float64(len(members))

		profile := GroupProfile{
			GroupID:        fmt.Sprintf("group-%d", i+1),
			Members:        ids,
			AggregateScore: avg,
			MasteryLevel:   p.cfg.Cuts.LevelFor(avg),
			WeakSkills:     p.weakSkills(members, g),
		}
		applyDefaults(&profile)
		groups = append(groups, profile)
	}
	return groups
}

// partitionRoundRobin handles rosters without scores: membership is dealt
// round-robin and each group gets a representative skill-gap profile so the
// packs still differentiate.
func (p *Profiler) partitionRoundRobin(students []roster.StudentRecord, g *skillmap.Graph, n int) []GroupProfile {
	groups := make([]GroupProfile, n)
	for i := range groups {
		groups[i].GroupID = fmt.Sprintf("group-%d", i+1)
	}
	for i, s := range students {
		gi := i % n
		groups[gi].Members = append(groups[gi].Members, s.ID)
	}

	topo := g.TopologicalOrder()
	for i := range groups {
		// Spread synthetic aggregates across the mastery range so groups
		// cover low through high.
		score := 0.5
		if n > 1 {
			score = 0.2 + 0.6*float64(i)/float64(n-1)
		}
		groups[i].AggregateScore = score
		groups[i].MasteryLevel = p.cfg.Cuts.LevelFor(score)

		// Lower groups are assumed weak on more (and harder-reaching)
		// of the skill sequence; higher groups only on the tail.
		share := len(topo) - i*len(topo)/(n+1)
		if share < 1 {
			share = 1
		}
		start := len(topo) - share
		for _, s := range topo[start:] {
			if len(groups[i].WeakSkills) >= p.cfg.MaxWeakSkills {
				break
			}
			groups[i].WeakSkills = append(groups[i].WeakSkills, s.ID)
		}
		applyDefaults(&groups[i])
	}
	return groups
}

type scoredMember struct {
	rec   roster.StudentRecord
	score float64
}

// weakSkills returns the skills a band of students is weakest on, ordered
// worst first.
func (p *Profiler) weakSkills(members []scoredMember, g *skillmap.Graph) []string {
	type skillMean struct {
		id   string
		mean float64
	}

	var means []skillMean
	for _, s := range g.Skills() {
		var sum float64
		for _, m := range members {
			sum += m.rec.Scores[s.ID]
		}
		mean := sum / float64(len(members))
		if mean < p.cfg.WeakThreshold {
			means = append(means, skillMean{id: s.ID, mean: mean})
		}
	}

	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean < means[j].mean
		}
		return means[i].id < means[j].id
	})

	ids := make([]string, 0, len(means))
	for _, m := range means {
		if len(ids) >= p.cfg.MaxWeakSkills {
			break
		}
		ids = append(ids, m.id)
	}
	return ids
}

// aggregateScore is the mean of a student's scores over the graph's
// skills. Skills without a score count as zero.
func aggregateScore(s roster.StudentRecord, g *skillmap.Graph) float64 {
	skills := g.Skills()
	if len(skills) == 0 {
		return 0
	}
	var sum float64
	for _, sk := range skills {
		sum += s.Scores[sk.ID]
	}
	return sum / float64(len(skills))
}

// applyDefaults fills the generated-text fields with deterministic
// fallbacks. The labeler overwrites them when it succeeds; when it fails
// the group keeps these and the run continues.
func applyDefaults(p *GroupProfile) {
	if p.LearningStyle == "" {
		p.LearningStyle = "mixed"
	}
	if p.Rationale == "" {
		p.Rationale = fmt.Sprintf("%d students grouped at %s mastery (aggregate score %.2f).",
			len(p.Members), p.MasteryLevel, p.AggregateScore)
	}
}
