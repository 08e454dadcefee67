package skillmap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/llm"
)

// Extractor derives a skill graph from a lesson summary.
type Extractor struct {
	provider llm.Provider
	cfg      Config
}

// NewExtractor creates a skill extractor.
func NewExtractor(provider llm.Provider, cfg Config) *Extractor {
	return &Extractor{provider: provider, cfg: cfg}
}

// graphOutput is the raw LLM response before validation.
type graphOutput struct {
	Skills []Skill `json:"skills"`
}

// Extract derives the skill graph for a lesson. Empty or malformed output
// is an error: there is no per-group scope to degrade to, so the caller
// fails the whole run.
func (e *Extractor) Extract(ctx context.Context, sum lesson.Summary) (*Graph, error) {
	ctx = llm.WithPurpose(ctx, "skill-extract")

	req := llm.Request{
		System:      extractSystemPrompt,
		Messages:    llm.UserTurn(buildExtractUserMessage(sum, e.cfg)),
		Schema:      GraphSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("skill extraction: %w", err)
	}

	var out graphOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse skill graph response: %w", err)
	}

	if len(out.Skills) == 0 {
		return nil, fmt.Errorf("skill extraction returned no skills")
	}
	if len(out.Skills) < e.cfg.MinSkills || len(out.Skills) > e.cfg.MaxSkills {
		return nil, fmt.Errorf("skill extraction returned %d skills, want %d-%d",
			len(out.Skills), e.cfg.MinSkills, e.cfg.MaxSkills)
	}

	graph, err := NewGraph(out.Skills)
	if err != nil {
		return nil, err
	}

	if err := checkCoverage(sum, graph); err != nil {
		return nil, err
	}

	return graph, nil
}

// checkCoverage verifies that every key concept and objective of the
// lesson maps to at least one skill. Matching is deterministic: the
// concept must appear in a skill's name, description, or source concepts.
func checkCoverage(sum lesson.Summary, g *Graph) error {
	var missing []string

	items := make([]string, 0, len(sum.KeyConcepts)+len(sum.Objectives))
	items = append(items, sum.KeyConcepts...)
	items = append(items, sum.Objectives...)

	for _, item := range items {
		if !covered(item, g) {
			missing = append(missing, item)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("skill graph does not cover: %s", strings.Join(missing, "; "))
	}
	return nil
}

func covered(item string, g *Graph) bool {
	want := normalize(item)
	for _, s := range g.Skills() {
		if strings.Contains(normalize(s.Name), want) || strings.Contains(normalize(s.Description), want) {
			return true
		}
		for _, src := range s.SourceConcepts {
			if normalize(src) == want || strings.Contains(normalize(src), want) {
				return true
			}
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
