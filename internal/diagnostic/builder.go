package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Builder generates a diagnostic assessment from a skill graph.
type Builder struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

// NewBuilder creates a diagnostic builder.
func NewBuilder(provider llm.Provider, cfg Config, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{provider: provider, cfg: cfg, log: log}
}

// diagnosticOutput is the raw LLM response. Any total the model asserts is
// ignored: TotalTime is recomputed from the per-question estimates.
type diagnosticOutput struct {
	Instructions string     `json:"instructions"`
	Questions    []Question `json:"questions"`
}

// Build generates the diagnostic. Questions referencing unknown skills are
// dropped; skills left without a question are recorded as uncovered and
// logged, not failed.
func (b *Builder) Build(ctx context.Context, g *skillmap.Graph) (*Diagnostic, error) {
	ctx = llm.WithPurpose(ctx, "diagnostic")

	req := llm.Request{
		System:      buildSystemPrompt,
		Messages:    llm.UserTurn(buildUserMessage(g)),
		Schema:      DiagnosticSchema,
		MaxTokens:   b.cfg.MaxTokens,
		Temperature: b.cfg.Temperature,
	}

	resp, err := b.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("diagnostic generation: %w", err)
	}

	var out diagnosticOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse diagnostic response: %w", err)
	}

	d := &Diagnostic{Instructions: out.Instructions}

	for _, q := range out.Questions {
		if !g.Contains(q.SkillID) {
			b.log.Warn("dropping diagnostic question for unknown skill",
				"question_id", q.ID, "skill_id", q.SkillID)
			continue
		}
		d.Questions = append(d.Questions, q)
		d.TotalTime += q.TimeEstimate
	}

	if len(d.Questions) == 0 {
		return nil, fmt.Errorf("diagnostic generation returned no usable questions")
	}

	for _, s := range g.TopologicalOrder() {
		if !d.Covers(s.ID) {
			d.UncoveredSkills = append(d.UncoveredSkills, s.ID)
		}
	}
	if len(d.UncoveredSkills) > 0 {
		b.log.Warn("diagnostic leaves skills uncovered", "skills", d.UncoveredSkills)
	}

	return d, nil
}
