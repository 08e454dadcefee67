package drafter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
)

// PracticeSchema defines the JSON schema for practice set generation.
var PracticeSchema = &llm.Schema{
	Name:        "practice-set",
	Description: "Practice exercises with answer keys for a group's focus skills",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exercises": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short identifier, e.g. \"ex1\"",
						},
						"skill_id": map[string]any{
							"type":        "string",
							"description": "ID of the skill this exercise practices",
						},
						"title": map[string]any{
							"type": "string",
						},
						"instructions": map[string]any{
							"type": "string",
						},
						"problems": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 1,
						},
						"answer_key": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "One answer per problem, in the same order",
						},
					},
					"required":             []any{"id", "skill_id", "title", "instructions", "problems", "answer_key"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"exercises"},
		"additionalProperties": false,
	},
}

const practiceSystemPrompt = `You are writing practice exercises for one group of students, targeted at their mastery level and focus skills.`

// PracticeDrafter generates the pack's practice set.
type PracticeDrafter struct {
	provider llm.Provider
	cfg      Config
}

func (d *PracticeDrafter) Kind() Kind { return KindPractice }

func (d *PracticeDrafter) Draft(ctx context.Context, in Input, p *pack.TeachingPack) error {
	ctx = llm.WithPurpose(ctx, "draft-practice")

	var b strings.Builder
	b.WriteString(planContext(in))
	if in.Prior != nil && len(in.Prior.Practice) > 0 {
		prior, _ := json.Marshal(in.Prior.Practice)
		b.WriteString("\nPrior draft to revise:\n")
		b.Write(prior)
		b.WriteString("\n")
	}
	b.WriteString(`
Instructions:
Write 2-4 exercises:
1. Each exercise targets one skill gap (skill_id from the lists above).
2. Give 3-6 problems per exercise and an answer key with one answer per problem, in order.
3. Problems within an exercise should ramp from easy to hard.
4. Keep instructions short and student-facing.`)

	req := llm.Request{
		System:      practiceSystemPrompt,
		Messages:    llm.UserTurn(b.String()),
		Schema:      PracticeSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	}

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("practice draft for %s: %w", in.Plan.GroupID, err)
	}

	var out struct {
		Exercises []pack.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fmt.Errorf("parse practice response: %w", err)
	}
	if len(out.Exercises) == 0 {
		return fmt.Errorf("practice draft for %s returned no exercises", in.Plan.GroupID)
	}

	for _, ex := range out.Exercises {
		if len(ex.AnswerKey) != len(ex.Problems) {
			return fmt.Errorf("practice draft for %s: exercise %q has %d answers for %d problems",
				in.Plan.GroupID, ex.ID, len(ex.AnswerKey), len(ex.Problems))
		}
	}

	p.Practice = out.Exercises
	return nil
}
