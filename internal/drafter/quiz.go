package drafter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
)

// QuizSchema defines the JSON schema for quiz generation.
var QuizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "A multiple-choice quiz assessing a group's focus skills",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short identifier, e.g. \"q1\"",
						},
						"skill_id": map[string]any{
							"type":        "string",
							"description": "ID of the skill this question assesses, from the given list",
						},
						"text": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    3,
							"maxItems":    5,
							"description": "Answer options. Exactly one must equal correct_answer.",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "The correct option, copied verbatim from options",
						},
						"difficulty": map[string]any{
							"type":    "integer",
							"minimum": 1,
							"maximum": 10,
						},
						"hint": map[string]any{
							"type": "string",
						},
						"explanation": map[string]any{
							"type": "string",
						},
					},
					"required":             []any{"id", "skill_id", "text", "options", "correct_answer", "difficulty", "hint", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

const quizSystemPrompt = `You are writing a multiple-choice quiz for one group of students. Every question assesses one of the group's focus skills at their mastery level.`

// QuizDrafter generates the pack's quiz. Beyond the shared contract it
// enforces two structural rules on every question: exactly one option
// equals the correct answer, and the referenced skill exists in the
// plan's gap list or the skill graph.
type QuizDrafter struct {
	provider llm.Provider
	cfg      Config
}

func (d *QuizDrafter) Kind() Kind { return KindQuiz }

func (d *QuizDrafter) Draft(ctx context.Context, in Input, p *pack.TeachingPack) error {
	ctx = llm.WithPurpose(ctx, "draft-quiz")

	var b strings.Builder
	b.WriteString(planContext(in))
	if in.Prior != nil && len(in.Prior.Quiz) > 0 {
		prior, _ := json.Marshal(in.Prior.Quiz)
		b.WriteString("\nPrior draft to revise:\n")
		b.Write(prior)
		b.WriteString("\n")
	}
	b.WriteString(`
Instructions:
Write 5-8 multiple-choice questions:
1. Use each skill's id verbatim in skill_id. Only ids from the lists above are allowed.
2. Give 3-5 options per question. correct_answer must be copied verbatim from the options, and no other option may repeat it.
3. Match difficulty to the group's mastery level.
4. Include a short hint and an explanation for each question.`)

	req := llm.Request{
		System:      quizSystemPrompt,
		Messages:    llm.UserTurn(b.String()),
		Schema:      QuizSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	}

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("quiz draft for %s: %w", in.Plan.GroupID, err)
	}

	var out struct {
		Questions []pack.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fmt.Errorf("parse quiz response: %w", err)
	}
	if len(out.Questions) == 0 {
		return fmt.Errorf("quiz draft for %s returned no questions", in.Plan.GroupID)
	}

	for _, q := range out.Questions {
		if err := CheckQuestion(q, in); err != nil {
			return fmt.Errorf("quiz draft for %s: %w", in.Plan.GroupID, err)
		}
	}

	p.Quiz = out.Questions
	return nil
}

// CheckQuestion enforces the quiz structural rules for one question. The
// verifier reuses it after generation.
func CheckQuestion(q pack.QuizQuestion, in Input) error {
	matches := 0
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("question %q: %d options equal the correct answer, want exactly 1", q.ID, matches)
	}
	if !allowedSkill(q.SkillID, in) {
		return fmt.Errorf("question %q references unknown skill %q", q.ID, q.SkillID)
	}
	return nil
}
