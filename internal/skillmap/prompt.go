package skillmap

import (
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/lesson"
)

const extractSystemPrompt = `You are a curriculum designer. Given a lesson summary, you break the lesson down into a small graph of discrete, teachable skills with prerequisite relationships.`

func buildExtractUserMessage(sum lesson.Summary, cfg Config) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Lesson: %s\n", sum.Title))
	if sum.Subject != "" {
		b.WriteString(fmt.Sprintf("Subject: %s\n", sum.Subject))
	}
	if sum.GradeLevel > 0 {
		b.WriteString(fmt.Sprintf("Grade: %d\n", sum.GradeLevel))
	}
	if sum.Difficulty != "" {
		b.WriteString(fmt.Sprintf("Difficulty: %s\n", sum.Difficulty))
	}

	b.WriteString("\nKey Concepts:\n")
	for _, c := range sum.KeyConcepts {
		b.WriteString(fmt.Sprintf("- %s\n", c))
	}

	b.WriteString("\nLearning Objectives:\n")
	for _, o := range sum.Objectives {
		b.WriteString(fmt.Sprintf("- %s\n", o))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Extract %d-%d skills that together cover this lesson:
1. Every key concept and every learning objective above must be covered by at least one skill. Copy the covered concepts and objectives verbatim into that skill's source_concepts.
2. Give each skill a short kebab-case id, a name, a one-sentence description, and a difficulty from 1 (easiest) to 10 (hardest) relative to the grade level.
3. List prerequisites by id. Only reference ids from this same skill list. The graph must have no cycles and at least one skill with no prerequisites.
4. Keep skills discrete: one skill per teachable idea, not one skill per sentence.`,
		cfg.MinSkills, cfg.MaxSkills))

	return b.String()
}
