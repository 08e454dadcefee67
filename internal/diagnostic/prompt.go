package diagnostic

import (
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/skillmap"
)

const buildSystemPrompt = `You are an assessment designer. Given a list of skills, you write one short diagnostic question per skill so a teacher can measure where each student stands.`

func buildUserMessage(g *skillmap.Graph) string {
	var b strings.Builder

	b.WriteString("Skills:\n")
	for _, s := range g.TopologicalOrder() {
		b.WriteString(fmt.Sprintf("- %s (id: %s, difficulty %d): %s\n", s.Name, s.ID, s.Difficulty, s.Description))
	}

	b.WriteString(`
Instructions:
Write a diagnostic assessment:
1. At least one question per skill. Use each skill's id verbatim in skill_id.
2. Questions must be answerable in writing with a short answer. Provide the correct answer in answer_key.
3. Match each question's difficulty to its skill's difficulty.
4. Estimate time_estimate_mins per question honestly. Do not compute any totals.
5. Write brief student-facing instructions for the whole assessment.`)

	return b.String()
}
