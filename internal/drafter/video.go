package drafter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/pack"
)

// VideoSchema defines the JSON schema for video script generation.
var VideoSchema = &llm.Schema{
	Name:        "video-script",
	Description: "Narration script for a short teaching video",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type": "string",
			},
			"narration": map[string]any{
				"type":        "string",
				"description": "Full spoken narration, 200-400 words",
			},
			"visual_description": map[string]any{
				"type":        "string",
				"description": "Scene-by-scene description of what is shown on screen",
			},
		},
		"required":             []any{"title", "narration", "visual_description"},
		"additionalProperties": false,
	},
}

const videoSystemPrompt = `You are scripting a short teaching video for one group of students. The narration teaches the group's focus skills at their mastery level.`

// VideoDrafter generates the pack's video script.
type VideoDrafter struct {
	provider llm.Provider
	cfg      Config
}

func (d *VideoDrafter) Kind() Kind { return KindVideo }

func (d *VideoDrafter) Draft(ctx context.Context, in Input, p *pack.TeachingPack) error {
	ctx = llm.WithPurpose(ctx, "draft-video")

	var b strings.Builder
	b.WriteString(planContext(in))
	if in.Prior != nil && in.Prior.Video != nil {
		b.WriteString(fmt.Sprintf("\nPrior draft to revise:\nTitle: %s\nNarration: %s\n",
			in.Prior.Video.Title, in.Prior.Video.Narration))
	}
	b.WriteString(`
Instructions:
Write a 2-3 minute video script:
1. Narration of 200-400 words, spoken directly to the students.
2. Teach the focus skills in order, with one worked example.
3. Describe the visuals scene by scene so a rendering service can produce the video.`)

	req := llm.Request{
		System:      videoSystemPrompt,
		Messages:    llm.UserTurn(b.String()),
		Schema:      VideoSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	}

	resp, err := d.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("video draft for %s: %w", in.Plan.GroupID, err)
	}

	var out pack.VideoScript
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return fmt.Errorf("parse video response: %w", err)
	}
	if out.Narration == "" {
		return fmt.Errorf("video draft for %s returned empty narration", in.Plan.GroupID)
	}

	p.Video = &out
	return nil
}
