package grouping

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/teachkit/packgen/internal/llm"
)

func TestLabelFillsDescriptors(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"learning_style": "visual", "rationale": "Use diagrams for fraction comparisons."}`),
	})
	l := NewLabeler(mock, DefaultConfig())

	profile := &GroupProfile{
		GroupID:        "group-1",
		Members:        []string{"s1", "s2"},
		MasteryLevel:   LevelLow,
		AggregateScore: 0.2,
		WeakSkills:     []string{"a"},
	}

	if err := l.Label(context.Background(), profile, testGraph(t)); err != nil {
		t.Fatalf("Label returned error: %v", err)
	}
	if profile.LearningStyle != "visual" {
		t.Errorf("LearningStyle = %q, want visual", profile.LearningStyle)
	}
	if profile.Rationale == "" {
		t.Error("Rationale is empty")
	}
}

func TestLabelNeverMovesMasteryLevel(t *testing.T) {
	// The generated text claims the group is advanced; the ordinal label
	// derived from the numeric score must not move.
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"learning_style": "independent", "rationale": "This is clearly a high mastery group, treat them as advanced."}`),
	})
	l := NewLabeler(mock, DefaultConfig())

	profile := &GroupProfile{
		GroupID:        "group-1",
		Members:        []string{"s1"},
		MasteryLevel:   LevelLow,
		AggregateScore: 0.15,
	}

	if err := l.Label(context.Background(), profile, testGraph(t)); err != nil {
		t.Fatal(err)
	}
	if profile.MasteryLevel != LevelLow {
		t.Fatalf("MasteryLevel = %s, want low (labeler must not move it)", profile.MasteryLevel)
	}
}

func TestLabelFailureKeepsDefaults(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	l := NewLabeler(mock, DefaultConfig())

	profile := &GroupProfile{
		GroupID:       "group-1",
		Members:       []string{"s1"},
		MasteryLevel:  LevelMedium,
		LearningStyle: "mixed",
		Rationale:     "1 students grouped at medium mastery (aggregate score 0.50).",
	}

	if err := l.Label(context.Background(), profile, testGraph(t)); err == nil {
		t.Fatal("expected error from unavailable provider")
	}
	if profile.LearningStyle != "mixed" {
		t.Errorf("LearningStyle changed on failure: %q", profile.LearningStyle)
	}
	if profile.Rationale == "" {
		t.Error("Rationale cleared on failure")
	}
}
