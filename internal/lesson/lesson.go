package lesson

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Summary is the parsed description of a lesson. It is produced upstream
// by a document-parsing service and treated as immutable once loaded.
type Summary struct {
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	GradeLevel  int      `json:"grade_level"`
	KeyConcepts []string `json:"key_concepts"`
	Objectives  []string `json:"learning_objectives"`
	Difficulty  string   `json:"difficulty_level"`
}

// Validate checks that the summary carries enough material to derive
// skills from.
func (s Summary) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, "title is empty")
	}
	if len(s.KeyConcepts) == 0 {
		errs = append(errs, "no key concepts")
	}
	if len(s.Objectives) == 0 {
		errs = append(errs, "no learning objectives")
	}
	if s.GradeLevel < 0 {
		errs = append(errs, fmt.Sprintf("grade level must be >= 0, got %d", s.GradeLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid lesson summary: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Parse decodes a JSON lesson summary.
func Parse(data []byte) (Summary, error) {
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, fmt.Errorf("parse lesson summary: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// Load reads a JSON lesson summary from a file.
func Load(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read lesson file: %w", err)
	}
	return Parse(data)
}
