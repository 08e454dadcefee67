package job

import (
	"time"

	"github.com/teachkit/packgen/internal/diagnostic"
	"github.com/teachkit/packgen/internal/eval"
	"github.com/teachkit/packgen/internal/grouping"
	"github.com/teachkit/packgen/internal/lesson"
	"github.com/teachkit/packgen/internal/pack"
	"github.com/teachkit/packgen/internal/packplan"
	"github.com/teachkit/packgen/internal/skillmap"
)

// Status is the job state machine:
// pending -> processing -> {completed | completed_with_errors | failed}.
type Status string

const (
	StatusPending             Status = "pending"
	StatusProcessing          Status = "processing"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed:
		return true
	}
	return false
}

// GroupState is the sub-status for one group's pack generation.
type GroupState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RenderState tracks one nested rendering job. The flattened status query
// composes these with the parent job so callers never poll two levels.
type RenderState struct {
	RenderID string `json:"render_id"`
	GroupID  string `json:"group_id"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	AssetURL string `json:"asset_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is the payload of a finished run, populated only in the
// completed and completed_with_errors states.
type Result struct {
	Lesson     lesson.Summary          `json:"lesson"`
	Graph      *skillmap.Graph         `json:"skill_graph"`
	Diagnostic *diagnostic.Diagnostic  `json:"diagnostic"`
	Profiles   []grouping.GroupProfile `json:"profiles"`
	Plans      []packplan.PackPlan     `json:"plans,omitempty"`
	Packs      []pack.TeachingPack     `json:"packs"`
	Evaluation *eval.Record            `json:"evaluation,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// Job is one pipeline run. Transitions are driven solely by the
// orchestrator through the store; terminal states are immutable.
type Job struct {
	ID          string                 `json:"id"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	Groups      map[string]GroupState  `json:"groups,omitempty"`
	Renders     map[string]RenderState `json:"renders,omitempty"`
	Result      *Result                `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt time.Time              `json:"completed_at,omitzero"`
}
