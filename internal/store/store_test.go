package store

import (
	"context"
	"testing"
	"time"

	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/llm"
)

func llmAuditRecord() llm.AuditRecord {
	return llm.AuditRecord{
		Provider:     "anthropic",
		Model:        "m1",
		Purpose:      "group-label",
		InputTokens:  55,
		OutputTokens: 12,
		LatencyMs:    640,
		Success:      true,
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	data := []LLMRequestEventData{
		{Provider: "anthropic", Model: "m1", Purpose: "skill-extract", InputTokens: 100, OutputTokens: 50, LatencyMs: 800, Success: true, RequestBody: "req-1", ResponseBody: "resp-1"},
		{Provider: "anthropic", Model: "m1", Purpose: "draft-quiz", InputTokens: 200, OutputTokens: 120, LatencyMs: 1200, Success: true},
		{Provider: "anthropic", Model: "m2", Purpose: "draft-quiz", InputTokens: 10, OutputTokens: 0, LatencyMs: 300, Success: false, ErrorMessage: "timeout"},
	}
	for i, d := range data {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	// Newest first.
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("events not ordered newest first: %d then %d", events[0].Sequence, events[1].Sequence)
	}
	if events[0].ErrorMessage != "timeout" {
		t.Errorf("newest event error = %q, want %q", events[0].ErrorMessage, "timeout")
	}

	// Purpose filter.
	events, err = repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "draft-quiz"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d draft-quiz events, want 2", len(events))
	}

	// Limit.
	events, err = repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query with limit: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events with limit 1", len(events))
	}
}

func TestGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "m1", Purpose: "pack-plan",
		InputTokens: 42, OutputTokens: 7, Success: true,
		RequestBody: `{"messages":[]}`, ResponseBody: `{"strategy":"spiral"}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil || len(events) != 1 {
		t.Fatalf("query: %v (%d events)", err, len(events))
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected event, got nil")
	}
	if e.RequestBody != `{"messages":[]}` {
		t.Errorf("request body = %q", e.RequestBody)
	}
	if e.ResponseBody != `{"strategy":"spiral"}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}

	missing, err := repo.GetLLMEvent(ctx, 99999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}
}

func TestLLMUsageAggregation(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appends := []LLMRequestEventData{
		{Provider: "anthropic", Model: "m1", Purpose: "skill-extract", InputTokens: 100, OutputTokens: 40, LatencyMs: 1000, Success: true},
		{Provider: "anthropic", Model: "m1", Purpose: "skill-extract", InputTokens: 300, OutputTokens: 60, LatencyMs: 3000, Success: true},
		{Provider: "anthropic", Model: "m2", Purpose: "draft-video", InputTokens: 10, OutputTokens: 5, LatencyMs: 200, Success: true},
	}
	for i, d := range appends {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	// Heaviest purpose first.
	if byPurpose[0].Purpose != "skill-extract" {
		t.Errorf("heaviest purpose = %q", byPurpose[0].Purpose)
	}
	if byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 400 || byPurpose[0].OutputTokens != 100 {
		t.Errorf("skill-extract usage = %+v", byPurpose[0])
	}
	if byPurpose[0].AvgLatencyMs != 2000 {
		t.Errorf("avg latency = %d, want 2000", byPurpose[0].AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("got %d models, want 2", len(byModel))
	}
	if byModel[0].Model != "m1" || byModel[0].Calls != 2 {
		t.Errorf("heaviest model = %+v", byModel[0])
	}
}

func TestAuditSinkRecordsEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sink := s.AuditSink()
	err := sink.RecordLLMCall(ctx, llmAuditRecord())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Purpose != "group-label" {
		t.Errorf("purpose = %q", events[0].Purpose)
	}
}

func TestJobArchiveRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.JobRepo()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	j := job.Job{
		ID:          "job-1",
		Status:      job.StatusCompleted,
		Message:     "done",
		Groups:      map[string]job.GroupState{"group-1": {Status: job.StatusCompleted}},
		Result:      &job.Result{Warnings: []string{"group-2 video skipped"}},
		CreatedAt:   now.Add(-time.Minute),
		CompletedAt: now,
	}

	if err := repo.ArchiveJob(ctx, j); err != nil {
		t.Fatalf("archive: %v", err)
	}

	got, err := repo.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected archived job")
	}
	if got.Status != job.StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}
	if len(got.Result.Warnings) != 1 {
		t.Errorf("warnings = %v", got.Result.Warnings)
	}

	missing, err := repo.GetJob(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobArchiveRejectsLiveJobs(t *testing.T) {
	s := openTestStore(t)
	err := s.JobRepo().ArchiveJob(context.Background(), job.Job{ID: "j", Status: job.StatusProcessing})
	if err == nil {
		t.Fatal("expected error archiving a live job")
	}
}

func TestListJobs(t *testing.T) {
	s := openTestStore(t)
	repo := s.JobRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		j := job.Job{
			ID:          jobID(i),
			Status:      job.StatusCompleted,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			CompletedAt: base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		}
		if err := repo.ArchiveJob(ctx, j); err != nil {
			t.Fatalf("archive %d: %v", i, err)
		}
	}

	list, err := repo.ListJobs(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d summaries, want 2", len(list))
	}
	// Newest first.
	if list[0].JobID != jobID(2) {
		t.Errorf("first summary = %q, want %q", list[0].JobID, jobID(2))
	}
}

func jobID(i int) string {
	return string(rune('a'+i)) + "-job"
}
