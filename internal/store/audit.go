package store

import (
	"context"

	"github.com/teachkit/packgen/internal/llm"
)

// auditSink bridges llm audit records into the event log.
type auditSink struct {
	events EventRepo
}

func (s *auditSink) RecordLLMCall(ctx context.Context, rec llm.AuditRecord) error {
	return s.events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     rec.Provider,
		Model:        rec.Model,
		Purpose:      rec.Purpose,
		InputTokens:  rec.InputTokens,
		OutputTokens: rec.OutputTokens,
		LatencyMs:    rec.LatencyMs,
		Success:      rec.Success,
		ErrorMessage: rec.ErrorMessage,
		RequestBody:  rec.RequestBody,
		ResponseBody: rec.ResponseBody,
	})
}
