package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// AuditRecord captures one LLM call for the audit trail.
type AuditRecord struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// AuditSink receives audit records. Implemented by the store package.
type AuditSink interface {
	RecordLLMCall(ctx context.Context, rec AuditRecord) error
}

// AuditProvider is a decorator that records every LLM call as an audit event.
type AuditProvider struct {
	inner Provider
	name  string
	sink  AuditSink
}

// WithAudit wraps a Provider with audit recording. The name identifies the
// provider in the audit trail. A nil sink returns the provider unwrapped.
func WithAudit(p Provider, name string, sink AuditSink) Provider {
	if sink == nil {
		return p
	}
	return &AuditProvider{inner: p, name: name, sink: sink}
}

func (a *AuditProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := a.inner.Generate(ctx, req)

	rec := AuditRecord{
		Provider:    a.name,
		Model:       a.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.Model = resp.Model
		rec.ResponseBody = string(resp.Content)
	}

	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	// Record the call but never fail the request over audit trouble.
	if sinkErr := a.sink.RecordLLMCall(ctx, rec); sinkErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record LLM audit event: %v\n", sinkErr)
	}

	return resp, err
}

func (a *AuditProvider) ModelID() string {
	return a.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
