package llm

import "context"

type contextKey struct{}

var purposeKey contextKey

// PurposeUnlabeled is reported for calls whose context never went
// through WithPurpose.
const PurposeUnlabeled = "unknown"

// WithPurpose tags the context with the pipeline stage making the call:
// skill-extract, diagnostic, group-label, pack-plan, or one of the
// draft-* labels. The label flows into the audit trail and, where the
// vendor API accepts caller metadata, into the request itself.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the stage label on ctx, or PurposeUnlabeled.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return PurposeUnlabeled
}
