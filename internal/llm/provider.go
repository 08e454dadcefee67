package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single entry point every pipeline stage uses to talk
// to a language model. Skill extraction, diagnostic building, group
// labeling, pack planning and the four drafters all hold a Provider and
// nothing more; which vendor sits behind it is a deployment decision.
type Provider interface {
	// Generate performs one structured completion. When req.Schema is
	// set the returned Content is JSON already validated against it;
	// otherwise Content is the raw text wrapped as a JSON value. The
	// purpose label attached to ctx via WithPurpose is forwarded to the
	// vendor where its API has a slot for it, and recorded in the
	// audit trail either way.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the configured model identifier.
	ModelID() string
}

// Request is one generation call. Every stage in the pack pipeline is
// single turn: a system prompt framing the stage plus one user message
// carrying the lesson, profile or plan context.
type Request struct {
	// System frames the stage, e.g. "You are a curriculum analyst".
	System string

	// Messages is the conversation. UserTurn builds the usual
	// single-message form; Prior drafts during redrafting add an
	// assistant message before the revision request.
	Messages []Message

	// Schema, when non-nil, switches the provider to its native
	// structured-output mechanism and the response Content to
	// schema-validated JSON.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0,1]. Zero means deterministic; the verifiable
	// stages (extraction, diagnostic) run at zero, the drafters above it.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserTurn wraps content as the single user message of a request.
func UserTurn(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema names and defines the JSON structure a stage expects back.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "skill-graph" or
	// "quiz-questions". Vendors that name their output format (tool
	// name, response-format name) receive it.
	Name string

	// Description tells the model what the structure represents.
	Description string

	// Definition is the JSON Schema as a plain map.
	Definition map[string]any
}

// Response is the outcome of one generation call.
type Response struct {
	// Content is schema-validated JSON when the request carried a
	// Schema, otherwise the raw text as a JSON value.
	Content json.RawMessage

	// Usage is the token count the vendor reported for this call.
	Usage Usage

	// Model is the model that actually served the request, which may
	// be more specific than the configured ModelID.
	Model string

	// StopReason is normalized across vendors to "end" or "max_tokens".
	StopReason string
}

// Usage is per-call token accounting, persisted with the audit event.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
