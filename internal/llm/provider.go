// Package llm is the client layer for the external AI text services the
// assessment engine depends on: free-text answer evaluation and text
// simplification. It abstracts over several hosted providers behind a
// single Provider interface and layers retry, event logging and JSON
// schema validation on top, so the scoring code never talks to a vendor
// SDK directly.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for AI service interaction.
type Provider interface {
	// Generate sends a prompt and returns the model output. When the
	// request carries a Schema, the response Content is JSON validated
	// against it; otherwise Content is the raw text of the reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one call to the AI service.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Assessment and simplification are
	// single-turn, so this usually holds one user message.
	Messages []Message

	// Schema, when set, instructs the provider to produce JSON conforming
	// to it via the provider's native structured-output mechanism.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0–1.0. Zero means deterministic.
	Temperature float64
}

// Message is a single conversation message.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "answer-assessment".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output: validated JSON when the request
	// had a Schema, raw reply text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
