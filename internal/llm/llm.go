// Package llm talks to the chat model behind the document assistant. Each
// vendor SDK sits behind Provider; retries, key rotation and request
// recording are layered on as Provider decorators.
package llm

import "context"

// Provider generates one reply for a conversation.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider sends requests to.
	ModelID() string
}

// Request is a single generation call.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64 // 0 leaves the vendor default
}

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Role is who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason says why the model stopped producing text.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the model's reply.
type Response struct {
	Text  string
	Usage Usage
	// Model is what the vendor reports served the call. It can differ from
	// ModelID when an alias was resolved.
	Model string
	Stop  StopReason
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
