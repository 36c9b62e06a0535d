package provider

import "context"

// Roles carried by conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation context. The ordered message
// sequence is the full context sent on every turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Kind tags a streamed fragment as answer or reasoning text.
type Kind int

const (
	KindAnswer Kind = iota
	KindReasoning
)

// Fragment is one incremental unit of streamed text, tagged by kind.
// Reasoning fragments are the secondary "thinking" channel some models
// emit before (or alongside) the answer.
type Fragment struct {
	Kind Kind
	Text string
}

// Provider streams a chat completion for the given model and message
// history, calling onFragment for every delta in arrival order. It
// returns once the stream is exhausted, fails, or ctx is cancelled.
type Provider interface {
	ChatStream(ctx context.Context, model string, messages []Message, onFragment func(Fragment)) error
}
