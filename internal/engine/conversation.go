package engine

import "github.com/termchat/termchat/internal/provider"

// Conversation is the ordered message history; insertion order is the
// context order sent on every turn. Only Append and Clear mutate it,
// plus RollbackLastIfRole to undo an unpaired user turn.
type Conversation struct {
	messages []provider.Message
}

func (c *Conversation) Append(m provider.Message) {
	c.messages = append(c.messages, m)
}

func (c *Conversation) Clear() {
	c.messages = nil
}

// RollbackLastIfRole removes the final message when its role matches and
// reports whether anything was removed. No-op on an empty conversation
// or a different trailing role.
func (c *Conversation) RollbackLastIfRole(role string) bool {
	n := len(c.messages)
	if n == 0 || c.messages[n-1].Role != role {
		return false
	}
	c.messages = c.messages[:n-1]
	return true
}

func (c *Conversation) Len() int { return len(c.messages) }

// Snapshot returns a copy of the history for use as a request payload.
func (c *Conversation) Snapshot() []provider.Message {
	out := make([]provider.Message, len(c.messages))
	copy(out, c.messages)
	return out
}
