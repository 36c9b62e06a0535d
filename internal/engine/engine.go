package engine

import (
	"context"

	"github.com/termchat/termchat/internal/models"
	"github.com/termchat/termchat/internal/provider"
	"github.com/termchat/termchat/internal/stream"
)

// Engine runs chat turns: it owns the conversation history and dispatches
// it to the provider under the currently selected model.
type Engine struct {
	Provider provider.Provider
	Selector *models.Selector
	Conv     *Conversation
}

func New(p provider.Provider, s *models.Selector) *Engine {
	return &Engine{Provider: p, Selector: s, Conv: &Conversation{}}
}

// Send runs one turn: the text is appended as a user message, the full
// history is streamed through the provider, and each fragment is passed
// to onFragment as it arrives. On success the final answer (reasoning
// excluded) is appended as the assistant message and returned. On any
// error, cancellation included, the pending user message is rolled back
// so the history is exactly as it was before the turn.
func (e *Engine) Send(ctx context.Context, text string, onFragment func(provider.Fragment)) (string, error) {
	e.Conv.Append(provider.Message{Role: provider.RoleUser, Content: text})

	agg := stream.New()
	err := e.Provider.ChatStream(ctx, e.Selector.Current(), e.Conv.Snapshot(), func(f provider.Fragment) {
		agg.Push(f)
		if onFragment != nil {
			onFragment(f)
		}
	})
	if err != nil {
		agg.Discard()
		e.Conv.RollbackLastIfRole(provider.RoleUser)
		return "", err
	}

	answer := agg.Answer()
	e.Conv.Append(provider.Message{Role: provider.RoleAssistant, Content: answer})
	return answer, nil
}

// Clear wipes the conversation context; the next turn starts fresh.
func (e *Engine) Clear() { e.Conv.Clear() }
