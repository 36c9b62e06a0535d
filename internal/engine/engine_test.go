package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/termchat/termchat/internal/models"
	"github.com/termchat/termchat/internal/provider"
)

// fakeProvider replays a canned fragment sequence and records the request.
type fakeProvider struct {
	frags       []provider.Fragment
	err         error
	gotModel    string
	gotMessages []provider.Message
}

func (f *fakeProvider) ChatStream(ctx context.Context, model string, messages []provider.Message, onFragment func(provider.Fragment)) error {
	f.gotModel = model
	f.gotMessages = messages
	for _, fr := range f.frags {
		onFragment(fr)
	}
	return f.err
}

func newTestEngine(p provider.Provider) *Engine {
	return New(p, models.NewSelector("test/model", []string{"test/model", "other/model"}))
}

func TestSendAppendsCompletedExchange(t *testing.T) {
	fake := &fakeProvider{frags: []provider.Fragment{
		{Kind: provider.KindReasoning, Text: "a"},
		{Kind: provider.KindReasoning, Text: "b"},
		{Kind: provider.KindAnswer, Text: "c"},
		{Kind: provider.KindAnswer, Text: "d"},
	}}
	eng := newTestEngine(fake)

	answer, err := eng.Send(context.Background(), "question", nil)
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if answer != "cd" {
		t.Errorf("answer = %q, want %q", answer, "cd")
	}

	snap := eng.Conv.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("conversation has %d messages, want 2", len(snap))
	}
	if snap[0].Role != provider.RoleUser || snap[0].Content != "question" {
		t.Errorf("first message = %+v, want the user question", snap[0])
	}
	// only the answer is persisted; reasoning text never reaches the store
	if snap[1].Role != provider.RoleAssistant || snap[1].Content != "cd" {
		t.Errorf("second message = %+v, want assistant %q", snap[1], "cd")
	}
}

func TestSendForwardsFragmentsInOrder(t *testing.T) {
	fake := &fakeProvider{frags: []provider.Fragment{
		{Kind: provider.KindAnswer, Text: "hello "},
		{Kind: provider.KindAnswer, Text: "world"},
	}}
	eng := newTestEngine(fake)

	var got []provider.Fragment
	answer, err := eng.Send(context.Background(), "hi", func(f provider.Fragment) {
		got = append(got, f)
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if answer != "hello world" {
		t.Errorf("answer = %q, want %q", answer, "hello world")
	}
	if len(got) != 2 || got[0].Text != "hello " || got[1].Text != "world" {
		t.Errorf("forwarded fragments = %+v", got)
	}
}

func TestSendSendsFullHistoryAndActiveModel(t *testing.T) {
	fake := &fakeProvider{frags: []provider.Fragment{{Kind: provider.KindAnswer, Text: "ok"}}}
	eng := newTestEngine(fake)
	eng.Conv.Append(provider.Message{Role: provider.RoleUser, Content: "earlier"})
	eng.Conv.Append(provider.Message{Role: provider.RoleAssistant, Content: "reply"})

	if _, err := eng.Send(context.Background(), "now", nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if fake.gotModel != "test/model" {
		t.Errorf("request model = %q, want test/model", fake.gotModel)
	}
	if len(fake.gotMessages) != 3 {
		t.Fatalf("request carried %d messages, want 3", len(fake.gotMessages))
	}
	if fake.gotMessages[2].Content != "now" {
		t.Errorf("last request message = %+v, want the new user turn", fake.gotMessages[2])
	}
}

func TestSendRollsBackOnError(t *testing.T) {
	fake := &fakeProvider{
		frags: []provider.Fragment{{Kind: provider.KindAnswer, Text: "partial"}},
		err:   errors.New("boom"),
	}
	eng := newTestEngine(fake)
	eng.Conv.Append(provider.Message{Role: provider.RoleUser, Content: "earlier"})
	eng.Conv.Append(provider.Message{Role: provider.RoleAssistant, Content: "reply"})
	before := eng.Conv.Len()

	if _, err := eng.Send(context.Background(), "doomed", nil); err == nil {
		t.Fatal("expected an error")
	}
	if eng.Conv.Len() != before {
		t.Errorf("conversation length = %d after failed turn, want %d", eng.Conv.Len(), before)
	}
	snap := eng.Conv.Snapshot()
	if last := snap[len(snap)-1]; last.Role == provider.RoleUser && last.Content == "doomed" {
		t.Error("failed turn left an unanswered trailing user message")
	}
}

func TestSendRollsBackOnCancellation(t *testing.T) {
	fake := &fakeProvider{err: context.Canceled}
	eng := newTestEngine(fake)

	_, err := eng.Send(context.Background(), "interrupted", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if eng.Conv.Len() != 0 {
		t.Errorf("conversation length = %d after cancelled turn, want 0", eng.Conv.Len())
	}
}

func TestClearResetsContext(t *testing.T) {
	fake := &fakeProvider{frags: []provider.Fragment{{Kind: provider.KindAnswer, Text: "ok"}}}
	eng := newTestEngine(fake)
	if _, err := eng.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	eng.Clear()
	if eng.Conv.Len() != 0 {
		t.Errorf("conversation length = %d after Clear, want 0", eng.Conv.Len())
	}
	if _, err := eng.Send(context.Background(), "fresh", nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(fake.gotMessages) != 1 {
		t.Errorf("request after Clear carried %d messages, want 1", len(fake.gotMessages))
	}
}
