package stream

import (
	"testing"

	"github.com/termchat/termchat/internal/provider"
)

func reasoning(text string) provider.Fragment {
	return provider.Fragment{Kind: provider.KindReasoning, Text: text}
}

func answer(text string) provider.Fragment {
	return provider.Fragment{Kind: provider.KindAnswer, Text: text}
}

func TestReasoningThenAnswer(t *testing.T) {
	a := New()
	a.Push(reasoning("a"))
	a.Push(reasoning("b"))
	a.Push(answer("c"))
	d := a.Push(answer("d"))

	if a.Reasoning() != "ab" {
		t.Errorf("Reasoning() = %q, want %q", a.Reasoning(), "ab")
	}
	if a.Answer() != "cd" {
		t.Errorf("Answer() = %q, want %q", a.Answer(), "cd")
	}
	if d.Phase != PhaseAnswering {
		t.Errorf("phase = %v after answer fragment, want PhaseAnswering", d.Phase)
	}
	if d.Reasoning != "ab" || d.Answer != "cd" {
		t.Errorf("directive = %+v, want both sections populated", d)
	}
}

func TestAnswerOnlyNeverShowsReasoning(t *testing.T) {
	a := New()
	d1 := a.Push(answer("hello "))
	d2 := a.Push(answer("world"))

	if a.Answer() != "hello world" {
		t.Errorf("Answer() = %q, want %q", a.Answer(), "hello world")
	}
	for i, d := range []Directive{d1, d2} {
		if d.Reasoning != "" {
			t.Errorf("directive %d carries reasoning %q, want none", i, d.Reasoning)
		}
		if d.Phase != PhaseAnswering {
			t.Errorf("directive %d phase = %v, want PhaseAnswering", i, d.Phase)
		}
	}
	if a.HasReasoning() {
		t.Error("HasReasoning() = true for an answer-only stream")
	}
}

func TestPhaseTransitions(t *testing.T) {
	a := New()
	if a.Directive().Phase != PhaseAnswering {
		t.Error("phase must start at PhaseAnswering")
	}
	if d := a.Push(reasoning("think")); d.Phase != PhaseReasoning {
		t.Errorf("phase = %v after reasoning fragment, want PhaseReasoning", d.Phase)
	}
	if d := a.Push(answer("say")); d.Phase != PhaseAnswering {
		t.Errorf("phase = %v after answer fragment, want PhaseAnswering", d.Phase)
	}
}

func TestReasoningDirectiveGrows(t *testing.T) {
	a := New()
	if d := a.Push(reasoning("one ")); d.Reasoning != "one " {
		t.Errorf("directive reasoning = %q, want %q", d.Reasoning, "one ")
	}
	if d := a.Push(reasoning("two")); d.Reasoning != "one two" {
		t.Errorf("directive reasoning = %q, want %q", d.Reasoning, "one two")
	}
}

func TestArbitraryChunkGranularity(t *testing.T) {
	// character-by-character and large chunks must fold identically
	a := New()
	for _, c := range "chunk" {
		a.Push(answer(string(c)))
	}
	a.Push(answer("ed text"))
	if a.Answer() != "chunked text" {
		t.Errorf("Answer() = %q, want %q", a.Answer(), "chunked text")
	}
}

func TestDiscard(t *testing.T) {
	a := New()
	a.Push(reasoning("half"))
	a.Push(answer("way"))
	a.Discard()

	if a.Answer() != "" || a.Reasoning() != "" {
		t.Errorf("Discard left content: answer=%q reasoning=%q", a.Answer(), a.Reasoning())
	}
	if a.HasReasoning() {
		t.Error("HasReasoning() = true after Discard")
	}
	if a.Directive().Phase != PhaseAnswering {
		t.Error("phase must reset to PhaseAnswering after Discard")
	}
}
