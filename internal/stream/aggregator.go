// Package stream folds interleaved reasoning and answer deltas into a
// monotonically growing display state.
package stream

import (
	"strings"

	"github.com/termchat/termchat/internal/provider"
)

// Phase is a rendering hint: which channel the latest fragment belonged
// to. It starts at PhaseAnswering and flips as fragments arrive.
type Phase int

const (
	PhaseAnswering Phase = iota
	PhaseReasoning
)

// Directive tells the renderer what to paint after a fragment arrives.
// While Phase is PhaseReasoning only the reasoning accumulator is shown;
// afterwards the growing answer is shown, preceded by the (now frozen)
// reasoning block when one exists.
type Directive struct {
	Reasoning string
	Answer    string
	Phase     Phase
}

// Aggregator accumulates one turn's fragments into two text channels.
// Fragments for a channel arrive in that channel's logical order; no
// ordering is assumed between channels. One Aggregator serves exactly
// one turn.
type Aggregator struct {
	reasoning strings.Builder
	answer    strings.Builder
	phase     Phase
}

func New() *Aggregator { return &Aggregator{} }

// Push appends the fragment to its accumulator and returns the directive
// for the refreshed display.
func (a *Aggregator) Push(f provider.Fragment) Directive {
	switch f.Kind {
	case provider.KindReasoning:
		a.reasoning.WriteString(f.Text)
		a.phase = PhaseReasoning
	default:
		a.answer.WriteString(f.Text)
		a.phase = PhaseAnswering
	}
	return a.Directive()
}

// Directive returns the current display state without mutating it.
func (a *Aggregator) Directive() Directive {
	return Directive{
		Reasoning: a.reasoning.String(),
		Answer:    a.answer.String(),
		Phase:     a.phase,
	}
}

func (a *Aggregator) Reasoning() string { return a.reasoning.String() }

// Answer returns the accumulated answer text, the only part of a turn
// that outlives it. Reasoning text is display-only and discarded when
// the turn ends.
func (a *Aggregator) Answer() string { return a.answer.String() }

func (a *Aggregator) HasReasoning() bool { return a.reasoning.Len() > 0 }

// Discard drops both accumulators so nothing half-streamed leaks into
// the next display. Used when a turn is interrupted or fails.
func (a *Aggregator) Discard() {
	a.reasoning.Reset()
	a.answer.Reset()
	a.phase = PhaseAnswering
}
