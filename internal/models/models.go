// Package models holds the selectable OpenRouter model catalog and the
// active-model selection.
package models

import (
	"errors"
	"strings"
)

// DefaultModel is used when no default is configured.
const DefaultModel = "deepseek/deepseek-r1:free"

// ErrOutOfRange reports a selection index outside the catalog.
var ErrOutOfRange = errors.New("model index out of range")

// Catalog returns the built-in ordered list of popular OpenRouter models.
func Catalog() []string {
	return []string{
		"anthropic/claude-3.5-sonnet",
		"anthropic/claude-3-haiku",
		"openai/gpt-4o",
		"openai/gpt-4o-mini",
		"openai/o1-preview",
		"openai/o1-mini",
		"openai/gpt-3.5-turbo",
		"meta-llama/llama-3.1-8b-instruct:free",
		"microsoft/wizardlm-2-8x22b",
		"google/gemini-pro-1.5",
		"mistralai/mistral-7b-instruct:free",
		"deepseek/deepseek-r1:free",
		"google/gemma-3n-e4b-it:free",
	}
}

// ShortName strips the vendor prefix: "openai/gpt-4o" -> "gpt-4o".
func ShortName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

// Selector tracks the active model over a fixed catalog. The active model
// may start outside the catalog (an arbitrary configured default); values
// applied through Select always come from the catalog.
type Selector struct {
	active  string
	catalog []string
}

// NewSelector builds a selector with the given active model and catalog,
// falling back to DefaultModel and Catalog when they are empty.
func NewSelector(active string, catalog []string) *Selector {
	if active == "" {
		active = DefaultModel
	}
	if len(catalog) == 0 {
		catalog = Catalog()
	}
	return &Selector{active: active, catalog: catalog}
}

// List returns the catalog in its fixed startup order.
func (s *Selector) List() []string {
	out := make([]string, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Current returns the active model identifier.
func (s *Selector) Current() string { return s.active }

// Select activates the catalog entry at the 1-based index and returns the
// previous and new identifiers. The active model is left unchanged when
// the index is out of range.
func (s *Selector) Select(index int) (prev, cur string, err error) {
	if index < 1 || index > len(s.catalog) {
		return "", "", ErrOutOfRange
	}
	prev = s.active
	s.active = s.catalog[index-1]
	return prev, s.active, nil
}
