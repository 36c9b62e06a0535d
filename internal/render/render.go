// Package render draws markdown for the terminal using cached glamour
// renderers.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 100

var (
	mu        sync.Mutex
	renderers = map[int]*glamour.TermRenderer{}
)

// forWidth returns a cached renderer wrapping at width. Building a
// glamour renderer is expensive and the answer is re-rendered on every
// refresh, so renderers are reused until an unseen width shows up
// (terminal resize).
func forWidth(width int) (*glamour.TermRenderer, error) {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}

// Markdown renders content word-wrapped at width. The content may still
// be growing; callers re-render the whole text on every refresh. Falls
// back to the raw text when rendering fails.
func Markdown(content string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	r, err := forWidth(width)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
