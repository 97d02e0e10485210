package tui

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into styled terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer builds a glamour-backed renderer that adapts to the
// terminal background. If the renderer cannot be constructed the raw
// markdown is passed through unchanged.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
