// Package render formats assistant Markdown for terminal display.
package render

import (
	"github.com/charmbracelet/glamour"
)

const DefaultWidth = 80

// Markdown renders content with the named glamour style ("dark", "light",
// "notty", ...). A non-positive width uses DefaultWidth.
func Markdown(content, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}
