package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface renders segments of a bar onto one background color. lipgloss
// resets the background after every styled segment, so every space between
// words has to carry the color too.
type surface struct {
	bg    lipgloss.Color
	blank string
}

func newSurface(color string) surface {
	bg := lipgloss.Color(color)
	return surface{bg: bg, blank: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// text renders s with style on the surface background.
func (s surface) text(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(s.bg)
	if !strings.Contains(text, " ") {
		return style.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, s.blank)
}

func (s surface) space() string {
	return s.blank
}

func (s surface) spaces(n int) string {
	return lipgloss.NewStyle().Background(s.bg).Render(strings.Repeat(" ", n))
}

func (s surface) sep(sep string) string {
	return lipgloss.NewStyle().Background(s.bg).Render(sep)
}

func (s surface) join(parts []string, sep string) string {
	return strings.Join(parts, s.sep(sep))
}
