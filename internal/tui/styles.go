package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alnah/go-mdsync/internal/render"
)

type palette struct {
	accent, heading, code, quote, faint, warn lipgloss.Color
}

var (
	lightPalette = palette{accent: "25", heading: "25", code: "238", quote: "102", faint: "245", warn: "160"}
	darkPalette  = palette{accent: "117", heading: "117", code: "252", quote: "109", faint: "242", warn: "203"}
)

type styles struct {
	title    lipgloss.Style
	paneOn   lipgloss.Style
	paneOff  lipgloss.Style
	gutter   lipgloss.Style
	sep      lipgloss.Style
	status   lipgloss.Style
	warn     lipgloss.Style
	heading  lipgloss.Style
	code     lipgloss.Style
	quote    lipgloss.Style
	rule     lipgloss.Style
	footnote lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		paneOn:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		paneOff:  lipgloss.NewStyle().Foreground(p.faint),
		gutter:   lipgloss.NewStyle().Foreground(p.faint),
		sep:      lipgloss.NewStyle().Foreground(p.faint),
		status:   lipgloss.NewStyle().Foreground(p.faint),
		warn:     lipgloss.NewStyle().Foreground(p.warn),
		heading:  lipgloss.NewStyle().Bold(true).Foreground(p.heading),
		code:     lipgloss.NewStyle().Foreground(p.code),
		quote:    lipgloss.NewStyle().Italic(true).Foreground(p.quote),
		rule:     lipgloss.NewStyle().Foreground(p.faint),
		footnote: lipgloss.NewStyle().Foreground(p.faint),
	}
}

// block styles one preview line by the kind of block it belongs to.
func (s styles) block(kind render.BlockKind) lipgloss.Style {
	switch kind {
	case render.BlockHeading:
		return s.heading
	case render.BlockCode, render.BlockHTML:
		return s.code
	case render.BlockQuote:
		return s.quote
	case render.BlockRule:
		return s.rule
	case render.BlockFootnotes:
		return s.footnote
	default:
		return lipgloss.NewStyle()
	}
}
