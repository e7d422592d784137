package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dop251/goja/file"
	"github.com/muesli/termenv"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorSuccess = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")
)

// styles renders CLI diagnostics. Colors follow the output stream's
// capabilities and are dropped entirely when color is disabled.
type styles struct {
	label   lipgloss.Style
	fatal   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		label:   r.NewStyle().Bold(true).Foreground(colorError),
		fatal:   r.NewStyle().Bold(true).Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
	}
}

// where renders a source position suffix, or "" when unknown.
func (s styles) where(pos file.Position) string {
	if pos.Line == 0 {
		return ""
	}
	return " " + s.muted.Render("at "+pos.String())
}
