// Package console prints the correlation report to a terminal.
package console

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/sleeplab/internal/domain/correlation"
)

var (
	colorGreen = lipgloss.Color("#00AA00")
	colorRed   = lipgloss.Color("#DD0000")
	colorGray  = lipgloss.Color("#666666")
	colorCyan  = lipgloss.Color("#00AAAA")
)

// Styles used by the report. Renderers without colour support print
// them as plain text.
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	PositiveStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	NegligibleStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

func styleFor(s correlation.Sign) lipgloss.Style {
	switch s {
	case correlation.Positive:
		return PositiveStyle
	case correlation.Negative:
		return NegativeStyle
	default:
		return NegligibleStyle
	}
}

// WriteReport prints the same lines as the text report, coloured by sign.
func WriteReport(w io.Writer, results []correlation.Result) error {
	r := lipgloss.NewRenderer(w)
	var b strings.Builder
	for _, res := range results {
		b.WriteString(HeaderStyle.Renderer(r).Render("=== Effect of " + res.Reference + " ==="))
		b.WriteString("\n")
		for _, e := range res.Entries {
			b.WriteString(styleFor(e.Sign).Renderer(r).Render(correlation.FormatR(e) + " : " + e.Column))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
