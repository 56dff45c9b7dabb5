package cli

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/tsawler/clauseview/render"
)

// Terminal palette.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleGray  = lipgloss.NewStyle().Foreground(colorGray)
	styleError = lipgloss.NewStyle().Foreground(colorRed)
)

// termColor converts a highlight color to a lipgloss hex color.
func termColor(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// swatch renders a colored block for legends and summaries.
func swatch(c color.NRGBA) string {
	return lipgloss.NewStyle().Foreground(termColor(c)).Render("██")
}

// phaseStyle colors a controller phase for the status line.
func phaseStyle(p render.Phase) lipgloss.Style {
	switch p {
	case render.Ready:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case render.Loading, render.Rasterizing:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case render.Failed:
		return lipgloss.NewStyle().Foreground(colorRed)
	default:
		return styleDim
	}
}
