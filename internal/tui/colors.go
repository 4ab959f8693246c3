package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette used across vaultsync output
var (
	colorAccent = lipgloss.Color("205")
	colorOK     = lipgloss.Color("42")
	colorWarn   = lipgloss.Color("214")
	colorErr    = lipgloss.Color("196")
	colorInfo   = lipgloss.Color("39")
	colorDim    = lipgloss.Color("240")
)

// InitColors picks the lipgloss color profile. Color is dropped when stdout
// is not a terminal, when NO_COLOR is set, or when noColor is true.
func InitColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
}

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().Foreground(colorErr).Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().Foreground(colorWarn).Render(text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return lipgloss.NewStyle().Foreground(colorOK).Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().Foreground(colorInfo).Render(text)
}

// ColorDim renders text in a muted grey
func ColorDim(text string) string {
	return lipgloss.NewStyle().Foreground(colorDim).Render(text)
}

// Bold renders text in bold
func Bold(text string) string {
	return lipgloss.NewStyle().Bold(true).Render(text)
}
