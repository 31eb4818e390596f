// Package cli holds the styled terminal output shared by the tidyd commands.
// Styling goes through lipgloss so it degrades cleanly on dumb terminals.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(successStyle.Render("✓ " + message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(errorStyle.Render("✗ " + message))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(warningStyle.Render("! " + message))
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Println(infoStyle.Render("ℹ " + message))
}

// PrintHeader prints a section header
func PrintHeader(message string) {
	fmt.Println(headerStyle.Render(message))
	fmt.Println(dimStyle.Render(strings.Repeat("─", lipgloss.Width(message))))
}

// Dim renders secondary detail text.
func Dim(text string) string {
	return dimStyle.Render(text)
}

// Highlight renders emphasized inline text.
func Highlight(text string) string {
	return headerStyle.Render(text)
}
