package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/inkdex/inkdex/internal/domain"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summary boxes with rounded border
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)
)

// formatFileSummary renders the per-file result box for the process command.
func formatFileSummary(w io.Writer, file string, note domain.Note, analysis domain.Analysis) {
	var costStr string
	if note.Cost > 0 {
		costStr = fmt.Sprintf("$%.4f", note.Cost)
	} else {
		costStr = dimStyle.Render("free")
	}

	line1 := fmt.Sprintf("%s %d  %s %d  %s %s  %s %s",
		dimStyle.Render("Pages:"), note.PageCount,
		dimStyle.Render("Elements:"), len(note.Elements),
		dimStyle.Render("Provider:"), note.Provider,
		dimStyle.Render("Cost:"), costStr,
	)

	var line2 string
	if len(analysis.Structures) > 0 {
		top := analysis.Structures[0]
		line2 = fmt.Sprintf("%s %s (score %.2f)  %s %d  %s %d",
			dimStyle.Render("Best:"), successStyle.Render(string(top.Type)), top.Score(),
			dimStyle.Render("Concepts:"), len(analysis.Concepts),
			dimStyle.Render("Relationships:"), len(analysis.Relationships),
		)
	} else {
		line2 = errorStyle.Render("no structures generated")
	}

	content := titleStyle.Render(file) + "\n" + line1 + "\n" + line2
	fmt.Fprintln(w, boxStyle.Render(content))
}

// formatError renders a per-file failure line.
func formatError(w io.Writer, file string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", errorStyle.Render("FAIL"), file, err)
}
