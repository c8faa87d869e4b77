package picker

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/runger/beacon/internal/result"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderRow renders one result line: marker, kind badge, name, and a
// dimmed description, truncated to the terminal width.
func renderRow(res result.Result, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	badge := "[" + res.Kind.String() + "]"

	name := res.Name
	desc := res.Description

	if width > 0 {
		avail := width - runewidth.StringWidth(marker) - runewidth.StringWidth(badge) - 1
		if avail < 1 {
			avail = 1
		}
		name = runewidth.Truncate(name, avail, "…")
		remaining := avail - runewidth.StringWidth(name) - 2
		if desc != "" && remaining > 1 {
			desc = runewidth.Truncate(desc, remaining, "…")
		} else {
			desc = ""
		}
	}

	style := normalStyle
	if selected {
		style = selectedStyle
	}

	line := marker + badgeStyle.Render(badge) + " " + style.Render(name)
	if desc != "" {
		line += "  " + descStyle.Render(desc)
	}
	return line
}
