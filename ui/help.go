package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("DTUI - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat"),
		"• Enter         Send message",
		"• Alt+Enter     Insert newline",
		"• Esc           Cancel response",
		"• Ctrl+Y        Copy last response",
	)

	documentActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Documents"),
		"• Ctrl+D        Document picker",
		"• Ctrl+U        Upload a PDF",
	)

	pickerActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## In the picker"),
		"• j/k           Navigate",
		"• Enter         Chat with document",
		"• c             Back to plain chat",
		"• d             Delete from backend",
		"• /             Fuzzy filter",
	)

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global"),
		"• Ctrl+H        Toggle this help",
		"• Ctrl+C        Quit",
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		chatActions,
		"",
		documentActions,
	)

	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		pickerActions,
		"",
		globalActions,
	)

	columnStyle := lipgloss.NewStyle().Width(40).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render("Press Ctrl+H or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(92)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
