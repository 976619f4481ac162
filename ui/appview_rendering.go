package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"dtui/config"
	appmodel "dtui/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	msgs := a.dataModel.Conversation.Messages()
	if len(msgs) == 0 {
		a.viewport.SetContent("No messages yet. Start chatting!")
		return
	}

	var content strings.Builder

	streaming := a.dataModel.Conversation.InProgress()

	for i, msg := range msgs {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		var roleStyle = DimStyle
		var roleName string
		switch msg.Role {
		case "user":
			roleStyle = UserStyle
			roleName = "You"
		case "assistant":
			roleStyle = AssistantStyle
			roleName = "Assistant"
		default:
			roleStyle = DimStyle
			roleName = "System"
		}

		role := roleStyle.Render(roleName)

		// User messages with vertical bar formatting
		if msg.Role == "user" {
			content.WriteString(formatUserMessage(timestamp, role, msg.Content))
			continue
		}

		// The last message during a stream is live: show raw text with a
		// cursor, or the tool indicator / spinner while nothing has arrived.
		if streaming && i == len(msgs)-1 {
			content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, a.liveMessageBody(msg.Content)))
			continue
		}

		rendered := msg.Rendered
		if rendered == "" {
			rendered = msg.Content
		}
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, rendered))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// liveMessageBody renders the in-progress assistant message.
func (a *AppView) liveMessageBody(content string) string {
	if a.activity.Active {
		indicator := fmt.Sprintf("%s 🔧 Using %s...", a.loadingSpinner.View(), a.activity.Tool)
		if content == "" {
			return indicator
		}
		return content + "\n\n" + indicator
	}
	if content == "" {
		return a.loadingSpinner.View()
	}
	return content + "▋"
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

func (a *AppView) renderChatView() string {
	title := TitleStyle.Render("DTUI") + DimStyle.Render("  •  "+a.dataModel.Backend.BaseURL())
	separator := DimStyle.Render(strings.Repeat("─", max(a.width, 1)))

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		title,
		a.viewport.View(),
		separator,
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a *AppView) renderStatusBar() string {
	if a.statusNote != "" {
		if a.statusNoteStyle == "error" {
			return ErrorStyle.Render("✗ " + a.statusNote)
		}
		return StatusStyle.Render(a.statusNote)
	}

	var parts []string
	parts = append(parts, a.dataModel.Config.DefaultModel)

	if doc, ok := a.dataModel.Registry.Selected(); ok {
		parts = append(parts, SelectedStyle.Render("📄 "+doc.Filename))
	} else {
		parts = append(parts, "no document")
	}

	if a.dataModel.Streaming {
		if a.activity.Active {
			parts = append(parts, fmt.Sprintf("🔧 %s", a.activity.Tool))
		} else {
			parts = append(parts, "streaming... (Esc to cancel)")
		}
	} else {
		parts = append(parts, HelpStyle.Render("Ctrl+H Help"))
	}

	return StatusStyle.Render(strings.Join(parts, "  │  "))
}

func postProcessMarkdown(rendered string, width int) string {
	// Fix inline code: blue background → red text
	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")

	// Color plain URLs red (autolink disabled keeps URLs plain)
	redColor := "\x1b[31m"
	reset := "\x1b[0m"
	lines := strings.Split(rendered, "\n")
	for i, line := range lines {
		// Skip code blocks (they have ┃ prefix from rendering)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	_ = width
	return strings.Join(lines, "\n")
}

func preprocessLinks(content string) string {
	// Strip markdown link syntax [text](url) → just url, so terminal
	// emulators handle URL detection and clickability.
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func (a AppView) renderMarkdownAsync(messageIndex int, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Starting async markdown render for message %d - length: %d chars", messageIndex, len(content))
		}

		content = preprocessLinks(content)

		// Render with go-term-markdown. Autolink is disabled so plain URLs
		// stay plain text.
		defaultExt := markdown.Extensions()
		customExt := defaultExt &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := postProcessMarkdown(string(rendered), width)

		return appmodel.MarkdownRenderedMsg{
			MessageIndex: messageIndex,
			Rendered:     processed,
		}
	}
}
