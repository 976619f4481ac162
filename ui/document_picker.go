package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"dtui/config"
	appmodel "dtui/model"
)

// docSource adapts the document list for fuzzy matching on filenames.
type docSource []appmodel.Document

func (d docSource) String(i int) string { return d[i].Filename }
func (d docSource) Len() int            { return len(d) }

func (a *AppView) applyDocFilter() {
	docs := a.dataModel.Registry.List()
	pattern := a.docFilterInput.Value()
	if pattern == "" {
		a.filteredDocs = docs
		return
	}

	matches := fuzzy.FindFrom(pattern, docSource(docs))
	filtered := make([]appmodel.Document, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, docs[m.Index])
	}
	a.filteredDocs = filtered
}

func (a *AppView) visibleDocs() []appmodel.Document {
	return a.filteredDocs
}

func (a AppView) handleDocumentPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	docs := a.visibleDocs()

	// Delete confirmation takes over the picker's keys
	if a.confirmDeleteDoc != nil {
		switch msg.String() {
		case "y", "Y":
			doc := *a.confirmDeleteDoc
			a.confirmDeleteDoc = nil
			return a, a.dataModel.DeleteDocument(doc.ID)
		default:
			a.confirmDeleteDoc = nil
			return a, nil
		}
	}

	if a.docFilterMode {
		switch msg.String() {
		case "esc":
			a.docFilterMode = false
			a.docFilterInput.Reset()
			a.applyDocFilter()
			a.selectedDocIdx = 0
			return a, nil
		case "enter":
			a.docFilterMode = false
			return a, nil
		case "alt+j", "down":
			if a.selectedDocIdx < len(docs)-1 {
				a.selectedDocIdx++
			}
			return a, nil
		case "alt+k", "up":
			if a.selectedDocIdx > 0 {
				a.selectedDocIdx--
			}
			return a, nil
		}
		a.docFilterInput, cmd = a.docFilterInput.Update(msg)
		a.applyDocFilter()
		if a.selectedDocIdx >= len(a.visibleDocs()) {
			a.selectedDocIdx = 0
		}
		return a, cmd
	}

	switch msg.String() {
	case "esc", "ctrl+d", "q":
		a.showDocumentPicker = false
		return a, nil

	case "j", "down":
		if a.selectedDocIdx < len(docs)-1 {
			a.selectedDocIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedDocIdx > 0 {
			a.selectedDocIdx--
		}
		return a, nil

	case "/":
		a.docFilterMode = true
		a.docFilterInput.Focus()
		return a, nil

	case "enter":
		if a.selectedDocIdx < len(docs) {
			doc := docs[a.selectedDocIdx]
			if err := a.dataModel.Registry.Select(doc.ID); err != nil {
				a.setError(fmt.Sprintf("Select failed: %v", err))
			} else {
				a.setNote(fmt.Sprintf("Chatting with %s", doc.Filename))
			}
			a.showDocumentPicker = false
		}
		return a, nil

	case "c":
		a.dataModel.Registry.ClearSelection()
		a.setNote("Selection cleared - back to plain chat")
		a.showDocumentPicker = false
		return a, nil

	case "d":
		if a.selectedDocIdx < len(docs) {
			doc := docs[a.selectedDocIdx]
			a.confirmDeleteDoc = &doc
		}
		return a, nil

	case "r":
		a.docsLoading = true
		return a, tea.Batch(a.dataModel.FetchDocuments(), a.loadingSpinner.Tick)

	case "u":
		a.showDocumentPicker = false
		a.showUploadModal = true
		a.uploadInput.Focus()
		return a, nil
	}

	return a, nil
}

func (a AppView) handleUploadModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc":
		if !a.uploading {
			a.showUploadModal = false
			a.uploadInput.Reset()
		}
		return a, nil

	case "enter":
		if a.uploading {
			return a, nil
		}
		path := strings.TrimSpace(a.uploadInput.Value())
		if path == "" {
			a.setError("Enter a path to a PDF file")
			return a, nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
			a.setError("Only PDF files can be uploaded")
			return a, nil
		}
		a.clearNote()
		a.uploading = true
		return a, tea.Batch(
			a.dataModel.UploadDocument(config.ExpandPath(path)),
			a.loadingSpinner.Tick,
		)
	}

	a.uploadInput, cmd = a.uploadInput.Update(msg)
	return a, cmd
}

func (a *AppView) renderDocumentPicker() string {
	modalWidth := a.width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := a.height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Documents")

	docs := a.visibleDocs()
	total := a.dataModel.Registry.Len()

	var header string
	switch {
	case a.docFilterMode:
		header = a.docFilterInput.View()
	case a.docsLoading:
		header = fmt.Sprintf("%s Refreshing...", a.loadingSpinner.View())
	case len(docs) == total:
		header = fmt.Sprintf("%d documents", total)
	default:
		header = fmt.Sprintf("%d of %d documents", len(docs), total)
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	var docLines []string
	maxLines := modalHeight - 8

	if len(docs) == 0 {
		emptyMsg := "No documents uploaded yet. Press u to upload a PDF."
		if a.docFilterMode {
			emptyMsg = "No matches found"
		}
		docLines = append(docLines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	} else {
		startIdx := 0
		endIdx := len(docs)

		// Scroll if needed
		if len(docs) > maxLines {
			if a.selectedDocIdx < maxLines/2 {
				endIdx = maxLines
			} else if a.selectedDocIdx >= len(docs)-maxLines/2 {
				startIdx = len(docs) - maxLines
			} else {
				startIdx = a.selectedDocIdx - maxLines/2
				endIdx = startIdx + maxLines
			}
		}

		selectedID := a.dataModel.Registry.SelectedID()

		for i := startIdx; i < endIdx && i < len(docs); i++ {
			doc := docs[i]

			indicator := "  "
			if i == a.selectedDocIdx {
				indicator = "▶ "
			}

			currentMarker := ""
			if doc.ID == selectedID {
				currentMarker = " (selected)"
			}

			chunks := fmt.Sprintf("%d chunks", doc.ChunkCount)

			maxNameWidth := modalWidth - 20
			name := runewidth.Truncate(doc.Filename, maxNameWidth-len(currentMarker), "...")

			spacing := modalWidth - len(indicator) - runewidth.StringWidth(name) - len(currentMarker) - len(chunks) - 4
			if spacing < 1 {
				spacing = 1
			}

			line := fmt.Sprintf("%s%s%s%s%s", indicator, name, currentMarker, strings.Repeat(" ", spacing), chunks)

			lineStyle := lipgloss.NewStyle()
			if i == a.selectedDocIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			} else if doc.ID == selectedID {
				lineStyle = lineStyle.Foreground(accentColor).Bold(true)
			}

			docLines = append(docLines, lipgloss.NewStyle().
				Width(modalWidth).
				Render(lineStyle.Render(line)))
		}
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	docLines = append([]string{emptyLine}, docLines...)
	docLines = append(docLines, emptyLine)

	var footerText string
	switch {
	case a.confirmDeleteDoc != nil:
		footerText = ErrorStyle.Render(fmt.Sprintf("Delete %s from the backend? [y/N]", a.confirmDeleteDoc.Filename))
	case a.docFilterMode:
		footerText = FormatFooter("Type", "to filter", "Alt+J/K", "Navigate", "Enter", "Select", "Esc", "Cancel")
	default:
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Select", "c", "Clear", "d", "Delete", "u", "Upload", "r", "Refresh", "/", "Filter", "Esc", "Close")
	}

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := []string{titleSection, headerSection}
	sections = append(sections, docLines...)
	sections = append(sections, footerSection)

	content := strings.Join(sections, "\n")

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (a *AppView) renderUploadModal() string {
	modalWidth := a.width - 10
	if modalWidth > 70 {
		modalWidth = 70
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Upload PDF")

	var body string
	if a.uploading {
		body = fmt.Sprintf("%s Uploading and indexing... this can take a moment", a.loadingSpinner.View())
	} else {
		body = a.uploadInput.View()
	}

	bodySection := lipgloss.NewStyle().
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		Render(body)

	footerText := FormatFooter("Enter", "Upload", "Esc", "Cancel")
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(footerText)

	content := strings.Join([]string{titleSection, bodySection, footerSection}, "\n")

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
