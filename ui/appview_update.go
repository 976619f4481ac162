package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"dtui/backend"
	"dtui/config"
	appmodel "dtui/model"
	"dtui/stream"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Streaming || a.uploading || a.docsLoading {
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		if a.dataModel.Streaming {
			a.updateViewportContent(true)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1), separator (1), textarea (3), status bar (1)
		a.viewport.Width = a.width
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg, cmds)

	case appmodel.StreamEventMsg:
		a.activity = a.dataModel.ApplyEvent(msg.Event)
		a.updateViewportContent(true)
		cmds = append(cmds, a.dataModel.AwaitEvent())
		if a.activity.Active {
			cmds = append(cmds, a.loadingSpinner.Tick)
		}
		return a, tea.Batch(cmds...)

	case appmodel.StreamDoneMsg:
		messageIndex := a.dataModel.Conversation.Len() - 1
		a.dataModel.FinishTurn()
		a.activity = stream.Activity{}
		a.updateViewportContent(true)

		if last, ok := a.dataModel.Conversation.LastAssistant(); ok && last.Content != "" {
			return a, a.renderMarkdownAsync(messageIndex, last.Content)
		}
		return a, nil

	case appmodel.StreamErrorMsg:
		a.dataModel.FailTurn(msg.Err)
		a.activity = stream.Activity{}
		if errors.Is(msg.Err, context.Canceled) {
			a.setNote("Response cancelled")
		} else {
			a.setError(msg.Err.Error())
		}
		a.updateViewportContent(true)
		return a, nil

	case appmodel.MarkdownRenderedMsg:
		a.dataModel.Conversation.SetRendered(msg.MessageIndex, msg.Rendered)
		a.updateViewportContent(true)
		return a, nil

	case appmodel.DocumentsListedMsg:
		a.docsLoading = false
		if msg.Err != nil {
			a.setError(fmt.Sprintf("Listing documents failed: %v", msg.Err))
			return a, nil
		}
		a.dataModel.ReconcileDocuments(msg.Documents)
		a.applyDocFilter()
		return a, nil

	case appmodel.DocumentUploadedMsg:
		a.uploading = false
		if msg.Err != nil {
			a.setError(fmt.Sprintf("Upload failed: %v", msg.Err))
			return a, nil
		}
		if err := a.dataModel.AddDocument(msg.Document); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[UI] uploaded document already registered: %v", err)
		}
		// Select the fresh upload so the next message is grounded on it.
		if err := a.dataModel.Registry.Select(msg.Document.ID); err == nil {
			a.setNote(fmt.Sprintf("Uploaded and selected %s", msg.Document.Filename))
		}
		a.showUploadModal = false
		a.uploadInput.Reset()
		// Refresh to pick up the chunk count the upload ack doesn't carry.
		return a, a.dataModel.FetchDocuments()

	case appmodel.DocumentDeletedMsg:
		if msg.Err != nil {
			a.setError(fmt.Sprintf("Delete failed: %v", msg.Err))
			return a, nil
		}
		a.dataModel.RemoveDocument(msg.ID)
		a.applyDocFilter()
		if a.selectedDocIdx >= len(a.visibleDocs()) && a.selectedDocIdx > 0 {
			a.selectedDocIdx--
		}
		return a, nil

	case appmodel.BackendHealthMsg:
		if msg.Err != nil {
			a.setError(fmt.Sprintf("Backend unreachable: %v", msg.Err))
		}
		return a, nil
	}

	// Forward everything else to the focused components
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	// Always-global shortcuts
	switch msg.String() {
	case "ctrl+c":
		a.dataModel.CancelTurn()
		return a, tea.Quit

	case "ctrl+h":
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showUploadModal {
		return a.handleUploadModalKey(msg)
	}

	if a.showDocumentPicker {
		return a.handleDocumentPickerKey(msg)
	}

	return a.handleChatKey(msg, cmds)
}

func (a AppView) handleChatKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "enter":
		text := a.textarea.Value()
		startCmd, err := a.dataModel.StartTurn(text)
		if err != nil {
			a.setError(submitErrorText(err))
			return a, nil
		}
		a.clearNote()
		a.textarea.Reset()
		a.activity = stream.Activity{}
		a.updateViewportContent(true)
		return a, tea.Batch(startCmd, a.loadingSpinner.Tick)

	case "esc":
		if a.dataModel.Streaming {
			a.dataModel.CancelTurn()
			return a, nil
		}
		a.clearNote()
		return a, nil

	case "ctrl+d":
		a.showDocumentPicker = true
		a.docFilterMode = false
		a.docFilterInput.Reset()
		a.selectedDocIdx = 0
		a.docsLoading = true
		a.applyDocFilter()
		return a, tea.Batch(a.dataModel.FetchDocuments(), a.loadingSpinner.Tick)

	case "ctrl+u":
		a.showUploadModal = true
		a.uploadInput.Focus()
		return a, nil

	case "ctrl+y":
		if last, ok := a.dataModel.Conversation.LastAssistant(); ok {
			if err := clipboard.WriteAll(last.Content); err != nil {
				a.setError(fmt.Sprintf("Copy failed: %v", err))
			} else {
				a.setNote("Copied last answer to clipboard")
			}
		}
		return a, nil
	}

	// Let the textarea and viewport consume everything else
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// submitErrorText maps submission errors to actionable status line text.
func submitErrorText(err error) string {
	switch {
	case errors.Is(err, appmodel.ErrEmptyInput):
		return "Type a message first"
	case errors.Is(err, appmodel.ErrTurnOpen):
		return "Wait for the current response (Esc to cancel it)"
	case errors.Is(err, backend.ErrMissingAPIKey):
		return "No OpenAI API key configured - set OPENAI_API_KEY or edit credentials.toml"
	case errors.Is(err, backend.ErrMissingSearchKey):
		return "Document chat needs a Tavily API key - set TAVILY_API_KEY or edit credentials.toml"
	default:
		return err.Error()
	}
}
