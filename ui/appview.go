package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dtui/config"
	appmodel "dtui/model"
	"dtui/stream"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Streaming UI state
	loadingSpinner spinner.Model
	activity       stream.Activity

	// Transient status line note (errors, confirmations)
	statusNote      string
	statusNoteStyle string // "error" or ""

	// Document picker
	showDocumentPicker bool
	selectedDocIdx     int
	docFilterMode      bool
	docFilterInput     textinput.Model
	filteredDocs       []appmodel.Document
	docsLoading        bool
	confirmDeleteDoc   *appmodel.Document

	// Upload modal
	showUploadModal bool
	uploadInput     textinput.Model
	uploading       bool

	// Help modal
	showHelp bool
}

func NewAppView(dataModel *appmodel.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone submits
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	docFilterInput := textinput.New()
	docFilterInput.Prompt = "Filter: "
	docFilterInput.CharLimit = 64

	uploadInput := textinput.New()
	uploadInput.Prompt = "Path: "
	uploadInput.Placeholder = "~/Documents/report.pdf"
	uploadInput.CharLimit = 512

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		viewport:       vp,
		loadingSpinner: sp,
		docFilterInput: docFilterInput,
		uploadInput:    uploadInput,
	}
}

func (a AppView) Init() tea.Cmd {
	// Refresh the document list in the background so the cached registry is
	// reconciled with the backend's view on startup.
	return tea.Batch(
		textarea.Blink,
		a.dataModel.FetchDocuments(),
		a.dataModel.CheckBackendHealth(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading DTUI..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (always on top - can peek while in other modals)
	// 2. Upload modal
	// 3. Document picker

	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}

	if a.showUploadModal {
		return a.renderUploadModal()
	}

	if a.showDocumentPicker {
		return a.renderDocumentPicker()
	}

	return a.renderChatView()
}

func (a *AppView) setError(msg string) {
	a.statusNote = msg
	a.statusNoteStyle = "error"
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] error note: %s", msg)
	}
}

func (a *AppView) setNote(msg string) {
	a.statusNote = msg
	a.statusNoteStyle = ""
}

func (a *AppView) clearNote() {
	a.statusNote = ""
	a.statusNoteStyle = ""
}
