package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dtui/backend"
	"dtui/config"
	"dtui/storage"
	"dtui/stream"
)

// StartTurn validates and records a user message, opens the assistant turn
// and launches the goroutine that pumps the response stream into the turn's
// event channel. The returned command awaits the first event. Credential and
// routing errors surface before anything is appended to the conversation.
func (m *Model) StartTurn(text string) (tea.Cmd, error) {
	if m.Streaming {
		return nil, ErrTurnOpen
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	req, err := backend.Build(text, m.Registry.SelectedID(), m.Config.DefaultModel, m.Config.DefaultSystemPrompt, m.BuildCredentials())
	if err != nil {
		return nil, err
	}

	if err := m.Conversation.BeginUserTurn(text); err != nil {
		return nil, err
	}
	handle, err := m.Conversation.BeginAssistantTurn()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan turnItem, 64)
	m.turn = &turn{handle: handle, cancel: cancel, events: events}
	m.Streaming = true
	m.Tracker.Reset()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] starting turn: endpoint=%s model=%s", req.Endpoint, m.Config.DefaultModel)
	}

	go func() {
		defer close(events)

		src, err := m.Backend.Stream(ctx, req)
		if err != nil {
			events <- turnItem{err: err}
			return
		}

		err = stream.Decode(ctx, src, func(ev stream.Event) error {
			select {
			case events <- turnItem{event: ev}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			events <- turnItem{err: err}
			return
		}
		events <- turnItem{done: true}
	}()

	return m.AwaitEvent(), nil
}

// AwaitEvent returns a command that blocks until the next item of the
// in-flight turn arrives. The update loop re-issues it after handling each
// StreamEventMsg, so events are applied strictly in stream order.
func (m *Model) AwaitEvent() tea.Cmd {
	t := m.turn
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		item, ok := <-t.events
		if !ok {
			return StreamDoneMsg{}
		}
		if item.err != nil {
			return StreamErrorMsg{Err: item.err}
		}
		if item.done {
			return StreamDoneMsg{}
		}
		return StreamEventMsg{Event: item.event}
	}
}

// ApplyEvent folds one stream event into the conversation and the tool
// activity tracker, returning the activity to display.
func (m *Model) ApplyEvent(ev stream.Event) stream.Activity {
	if m.turn == nil {
		return m.Tracker.State()
	}
	if ev.Type == stream.EventContent {
		m.Conversation.Append(m.turn.handle, ev.Text)
	}
	return m.Tracker.Apply(ev)
}

// FinishTurn seals the in-progress assistant message after a clean stream end.
func (m *Model) FinishTurn() {
	if m.turn == nil {
		return
	}
	m.Conversation.Finalize(m.turn.handle)
	m.endTurn()
}

// FailTurn seals the in-progress assistant message after a mid-turn failure,
// keeping whatever content already arrived and appending the failure notice.
func (m *Model) FailTurn(err error) {
	if m.turn == nil {
		return
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] turn failed: %v", err)
	}
	m.Conversation.Fail(m.turn.handle)
	m.endTurn()
}

// CancelTurn aborts the in-flight request. The pump goroutine observes the
// cancellation and reports it through the event channel, so the turn is
// sealed by the resulting StreamErrorMsg rather than here.
func (m *Model) CancelTurn() {
	if m.turn != nil {
		m.turn.cancel()
	}
}

func (m *Model) endTurn() {
	m.Tracker.Reset()
	m.turn.cancel()
	m.turn = nil
	m.Streaming = false
}

// FetchDocuments asks the backend for its document list.
func (m *Model) FetchDocuments() tea.Cmd {
	client := m.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		records, err := client.ListDocuments(ctx)
		if err != nil {
			return DocumentsListedMsg{Err: err}
		}
		docs := make([]Document, 0, len(records))
		for _, r := range records {
			docs = append(docs, Document{ID: r.PDFID, Filename: r.Filename, ChunkCount: r.ChunksCount})
		}
		return DocumentsListedMsg{Documents: docs}
	}
}

// UploadDocument sends a local PDF to the backend for indexing.
func (m *Model) UploadDocument(path string) tea.Cmd {
	client := m.Backend
	apiKey := m.Credentials.Get(config.CredentialOpenAI)
	return func() tea.Msg {
		if apiKey == "" {
			return DocumentUploadedMsg{Err: backend.ErrMissingAPIKey}
		}

		// Chunking a large PDF server-side can take a while.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		result, err := client.Upload(ctx, path, apiKey)
		if err != nil {
			return DocumentUploadedMsg{Err: err}
		}
		// The upload ack carries no chunk count; a follow-up list fills it in.
		return DocumentUploadedMsg{Document: Document{ID: result.PDFID, Filename: result.Filename}}
	}
}

// DeleteDocument removes a document from the backend index.
func (m *Model) DeleteDocument(id string) tea.Cmd {
	client := m.Backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := client.DeleteDocument(ctx, id); err != nil {
			return DocumentDeletedMsg{ID: id, Err: err}
		}
		return DocumentDeletedMsg{ID: id}
	}
}

// CheckBackendHealth pings the backend's health endpoint.
func (m *Model) CheckBackendHealth() tea.Cmd {
	client := m.Backend
	return func() tea.Msg {
		return BackendHealthMsg{Err: client.Health(context.Background())}
	}
}

// ReconcileDocuments replaces the registry with the backend's document list
// and rewrites the local cache to match.
func (m *Model) ReconcileDocuments(docs []Document) {
	m.Registry.Reset(docs)
	m.syncCache()
}

// AddDocument records a freshly uploaded document.
func (m *Model) AddDocument(doc Document) error {
	if err := m.Registry.Add(doc); err != nil {
		return err
	}
	m.syncCache()
	return nil
}

// RemoveDocument drops a deleted document from the registry and cache.
func (m *Model) RemoveDocument(id string) {
	m.Registry.Remove(id)
	if m.Cache != nil {
		if err := m.Cache.Delete(id); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Model] cache delete failed: %v", err)
		}
	}
}

func (m *Model) syncCache() {
	if m.Cache == nil {
		return
	}

	known := make(map[string]bool)
	for _, doc := range m.Registry.List() {
		known[doc.ID] = true
		err := m.Cache.Put(storage.CachedDocument{ID: doc.ID, Filename: doc.Filename, ChunkCount: doc.ChunkCount})
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Model] cache write failed: %v", err)
		}
	}

	cached, err := m.Cache.All()
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] cache read failed: %v", err)
		}
		return
	}
	for _, doc := range cached {
		if !known[doc.ID] {
			if err := m.Cache.Delete(doc.ID); err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[Model] cache delete failed: %v", err)
			}
		}
	}
}
