package model

import "dtui/stream"

// StreamEventMsg carries one decoded event of the in-flight turn.
type StreamEventMsg struct {
	Event stream.Event
}

// StreamDoneMsg signals that the turn's stream ended cleanly.
type StreamDoneMsg struct{}

// StreamErrorMsg signals a transport or protocol failure mid-turn.
type StreamErrorMsg struct {
	Err error
}

type DocumentsListedMsg struct {
	Documents []Document
	Err       error
}

type DocumentUploadedMsg struct {
	Document Document
	Err      error
}

type DocumentDeletedMsg struct {
	ID  string
	Err error
}

type BackendHealthMsg struct {
	Err error
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}
