package model

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput rejects user messages that are empty or whitespace-only.
	ErrEmptyInput = errors.New("message is empty")

	// ErrTurnOpen rejects starting a turn while an assistant message is still
	// in progress.
	ErrTurnOpen = errors.New("a response is already in progress")
)

// failureNotice is appended to an assistant message sealed by a mid-turn
// failure, so the transcript records that the answer is incomplete.
const failureNotice = "⚠️ Sorry, something went wrong while answering. Please try again."

// Handle identifies one in-progress assistant message. Operations presented
// with a stale handle are ignored, so a late event from an abandoned turn can
// never touch a newer message.
type Handle int

// Conversation is the append-only transcript of the current session. At most
// one message, always the newest, is mutable at a time: the assistant message
// currently being streamed.
type Conversation struct {
	messages []Message
	open     int // index of the in-progress assistant message, -1 when none
	handle   Handle
}

// NewConversation returns an empty transcript.
func NewConversation() *Conversation {
	return &Conversation{open: -1}
}

// BeginUserTurn appends the user's message. The text is stored verbatim;
// only fully blank input is rejected.
func (c *Conversation) BeginUserTurn(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if c.open >= 0 {
		return ErrTurnOpen
	}
	c.messages = append(c.messages, newMessage("user", text))
	return nil
}

// BeginAssistantTurn appends an empty assistant message and returns the
// handle used to stream content into it.
func (c *Conversation) BeginAssistantTurn() (Handle, error) {
	if c.open >= 0 {
		return 0, ErrTurnOpen
	}
	c.open = len(c.messages)
	c.handle++
	c.messages = append(c.messages, newMessage("assistant", ""))
	return c.handle, nil
}

// Append adds text to the in-progress assistant message, preserving arrival
// order. Appends with a stale handle or empty text are silently dropped.
func (c *Conversation) Append(h Handle, text string) {
	if c.open < 0 || h != c.handle || text == "" {
		return
	}
	c.messages[c.open].Content += text
	c.messages[c.open].Rendered = ""
}

// Finalize seals the in-progress assistant message. Finalizing with a stale
// handle is a no-op.
func (c *Conversation) Finalize(h Handle) {
	if c.open < 0 || h != c.handle {
		return
	}
	c.open = -1
}

// Fail seals the in-progress assistant message after an error, keeping any
// content that already arrived and appending the failure notice.
func (c *Conversation) Fail(h Handle) {
	if c.open < 0 || h != c.handle {
		return
	}
	msg := &c.messages[c.open]
	if msg.Content == "" {
		msg.Content = failureNotice
	} else {
		msg.Content += "\n\n" + failureNotice
	}
	msg.Rendered = ""
	c.open = -1
}

// InProgress reports whether an assistant message is currently open.
func (c *Conversation) InProgress() bool {
	return c.open >= 0
}

// Messages returns the transcript. The slice is live: the last element
// mutates while a turn is in progress.
func (c *Conversation) Messages() []Message {
	return c.messages
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// SetRendered caches rendered markdown for the message at index i.
func (c *Conversation) SetRendered(i int, rendered string) {
	if i < 0 || i >= len(c.messages) {
		return
	}
	c.messages[i].Rendered = rendered
}

// LastAssistant returns the newest assistant message, if any.
func (c *Conversation) LastAssistant() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == "assistant" {
			return c.messages[i], true
		}
	}
	return Message{}, false
}
