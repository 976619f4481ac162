package model

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a chat message in the transcript
type Message struct {
	ID        string
	Role      string // "user", "assistant" or "system"
	Content   string
	Rendered  string // Cached rendered markdown for the viewport
	Timestamp time.Time
}

func newMessage(role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
