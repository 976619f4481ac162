package model

import (
	"context"

	"dtui/backend"
	"dtui/config"
	"dtui/storage"
	"dtui/stream"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config      *config.Config
	Backend     *backend.Client
	Credentials *config.CredentialStore
	Cache       *storage.DocumentCache

	// Application data
	Conversation *Conversation
	Registry     *DocumentRegistry
	Tracker      *stream.Tracker

	// Runtime state (not UI). Streaming guards submission: exactly one turn's
	// stream is consumed at a time.
	Streaming bool
	turn      *turn

	// Application metadata
	Version string
}

// turn is the per-turn plumbing discarded when the turn ends.
type turn struct {
	handle Handle
	cancel context.CancelFunc
	events chan turnItem
}

// turnItem is one element of the ordered event channel between the stream
// pump goroutine and the update loop.
type turnItem struct {
	event stream.Event
	err   error
	done  bool
}

// NewModel creates a Model, seeding the document registry from the local
// cache so the picker works before the backend has been queried.
func NewModel(cfg *config.Config, client *backend.Client, creds *config.CredentialStore, cache *storage.DocumentCache, version string) *Model {
	m := &Model{
		Config:       cfg,
		Backend:      client,
		Credentials:  creds,
		Cache:        cache,
		Conversation: NewConversation(),
		Registry:     NewDocumentRegistry(),
		Tracker:      stream.NewTracker(),
		Version:      version,
	}

	if cache != nil {
		cached, err := cache.All()
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Model] document cache read failed: %v", err)
			}
			return m
		}
		for _, doc := range cached {
			_ = m.Registry.Add(Document{ID: doc.ID, Filename: doc.Filename, ChunkCount: doc.ChunkCount})
		}
	}

	return m
}

// BuildCredentials assembles the per-turn credentials from the store.
func (m *Model) BuildCredentials() backend.Credentials {
	return backend.Credentials{
		APIKey:       m.Credentials.Get(config.CredentialOpenAI),
		TavilyAPIKey: m.Credentials.Get(config.CredentialTavily),
	}
}
