package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dtui/backend"
	"dtui/config"
	"dtui/model"
	"dtui/storage"
	"dtui/ui"
)

const Version = "v0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	creds := config.NewCredentialStore()
	if err := creds.Load(cfg.DataDir()); err != nil {
		fmt.Printf("Failed to load credentials: %v\n", err)
		os.Exit(1)
	}

	client, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		fmt.Printf("Invalid backend URL %q: %v\n", cfg.BackendURL, err)
		os.Exit(1)
	}

	// The document cache is an optimization; run without it if it fails.
	cache, err := storage.NewDocumentCache(cfg.DataDir())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Document cache init failed: %v (continuing without cache)", err)
		}
		cache = nil
	} else {
		defer cache.Close()
	}

	dataModel := model.NewModel(cfg, client, creds, cache, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running dtui: %v\n", err)
		os.Exit(1)
	}
}
