package config

const (
	// DefaultBackendURL is where the FastAPI backend listens locally.
	DefaultBackendURL = "http://localhost:8000"

	// DefaultModel matches the backend's own default.
	DefaultModel = "gpt-4o-mini"

	// DefaultDataDirectory holds the debug log, credentials and document cache.
	DefaultDataDirectory = "~/.local/share/dtui"
)
