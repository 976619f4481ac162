package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Credential keys recognized by the store.
const (
	CredentialOpenAI = "openai"
	CredentialTavily = "tavily"
)

// CredentialStore manages the API keys forwarded to the backend. Keys live in
// a plain-text TOML file with 0600 permissions under the data directory;
// environment variables override the file.
type CredentialStore struct {
	credentials map[string]string
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{credentials: make(map[string]string)}
}

// Load reads credentials from disk, then applies environment overrides
// (OPENAI_API_KEY, TAVILY_API_KEY).
func (c *CredentialStore) Load(dataDir string) error {
	path := credentialsPath(dataDir)

	if FileExists(path) {
		type credentialsFile struct {
			Credentials map[string]string `toml:"credentials"`
		}
		var cf credentialsFile
		if _, err := toml.DecodeFile(path, &cf); err != nil {
			return fmt.Errorf("failed to parse credentials file: %w", err)
		}
		if cf.Credentials != nil {
			c.credentials = cf.Credentials
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.credentials[CredentialOpenAI] = key
	}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		c.credentials[CredentialTavily] = key
	}
	return nil
}

// Save writes credentials to disk with 0600 permissions.
func (c *CredentialStore) Save(dataDir string) error {
	path := credentialsPath(dataDir)

	type credentialsFile struct {
		Credentials map[string]string `toml:"credentials"`
	}
	cf := credentialsFile{Credentials: c.credentials}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cf); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

// Get retrieves a credential by key, "" when absent.
func (c *CredentialStore) Get(key string) string {
	return c.credentials[key]
}

// Set stores a credential.
func (c *CredentialStore) Set(key, value string) {
	c.credentials[key] = value
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}
