package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfig mirrors settings.toml.
type UserConfig struct {
	BackendURL          string `toml:"backend_url"`
	DefaultModel        string `toml:"default_model"`
	DefaultSystemPrompt string `toml:"default_system_prompt,omitempty"`
	DataDirectory       string `toml:"data_directory"`
}

// Config is the resolved runtime configuration.
type Config struct {
	BackendURL          string
	DefaultModel        string
	DefaultSystemPrompt string
	DataDirectory       string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DTUI_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
	if model := os.Getenv("DTUI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("DTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("DTUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - the debug log can contain request payloads
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (DTUI_DEBUG=%s) ===", os.Getenv("DTUI_DEBUG"))
}

// Load reads settings.toml, writing one with defaults on first run, then
// applies environment overrides and ensures the data directory exists.
func Load() (*Config, error) {
	cfg := &Config{
		BackendURL:    DefaultBackendURL,
		DefaultModel:  DefaultModel,
		DataDirectory: DefaultDataDirectory,
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		var userCfg UserConfig
		if _, err := toml.DecodeFile(settingsPath, &userCfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", settingsPath, err)
		}
		if userCfg.BackendURL != "" {
			cfg.BackendURL = userCfg.BackendURL
		}
		if userCfg.DefaultModel != "" {
			cfg.DefaultModel = userCfg.DefaultModel
		}
		if userCfg.DataDirectory != "" {
			cfg.DataDirectory = userCfg.DataDirectory
		}
		cfg.DefaultSystemPrompt = userCfg.DefaultSystemPrompt
	} else if err := writeDefaultSettings(settingsPath, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func writeDefaultSettings(settingsPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(settingsPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	userCfg := UserConfig{
		BackendURL:    cfg.BackendURL,
		DefaultModel:  cfg.DefaultModel,
		DataDirectory: cfg.DataDirectory,
	}
	if err := toml.NewEncoder(f).Encode(userCfg); err != nil {
		return fmt.Errorf("failed to write default settings: %w", err)
	}
	return nil
}
