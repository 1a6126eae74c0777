// Package commands implements the plateful CLI subcommands.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/plateful/plateful/internal/client"
	"gopkg.in/yaml.v3"
)

const defaultServerURL = "http://localhost:8080"

// cliConfig is the CLI configuration loaded from ~/.plateful/config.yaml.
type cliConfig struct {
	ServerURL string `yaml:"serverUrl"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".plateful"), nil
}

// loadConfig reads the config file if present. The PLATEFUL_SERVER
// environment variable overrides the file.
func loadConfig() (*cliConfig, error) {
	cfg := &cliConfig{ServerURL: defaultServerURL}

	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if url := os.Getenv("PLATEFUL_SERVER"); url != "" {
		cfg.ServerURL = url
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	return cfg, nil
}

// newClient builds an API client backed by the session file in
// ~/.plateful/session.json.
func newClient() (*client.Client, *client.SessionStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dir, err := configDir()
	if err != nil {
		return nil, nil, err
	}

	store, err := client.NewSessionStore(filepath.Join(dir, "session.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	return client.New(cfg.ServerURL, store), store, nil
}

// requireSession fails fast with a friendly message when logged out.
func requireSession(store *client.SessionStore) error {
	if !store.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'plateful login' first")
	}
	return nil
}
