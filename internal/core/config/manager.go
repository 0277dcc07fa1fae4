package config

import (
	"context"
	"os"

	"github.com/forduniver/wald/internal/filemanager"
)

// FileName is the config file's name under .wald/.
const FileName = "config.yaml"

// Manager loads and saves the workspace config file.
type Manager struct {
	fm *filemanager.Manager[Config]
}

// NewManager creates a config Manager.
func NewManager() *Manager {
	return &Manager{fm: filemanager.NewManager[Config]()}
}

// Load reads config.yaml, falling back to Default() if absent.
func (m *Manager) Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := m.fm.Read(ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	if cfg.DefaultLFS == "" {
		cfg.DefaultLFS = Default().DefaultLFS
	}
	if cfg.DefaultDepth == "" {
		cfg.DefaultDepth = Default().DefaultDepth
	}
	return cfg, nil
}

// Save writes config.yaml.
func (m *Manager) Save(ctx context.Context, path string, cfg *Config) error {
	return m.fm.Write(ctx, path, cfg)
}
