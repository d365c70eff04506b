package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"gopkg.in/yaml.v2"
)

// SettingsFile stores notifier settings in a YAML file
type SettingsFile struct {
	path string
}

// NewSettingsFile creates a file store at path
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// GetSettings reads the settings file, or returns ErrNotFound
func (sf *SettingsFile) GetSettings(_ context.Context) (*config.NotifierSettings, error) {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings config.NotifierSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", sf.path, err)
	}
	return &settings, nil
}

// PutSettings atomically rewrites the settings file
func (sf *SettingsFile) PutSettings(_ context.Context, settings config.NotifierSettings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(sf.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := os.Rename(tmp.Name(), sf.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
