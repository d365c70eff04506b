package repository

import (
	"context"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/database"
)

// ErrNotFound is returned when no settings have been saved yet
var ErrNotFound = database.ErrNotFound

// SettingsRepository defines the interface for notifier settings persistence
type SettingsRepository interface {
	Get(ctx context.Context) (*config.NotifierSettings, error)
	Save(ctx context.Context, settings config.NotifierSettings) error
}

// settingsStore is implemented by database.SettingsOperations and
// database.SettingsFile
type settingsStore interface {
	GetSettings(ctx context.Context) (*config.NotifierSettings, error)
	PutSettings(ctx context.Context, settings config.NotifierSettings) error
}

// settingsRepository is the concrete implementation of SettingsRepository
type settingsRepository struct {
	store settingsStore
}

// NewSettingsRepository creates a settings repository over a store
func NewSettingsRepository(store settingsStore) SettingsRepository {
	return &settingsRepository{store: store}
}

// Get retrieves the saved settings
func (r *settingsRepository) Get(ctx context.Context) (*config.NotifierSettings, error) {
	return r.store.GetSettings(ctx)
}

// Save persists settings
func (r *settingsRepository) Save(ctx context.Context, settings config.NotifierSettings) error {
	return r.store.PutSettings(ctx, settings)
}
