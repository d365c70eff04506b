package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/repository"
)

// SettingsValidationError lists malformed settings fields
type SettingsValidationError struct {
	Fields config.FieldErrors
}

func (e *SettingsValidationError) Error() string {
	return fmt.Sprintf("invalid settings: %v", e.Fields)
}

// SettingsService holds the active notifier settings. Events read an
// immutable snapshot; administrators replace it through Update.
type SettingsService struct {
	repo    repository.SettingsRepository
	current atomic.Pointer[config.NotifierSettings]
}

// NewSettingsService creates a settings service backed by repo
func NewSettingsService(repo repository.SettingsRepository) *SettingsService {
	s := &SettingsService{repo: repo}
	empty := config.NotifierSettings{}.WithDefaults()
	s.current.Store(&empty)
	return s
}

// Load reads persisted settings, falling back to seed when nothing has
// been saved. Defaults are resolved here, once.
func (s *SettingsService) Load(ctx context.Context, seed config.NotifierSettings) error {
	stored, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info("No saved BigPanda settings, using environment values")
		stored = &seed
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	}

	settings := stored.WithDefaults()
	s.current.Store(&settings)

	logger.WithFields(map[string]interface{}{
		"changes_enabled":     settings.ChangesEnabled(),
		"deployments_enabled": settings.DeploymentsEnabled(),
	}).Info("BigPanda settings loaded")
	return nil
}

// Current returns the active settings snapshot
func (s *SettingsService) Current() config.NotifierSettings {
	return *s.current.Load()
}

// Update validates, persists and activates new settings. Missing required
// values are accepted and returned so the caller can warn about them.
func (s *SettingsService) Update(ctx context.Context, settings config.NotifierSettings) (config.FieldErrors, error) {
	settings = keepSecrets(s.Current(), settings).WithDefaults()

	invalid, missing := settings.Check()
	if len(invalid) > 0 {
		return nil, &SettingsValidationError{Fields: invalid}
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	s.current.Store(&settings)

	logger.WithFields(map[string]interface{}{
		"changes_enabled":     settings.ChangesEnabled(),
		"deployments_enabled": settings.DeploymentsEnabled(),
	}).Info("BigPanda settings updated")
	return missing, nil
}

// keepSecrets puts back the stored secrets the admin API handed out
// redacted and that came back unchanged
func keepSecrets(current, incoming config.NotifierSettings) config.NotifierSettings {
	redacted := current.Redacted()
	if current.APIKey != "" && incoming.APIKey == redacted.APIKey {
		incoming.APIKey = current.APIKey
	}
	if current.AppKey != "" && incoming.AppKey == redacted.AppKey {
		incoming.AppKey = current.AppKey
	}
	if current.Token != "" && incoming.Token == redacted.Token {
		incoming.Token = current.Token
	}
	return incoming
}
