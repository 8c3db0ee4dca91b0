package driving

import "github.com/custodia-labs/cfgswitch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filled with defaults.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetValue parses and stores a single setting by key.
	SetValue(key, value string) error

	// Keys lists the settable keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
