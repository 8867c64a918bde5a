package driving

import "github.com/custodia-labs/vepctl/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by its config key, e.g. "processing.workers".
	// The value is parsed according to the setting's type.
	Set(key, value string) error

	// Keys returns every settable config key, sorted.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
