package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("store.dsn"). Implementations handle persistence
// and type conversion; a value that cannot be converted reads as the zero
// value.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// SetAll stores several values with a single write. A nil value
	// removes its key.
	SetAll(values map[string]any) error

	// Unset removes a key and persists immediately.
	Unset(key string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage, replacing what is in memory.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
