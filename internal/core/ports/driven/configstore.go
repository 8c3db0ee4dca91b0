package driven

// ConfigStore provides access to application configuration.
// Keys use dot notation ("storage.data_dir"); implementations handle
// persistence (TOML) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// The second result is false if the key doesn't exist or isn't a boolean.
	GetBool(key string) (bool, bool)

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
