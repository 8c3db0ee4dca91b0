package domain

import "time"

const unknownDescription = "Unknown"

// StorageBackend selects where providers and prompts are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists to a SQLite database in the data directory.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory. Useful for dry runs.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (persistent)"
	case StorageMemory:
		return "Memory (discarded on exit)"
	default:
		return unknownDescription
	}
}

// StorageSettings configures the durable store.
type StorageSettings struct {
	// Backend is the storage implementation.
	Backend StorageBackend

	// DataDir is where the SQLite database lives. Empty means ~/.cfgswitch/data.
	DataDir string
}

// LiveSettings configures where live configuration files are read and written.
type LiveSettings struct {
	// HomeDir is the root that ~/.claude, ~/.codex, ~/.gemini and the prompt
	// files are resolved against. Empty means the user's home directory.
	HomeDir string
}

// NotifySettings configures the notification side-channel.
type NotifySettings struct {
	// Color enables styled output when writing to a terminal.
	Color bool

	// SyncFailureHint is appended to file-sync failure notifications.
	SyncFailureHint string
}

// WatchSettings configures the live-file watcher.
type WatchSettings struct {
	// Debounce collapses bursts of file events into one drift check.
	Debounce time.Duration

	// MaxChecksPerMinute caps drift checks triggered by file events.
	MaxChecksPerMinute int
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Storage StorageSettings
	Live    LiveSettings
	Notify  NotifySettings
	Watch   WatchSettings
}

// DefaultAppSettings returns sensible default settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Notify: NotifySettings{
			Color:           true,
			SyncFailureHint: "check that the configuration directory is writable",
		},
		Watch: WatchSettings{
			Debounce:           250 * time.Millisecond,
			MaxChecksPerMinute: 30,
		},
	}
}

// AllStorageBackends returns all valid storage backends.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageMemory}
}
