package driven

import (
	"time"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// LiveConfig reads and writes the external configuration files that the
// downstream applications actually load.
type LiveConfig interface {
	// ReadSettings returns the scope's live settings in provider Settings shape.
	// Missing files yield empty sections rather than an error.
	ReadSettings(app domain.AppType) (map[string]any, error)

	// WriteSettings mirrors a provider's Settings into the live files.
	WriteSettings(app domain.AppType, settings map[string]any) error

	// LastModified returns the mtime of the scope's primary live file.
	LastModified(app domain.AppType) (time.Time, bool)

	// ReadPrompt returns the live prompt file content and whether it exists.
	ReadPrompt(app domain.AppType) (string, bool, error)

	// WritePrompt replaces the live prompt file content.
	WritePrompt(app domain.AppType, content string) error

	// WatchPaths returns the directories a watcher should observe for the scope.
	WatchPaths(app domain.AppType) []string
}
