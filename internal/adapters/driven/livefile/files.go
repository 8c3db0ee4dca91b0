package livefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// Ensure Files implements the interface.
var _ driven.LiveConfig = (*Files)(nil)

// lockFileName is created next to the live files of each scope.
const lockFileName = ".cfgswitch.lock"

// Files reads and writes the live configuration files under a home directory.
type Files struct {
	home        string
	lockTimeout time.Duration
}

// New creates a live-file adapter rooted at home.
// If home is empty, the user's home directory is used.
func New(home string) (*Files, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		home = h
	}
	return &Files{home: home, lockTimeout: 10 * time.Second}, nil
}

// Home returns the root the live files are resolved against.
func (f *Files) Home() string {
	return f.home
}

// ReadSettings returns the live settings of app in provider Settings shape.
func (f *Files) ReadSettings(app domain.AppType) (map[string]any, error) {
	switch app {
	case domain.AppClaude:
		return f.readClaude()
	case domain.AppCodex:
		return f.readCodex()
	case domain.AppGemini:
		return f.readGemini()
	case domain.AppProxyCast:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedApp, app)
	}
}

// WriteSettings mirrors settings into the live files of app while holding
// the scope's cross-process lock.
func (f *Files) WriteSettings(app domain.AppType, settings map[string]any) error {
	switch app {
	case domain.AppClaude:
		return f.withLock(f.claudeDir(), func() error { return f.writeClaude(settings) })
	case domain.AppCodex:
		return f.withLock(f.codexDir(), func() error { return f.writeCodex(settings) })
	case domain.AppGemini:
		return f.withLock(f.geminiDir(), func() error { return f.writeGemini(settings) })
	case domain.AppProxyCast:
		return nil
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedApp, app)
	}
}

// LastModified returns the mtime of the primary live file of app.
func (f *Files) LastModified(app domain.AppType) (time.Time, bool) {
	var path string
	switch app {
	case domain.AppClaude:
		path = f.claudeSettingsPath()
	case domain.AppCodex:
		path = f.codexAuthPath()
	case domain.AppGemini:
		path = f.geminiEnvPath()
	default:
		return time.Time{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// WatchPaths returns the directories holding the live files of app.
func (f *Files) WatchPaths(app domain.AppType) []string {
	dir := f.scopeDir(app)
	if dir == "" {
		return nil
	}
	return []string{dir}
}

// scopeDir is the application's own directory under home.
func (f *Files) scopeDir(app domain.AppType) string {
	switch app {
	case domain.AppClaude:
		return f.claudeDir()
	case domain.AppCodex:
		return f.codexDir()
	case domain.AppGemini:
		return f.geminiDir()
	default:
		return ""
	}
}

// withLock runs fn while holding an advisory lock in dir so concurrent
// cfgswitch processes never interleave writes to the same scope.
func (f *Files) withLock(dir string, fn func() error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName))

	ctx, cancel := context.WithTimeout(context.Background(), f.lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring file lock for %s: %w", dir, err)
	}
	if !locked {
		return fmt.Errorf("timed out acquiring file lock for %s", dir)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}
