package livefile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// PromptPath returns the live prompt file of app, or "" if it has none.
func (f *Files) PromptPath(app domain.AppType) string {
	name := app.PromptFileName()
	if name == "" {
		return ""
	}
	return filepath.Join(f.home, name)
}

// ReadPrompt returns the live prompt file content and whether it exists.
func (f *Files) ReadPrompt(app domain.AppType) (string, bool, error) {
	path := f.PromptPath(app)
	if path == "" {
		return "", false, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// WritePrompt replaces the live prompt file content.
func (f *Files) WritePrompt(app domain.AppType, content string) error {
	path := f.PromptPath(app)
	if path == "" {
		return fmt.Errorf("%w: %s has no prompt file", domain.ErrInvalidInput, app)
	}
	return f.withLock(f.scopeDir(app), func() error {
		return atomicWriteFile(path, []byte(content), 0o644)
	})
}
