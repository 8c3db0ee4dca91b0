package livefile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

func (f *Files) codexDir() string {
	return filepath.Join(f.home, ".codex")
}

func (f *Files) codexAuthPath() string {
	return filepath.Join(f.codexDir(), "auth.json")
}

func (f *Files) codexConfigPath() string {
	return filepath.Join(f.codexDir(), "config.toml")
}

// readCodex returns {"auth": <auth.json>, "config": <config.toml text>}.
func (f *Files) readCodex() (map[string]any, error) {
	auth, err := readJSONObject(f.codexAuthPath())
	if err != nil {
		return nil, err
	}

	config := ""
	data, err := os.ReadFile(f.codexConfigPath())
	switch {
	case err == nil:
		config = string(data)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", f.codexConfigPath(), err)
	}

	return map[string]any{"auth": auth, "config": config}, nil
}

// writeCodex writes auth.json and config.toml. The config text is parsed
// before anything touches disk so a typo never leaves Codex unbootable.
func (f *Files) writeCodex(settings map[string]any) error {
	auth, ok := settings["auth"].(map[string]any)
	if !ok {
		auth = map[string]any{}
	}

	config := ""
	if raw, present := settings["config"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("codex config must be TOML text, got %T", raw)
		}
		config = s
	}
	if err := ValidateTOML(config); err != nil {
		return err
	}

	if err := writeJSON(f.codexAuthPath(), auth, 0o600); err != nil {
		return err
	}

	path := f.codexConfigPath()
	if err := backup(path); err != nil {
		return err
	}
	return atomicWriteFile(path, []byte(config), 0o600)
}

// ValidateTOML reports whether text is a well-formed TOML document.
func ValidateTOML(text string) error {
	var doc map[string]any
	if err := toml.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("invalid codex config.toml: %w", err)
	}
	return nil
}
