package livefile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/cfgswitch/internal/logger"
)

func (f *Files) geminiDir() string {
	return filepath.Join(f.home, ".gemini")
}

func (f *Files) geminiEnvPath() string {
	return filepath.Join(f.geminiDir(), ".env")
}

func (f *Files) geminiSettingsPath() string {
	return filepath.Join(f.geminiDir(), "settings.json")
}

// readGemini returns {"env": <.env pairs>, "config": <settings.json>}.
func (f *Files) readGemini() (map[string]any, error) {
	env := map[string]any{}
	data, err := os.ReadFile(f.geminiEnvPath())
	switch {
	case err == nil:
		for k, v := range parseEnv(string(data)) {
			env[k] = v
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", f.geminiEnvPath(), err)
	}

	config, err := readJSONObject(f.geminiSettingsPath())
	if err != nil {
		return nil, err
	}

	return map[string]any{"env": env, "config": config}, nil
}

// writeGemini replaces .env with the provider's env block and merges its
// config block into settings.json.
func (f *Files) writeGemini(settings map[string]any) error {
	if env, ok := settings["env"].(map[string]any); ok {
		path := f.geminiEnvPath()
		if err := backup(path); err != nil {
			return err
		}
		if err := atomicWriteFile(path, []byte(formatEnv(env)), 0o600); err != nil {
			return err
		}
	}

	config, ok := settings["config"].(map[string]any)
	if !ok {
		return nil
	}

	path := f.geminiSettingsPath()
	current, err := readJSONObject(path)
	if err != nil {
		logger.Warn("ignoring unreadable %s: %v", path, err)
		current = map[string]any{}
	}
	for k, v := range config {
		current[k] = v
	}
	return writeJSON(path, current, 0o600)
}

// parseEnv reads KEY=VALUE lines. Blank lines and # comments are skipped
// and only the first '=' separates key from value.
func parseEnv(text string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// formatEnv renders env as sorted KEY=VALUE lines, skipping empty values.
func formatEnv(env map[string]any) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(env[k])
		if env[k] == nil || v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	return b.String()
}
