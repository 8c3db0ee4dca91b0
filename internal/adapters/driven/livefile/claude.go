package livefile

import (
	"path/filepath"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// Claude Code credential variables.
const (
	EnvAnthropicAuthToken = "ANTHROPIC_AUTH_TOKEN"
	EnvAnthropicAPIKey    = "ANTHROPIC_API_KEY"
)

func (f *Files) claudeDir() string {
	return filepath.Join(f.home, ".claude")
}

func (f *Files) claudeSettingsPath() string {
	return filepath.Join(f.claudeDir(), "settings.json")
}

// readClaude returns settings.json as-is.
func (f *Files) readClaude() (map[string]any, error) {
	return readJSONObject(f.claudeSettingsPath())
}

// writeClaude merges the provider's env block into settings.json, keeping
// every other key the user has set. Settings without an env block replace
// the file wholesale.
func (f *Files) writeClaude(settings map[string]any) error {
	path := f.claudeSettingsPath()

	current, err := readJSONObject(path)
	if err != nil {
		// An unparsable file is replaced rather than blocking the switch.
		logger.Warn("ignoring unreadable %s: %v", path, err)
		current = map[string]any{}
	}

	incoming, _ := settings["env"].(map[string]any)

	var next map[string]any
	if incoming != nil {
		next = current
		target, ok := next["env"].(map[string]any)
		if !ok {
			target = map[string]any{}
		}
		for k, v := range incoming {
			target[k] = v
		}
		next["env"] = target
	} else {
		next = domain.CloneSettings(settings)
		if next == nil {
			next = map[string]any{}
		}
	}

	cleanClaudeAuthConflict(next, incoming)
	return writeJSON(path, next, 0o600)
}

// cleanClaudeAuthConflict leaves at most one of ANTHROPIC_AUTH_TOKEN and
// ANTHROPIC_API_KEY in settings, since Claude Code refuses to start with
// both. The credential the incoming env sets wins; when it sets both or
// neither, the auth token is kept.
func cleanClaudeAuthConflict(settings, incoming map[string]any) {
	env, ok := settings["env"].(map[string]any)
	if !ok {
		return
	}
	if !nonEmptyString(env[EnvAnthropicAuthToken]) || !nonEmptyString(env[EnvAnthropicAPIKey]) {
		return
	}

	drop := EnvAnthropicAPIKey
	if nonEmptyString(incoming[EnvAnthropicAPIKey]) && !nonEmptyString(incoming[EnvAnthropicAuthToken]) {
		drop = EnvAnthropicAuthToken
	}
	logger.Debug("both %s and %s set, dropping %s", EnvAnthropicAuthToken, EnvAnthropicAPIKey, drop)
	delete(env, drop)
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}
