package livefile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

func newTestFiles(t *testing.T) (*Files, string) {
	t.Helper()
	home := t.TempDir()
	f, err := New(home)
	require.NoError(t, err)
	return f, home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNew_UsesGivenHome(t *testing.T) {
	f, home := newTestFiles(t)
	assert.Equal(t, home, f.Home())
}

func TestReadSettings_MissingFilesAreEmpty(t *testing.T) {
	f, _ := newTestFiles(t)

	claude, err := f.ReadSettings(domain.AppClaude)
	require.NoError(t, err)
	assert.Empty(t, claude)

	codex, err := f.ReadSettings(domain.AppCodex)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"auth": map[string]any{}, "config": ""}, codex)

	gemini, err := f.ReadSettings(domain.AppGemini)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"env": map[string]any{}, "config": map[string]any{}}, gemini)

	proxy, err := f.ReadSettings(domain.AppProxyCast)
	require.NoError(t, err)
	assert.Empty(t, proxy)
}

func TestReadSettings_UnsupportedApp(t *testing.T) {
	f, _ := newTestFiles(t)

	_, err := f.ReadSettings(domain.AppType("vim"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedApp)
	assert.ErrorIs(t, f.WriteSettings(domain.AppType("vim"), nil), domain.ErrUnsupportedApp)
}

func TestWriteClaude_MergesEnvAndKeepsOtherKeys(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")
	writeFile(t, path, `{"model":"opus","env":{"ANTHROPIC_BASE_URL":"https://old","KEEP":"1"}}`)

	err := f.WriteSettings(domain.AppClaude, map[string]any{
		"env": map[string]any{"ANTHROPIC_BASE_URL": "https://new", "ANTHROPIC_API_KEY": "sk-new"},
	})
	require.NoError(t, err)

	got := readJSON(t, path)
	assert.Equal(t, "opus", got["model"])
	assert.Equal(t, map[string]any{
		"ANTHROPIC_BASE_URL": "https://new",
		"ANTHROPIC_API_KEY":  "sk-new",
		"KEEP":               "1",
	}, got["env"])

	backupData, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(backupData), "https://old")
}

func TestWriteClaude_WithoutEnvReplacesFile(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")
	writeFile(t, path, `{"model":"opus"}`)

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{"permissions": map[string]any{"allow": []any{"Bash"}}}))

	got := readJSON(t, path)
	assert.NotContains(t, got, "model")
	assert.Contains(t, got, "permissions")
}

func TestWriteClaude_DropsAPIKeyWhenAuthTokenSet(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")
	writeFile(t, path, `{"env":{"ANTHROPIC_API_KEY":"sk-old"}}`)

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{
		"env": map[string]any{"ANTHROPIC_AUTH_TOKEN": "tok"},
	}))

	env := readJSON(t, path)["env"].(map[string]any)
	assert.Equal(t, "tok", env["ANTHROPIC_AUTH_TOKEN"])
	assert.NotContains(t, env, "ANTHROPIC_API_KEY")
}

func TestWriteClaude_IncomingAPIKeyReplacesAuthToken(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")
	writeFile(t, path, `{"env":{"ANTHROPIC_AUTH_TOKEN":"tok-old"}}`)

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{
		"env": map[string]any{"ANTHROPIC_API_KEY": "sk-new"},
	}))

	env := readJSON(t, path)["env"].(map[string]any)
	assert.Equal(t, "sk-new", env["ANTHROPIC_API_KEY"])
	assert.NotContains(t, env, "ANTHROPIC_AUTH_TOKEN")
}

func TestWriteClaude_IncomingBothCredentialsKeepsAuthToken(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{
		"env": map[string]any{"ANTHROPIC_API_KEY": "sk", "ANTHROPIC_AUTH_TOKEN": "tok"},
	}))

	env := readJSON(t, path)["env"].(map[string]any)
	assert.Equal(t, "tok", env["ANTHROPIC_AUTH_TOKEN"])
	assert.NotContains(t, env, "ANTHROPIC_API_KEY")
}

func TestWriteClaude_InvalidExistingFileIsReplaced(t *testing.T) {
	f, home := newTestFiles(t)
	path := filepath.Join(home, ".claude", "settings.json")
	writeFile(t, path, `{not json`)

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{"env": map[string]any{"ANTHROPIC_API_KEY": "sk"}}))

	assert.Equal(t, map[string]any{"env": map[string]any{"ANTHROPIC_API_KEY": "sk"}}, readJSON(t, path))

	_, err := f.ReadSettings(domain.AppClaude)
	require.NoError(t, err)
}

func TestWriteClaude_FilePermissions(t *testing.T) {
	f, home := newTestFiles(t)

	require.NoError(t, f.WriteSettings(domain.AppClaude, map[string]any{"env": map[string]any{}}))

	info, err := os.Stat(filepath.Join(home, ".claude", "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCodex_RoundTrip(t *testing.T) {
	f, home := newTestFiles(t)
	settings := map[string]any{
		"auth":   map[string]any{"OPENAI_API_KEY": "sk-codex"},
		"config": "model = \"gpt-5\"\n",
	}

	require.NoError(t, f.WriteSettings(domain.AppCodex, settings))

	got, err := f.ReadSettings(domain.AppCodex)
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	_, err = os.Stat(filepath.Join(home, ".codex", "config.toml"))
	assert.NoError(t, err)
}

func TestCodex_InvalidTOMLWritesNothing(t *testing.T) {
	f, home := newTestFiles(t)

	err := f.WriteSettings(domain.AppCodex, map[string]any{
		"auth":   map[string]any{"OPENAI_API_KEY": "sk"},
		"config": "model = [unterminated",
	})

	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(home, ".codex", "auth.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCodex_ConfigMustBeText(t *testing.T) {
	f, _ := newTestFiles(t)

	err := f.WriteSettings(domain.AppCodex, map[string]any{"config": map[string]any{"model": "x"}})

	assert.Error(t, err)
}

func TestGemini_WritesEnvAndMergesConfig(t *testing.T) {
	f, home := newTestFiles(t)
	settingsPath := filepath.Join(home, ".gemini", "settings.json")
	writeFile(t, settingsPath, `{"theme":"dark","selectedAuthType":"oauth"}`)

	err := f.WriteSettings(domain.AppGemini, map[string]any{
		"env":    map[string]any{"GOOGLE_API_KEY": "g-key", "GOOGLE_GEMINI_BASE_URL": "https://proxy", "EMPTY": ""},
		"config": map[string]any{"selectedAuthType": "gemini-api-key"},
	})
	require.NoError(t, err)

	env, err := os.ReadFile(filepath.Join(home, ".gemini", ".env"))
	require.NoError(t, err)
	assert.Equal(t, "GOOGLE_API_KEY=g-key\nGOOGLE_GEMINI_BASE_URL=https://proxy\n", string(env))

	assert.Equal(t, map[string]any{"theme": "dark", "selectedAuthType": "gemini-api-key"}, readJSON(t, settingsPath))

	got, err := f.ReadSettings(domain.AppGemini)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"GOOGLE_API_KEY": "g-key", "GOOGLE_GEMINI_BASE_URL": "https://proxy"}, got["env"])
}

func TestParseEnv(t *testing.T) {
	text := "# comment\n\nA=1\n B = two words \nURL=https://x?a=b\nnovalue\n=orphan\n"

	assert.Equal(t, map[string]string{"A": "1", "B": "two words", "URL": "https://x?a=b"}, parseEnv(text))
}

func TestPrompt_ReadWrite(t *testing.T) {
	f, home := newTestFiles(t)

	_, ok, err := f.ReadPrompt(domain.AppCodex)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.WritePrompt(domain.AppCodex, "# Agents\n"))

	content, ok, err := f.ReadPrompt(domain.AppCodex)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "# Agents\n", content)
	assert.Equal(t, filepath.Join(home, "AGENTS.md"), f.PromptPath(domain.AppCodex))
}

func TestPrompt_ProxyCastHasNoFile(t *testing.T) {
	f, _ := newTestFiles(t)

	_, ok, err := f.ReadPrompt(domain.AppProxyCast)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.WritePrompt(domain.AppProxyCast, "x"), domain.ErrInvalidInput)
	assert.NoError(t, f.WriteSettings(domain.AppProxyCast, map[string]any{"a": 1}))
}

func TestLastModified(t *testing.T) {
	f, home := newTestFiles(t)

	_, ok := f.LastModified(domain.AppGemini)
	assert.False(t, ok)

	path := filepath.Join(home, ".gemini", ".env")
	writeFile(t, path, "A=1\n")
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	got, ok := f.LastModified(domain.AppGemini)
	assert.True(t, ok)
	assert.True(t, got.Equal(stamp))

	_, ok = f.LastModified(domain.AppProxyCast)
	assert.False(t, ok)
}

func TestWatchPaths(t *testing.T) {
	f, home := newTestFiles(t)

	assert.Equal(t, []string{filepath.Join(home, ".claude")}, f.WatchPaths(domain.AppClaude))
	assert.Equal(t, []string{filepath.Join(home, ".codex")}, f.WatchPaths(domain.AppCodex))
	assert.Equal(t, []string{filepath.Join(home, ".gemini")}, f.WatchPaths(domain.AppGemini))
	assert.Nil(t, f.WatchPaths(domain.AppProxyCast))
}

func TestWriteSettings_LockHeldElsewhereTimesOut(t *testing.T) {
	f, home := newTestFiles(t)
	f.lockTimeout = 150 * time.Millisecond

	dir := filepath.Join(home, ".claude")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	other := flock.New(filepath.Join(dir, lockFileName))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	err = f.WriteSettings(domain.AppClaude, map[string]any{"env": map[string]any{}})

	assert.Error(t, err)
}

func TestAtomicWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	require.NoError(t, atomicWriteFile(path, []byte("one"), 0o600))
	require.NoError(t, atomicWriteFile(path, []byte("two"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}
