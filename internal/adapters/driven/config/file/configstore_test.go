package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[storage]
backend = "memory"
data_dir = "/var/lib/cfgswitch"

[notify]
color = false

[watch]
debounce_ms = 500
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "memory", store.GetString("storage.backend"))
	assert.Equal(t, "/var/lib/cfgswitch", store.GetString("storage.data_dir"))
	assert.Equal(t, 500, store.GetInt("watch.debounce_ms"))

	color, ok := store.GetBool("notify.color")
	assert.True(t, ok)
	assert.False(t, color)

	assert.Equal(t, []string{"notify.color", "storage.backend", "storage.data_dir", "watch.debounce_ms"}, store.Keys())
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("live.home_dir", "/home/dev"))
	require.NoError(t, store.Set("watch.max_checks_per_minute", 12))
	require.NoError(t, store.Set("notify.color", true))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[live]")
	assert.Contains(t, string(raw), "[watch]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/home/dev", reloaded.GetString("live.home_dir"))
	assert.Equal(t, 12, reloaded.GetInt("watch.max_checks_per_minute"))
	color, ok := reloaded.GetBool("notify.color")
	assert.True(t, ok)
	assert.True(t, color)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_TypeMismatches(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("s", "text"))
	require.NoError(t, store.Set("n", int64(3)))

	assert.Equal(t, 0, store.GetInt("s"))
	assert.Empty(t, store.GetString("n"))
	_, ok := store.GetBool("s")
	assert.False(t, ok)
	_, ok = store.GetBool("missing")
	assert.False(t, ok)
	assert.Equal(t, 3, store.GetInt("n"))
}

func TestConfigStore_SetFailureRevertsValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be encoded as TOML.
	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Set("watch.debounce_ms", id)
			_ = store.GetInt("watch.debounce_ms")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("watch.debounce_ms")
	assert.True(t, ok)
}

func TestNestMap_InvertsFlatten(t *testing.T) {
	flat := map[string]any{"a.b": 1, "a.c": "x", "d": true}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": "x"}, "d": true}, nested)
	assert.Equal(t, flat, flattenMap(nested, ""))
}
