package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keyLiveHomeDir       = "live.home_dir"
	keyNotifyColor       = "notify.color"
	keySyncFailureHint   = "switch.sync_failure_hint"
	keyWatchDebounceMS   = "watch.debounce_ms"
	keyWatchMaxPerMinute = "watch.max_checks_per_minute"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{keyStorageBackend, kindString},
	{keyStorageDataDir, kindString},
	{keyLiveHomeDir, kindString},
	{keyNotifyColor, kindBool},
	{keySyncFailureHint, kindString},
	{keyWatchDebounceMS, kindInt},
	{keyWatchMaxPerMinute, kindInt},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Live: domain.LiveSettings{
			HomeDir: s.configStore.GetString(keyLiveHomeDir),
		},
		Notify: domain.NotifySettings{
			Color:           s.getBool(keyNotifyColor, defaults.Notify.Color),
			SyncFailureHint: s.getString(keySyncFailureHint, defaults.Notify.SyncFailureHint),
		},
		Watch: domain.WatchSettings{
			Debounce: time.Duration(s.getInt(keyWatchDebounceMS,
				int(defaults.Watch.Debounce/time.Millisecond))) * time.Millisecond,
			MaxChecksPerMinute: s.getInt(keyWatchMaxPerMinute, defaults.Watch.MaxChecksPerMinute),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}

	values := []struct {
		key   string
		value any
	}{
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyLiveHomeDir, settings.Live.HomeDir},
		{keyNotifyColor, settings.Notify.Color},
		{keySyncFailureHint, settings.Notify.SyncFailureHint},
		{keyWatchDebounceMS, int(settings.Watch.Debounce / time.Millisecond)},
		{keyWatchMaxPerMinute, settings.Watch.MaxChecksPerMinute},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetValue parses value according to the type of key and stores it.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	default:
		if key == keyStorageBackend && !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, value)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func lookupKey(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

// Helper methods

func (s *SettingsService) getString(key, defaultVal string) string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if v, ok := s.configStore.GetBool(key); ok {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if backend.IsValid() {
		return backend
	}
	return defaultVal
}
