package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// mockBackend implements driven.Backend over in-memory state. It records
// every call by name, can fail any call, and can run a hook inside a call.
type mockBackend struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	hooks map[string]func()

	providers []domain.Provider
	currentID string

	// switchAppliesOnError makes a failing switch still move the current id,
	// like a backend that updated its store but failed to write the live file.
	switchAppliesOnError bool

	syncResult *domain.SyncCheckResult
	syncFrom   string

	prompts        domain.PromptSet
	liveContent    string
	autoImportN    int
	importedID     string
	lastUpsert     *domain.Prompt
	autoImportRuns int
}

var _ driven.Backend = (*mockBackend)(nil)

func newMockBackend() *mockBackend {
	return &mockBackend{
		errs:    make(map[string]error),
		hooks:   make(map[string]func()),
		prompts: domain.PromptSet{},
	}
}

// record logs the call and returns the configured error after running the hook.
func (m *mockBackend) record(name string) error {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	err := m.errs[name]
	hook := m.hooks[name]
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (m *mockBackend) setErr(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

func (m *mockBackend) setHook(name string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[name] = fn
}

func (m *mockBackend) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockBackend) resetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *mockBackend) count(name string) int {
	n := 0
	for _, c := range m.callLog() {
		if c == name {
			n++
		}
	}
	return n
}

// indexOf returns the position of the first call named name, or -1.
func (m *mockBackend) indexOf(name string) int {
	for i, c := range m.callLog() {
		if c == name {
			return i
		}
	}
	return -1
}

// Provider half.

func (m *mockBackend) ListProviders(_ context.Context, _ domain.AppType) ([]domain.Provider, error) {
	if err := m.record("list_providers"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Provider, len(m.providers))
	copy(out, m.providers)
	return out, nil
}

func (m *mockBackend) GetCurrentProvider(_ context.Context, _ domain.AppType) (*domain.Provider, error) {
	if err := m.record("get_current_provider"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.providers {
		if p.ID == m.currentID {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockBackend) AddProvider(_ context.Context, provider domain.Provider) error {
	if err := m.record("add_provider"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers = append(m.providers, provider)
	return nil
}

func (m *mockBackend) UpdateProvider(_ context.Context, provider domain.Provider) error {
	if err := m.record("update_provider"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.providers {
		if m.providers[i].ID == provider.ID {
			m.providers[i] = provider
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockBackend) DeleteProvider(_ context.Context, _ domain.AppType, id string) error {
	if err := m.record("delete_provider"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.providers {
		if m.providers[i].ID == id {
			m.providers = append(m.providers[:i], m.providers[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockBackend) SwitchProvider(_ context.Context, _ domain.AppType, id string) error {
	err := m.record("switch_provider")
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if m.switchAppliesOnError {
			m.currentID = id
		}
		return err
	}
	for _, p := range m.providers {
		if p.ID == id {
			m.currentID = id
			return nil
		}
	}
	return domain.NewBackendError(domain.KindNotFound, "", domain.ErrNotFound)
}

func (m *mockBackend) CheckConfigSync(_ context.Context, _ domain.AppType) (*domain.SyncCheckResult, error) {
	if err := m.record("check_config_sync"); err != nil {
		return nil, err
	}
	return m.syncResult, nil
}

func (m *mockBackend) SyncFromExternal(_ context.Context, _ domain.AppType) (string, error) {
	if err := m.record("sync_from_external"); err != nil {
		return "", err
	}
	return m.syncFrom, nil
}

// Prompt half.

func (m *mockBackend) ListPrompts(_ context.Context, _ domain.AppType) (domain.PromptSet, error) {
	if err := m.record("list_prompts"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts.Clone(), nil
}

func (m *mockBackend) GetLiveFileContent(_ context.Context, _ domain.AppType) (string, error) {
	if err := m.record("get_live_file_content"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveContent, nil
}

func (m *mockBackend) AutoImportPrompts(_ context.Context, _ domain.AppType) (int, error) {
	m.mu.Lock()
	m.autoImportRuns++
	m.mu.Unlock()
	if err := m.record("auto_import_prompts"); err != nil {
		return 0, err
	}
	return m.autoImportN, nil
}

func (m *mockBackend) UpsertPrompt(_ context.Context, _ domain.AppType, id string, prompt domain.Prompt) error {
	if err := m.record("upsert_prompt"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[id] = prompt
	m.lastUpsert = &prompt
	return nil
}

func (m *mockBackend) DeletePrompt(_ context.Context, _ domain.AppType, id string) error {
	if err := m.record("delete_prompt"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prompts, id)
	return nil
}

func (m *mockBackend) EnablePrompt(_ context.Context, _ domain.AppType, id string) error {
	if err := m.record("enable_prompt"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prompts[id]; !ok {
		return fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
	}
	m.prompts = domain.ApplyEnabled(m.prompts, id, true)
	return nil
}

func (m *mockBackend) ImportPromptFromFile(_ context.Context, app domain.AppType) (string, error) {
	if err := m.record("import_prompt_from_file"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts[m.importedID] = domain.Prompt{
		ID:      m.importedID,
		AppType: app,
		Name:    "imported",
		Content: m.liveContent,
	}
	return m.importedID, nil
}

// recordingNotifier keeps every notification it receives.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

func (r *recordingNotifier) levels() []domain.NotificationLevel {
	var out []domain.NotificationLevel
	for _, n := range r.all() {
		out = append(out, n.Level)
	}
	return out
}
