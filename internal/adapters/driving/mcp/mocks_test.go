package mcp

import (
	"context"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

// mockRegistry is a mock implementation of driving.ScopeRegistry.
type mockRegistry struct {
	providers map[domain.AppType]*mockProviders
	prompts   map[domain.AppType]*mockPrompts
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		providers: make(map[domain.AppType]*mockProviders),
		prompts:   make(map[domain.AppType]*mockPrompts),
	}
}

func (m *mockRegistry) Providers(app domain.AppType) (driving.ProviderSwitchController, error) {
	p, ok := m.providers[app]
	if !ok {
		return nil, domain.ErrUnsupportedApp
	}
	return p, nil
}

func (m *mockRegistry) Prompts(app domain.AppType) (driving.PromptController, error) {
	p, ok := m.prompts[app]
	if !ok {
		return nil, domain.ErrUnsupportedApp
	}
	return p, nil
}

// mockProviders is a mock implementation of driving.ProviderSwitchController.
type mockProviders struct {
	app        domain.AppType
	list       []domain.Provider
	sync       *domain.SyncCheckResult
	refreshErr error
	err        error
	switchedTo string
}

func (m *mockProviders) AppType() domain.AppType { return m.app }

func (m *mockProviders) Refresh(context.Context) error { return m.refreshErr }

func (m *mockProviders) Add(_ context.Context, draft domain.ProviderDraft) (domain.Provider, error) {
	return domain.Provider{Name: draft.Name}, m.err
}

func (m *mockProviders) Update(context.Context, domain.Provider) error { return m.err }

func (m *mockProviders) Delete(context.Context, string) error { return m.err }

func (m *mockProviders) SwitchTo(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.switchedTo = id
	m.list = domain.ApplyCurrent(m.list, id)
	return nil
}

func (m *mockProviders) CheckConfigSync(context.Context) (*domain.SyncCheckResult, error) {
	return m.sync, m.err
}

func (m *mockProviders) SyncFromExternal(context.Context) (string, error) { return "", m.err }

func (m *mockProviders) Providers() []domain.Provider { return m.list }

func (m *mockProviders) CurrentProvider() *domain.Provider {
	for i := range m.list {
		if m.list[i].IsCurrent {
			p := m.list[i]
			return &p
		}
	}
	return nil
}

func (m *mockProviders) Loading() bool { return false }

func (m *mockProviders) LastError() string { return "" }

// mockPrompts is a mock implementation of driving.PromptController.
type mockPrompts struct {
	app        domain.AppType
	set        domain.PromptSet
	content    string
	hasContent bool
	reloads    int
	err        error
}

func (m *mockPrompts) AppType() domain.AppType { return m.app }

func (m *mockPrompts) Reload(context.Context) error {
	m.reloads++
	return m.err
}

func (m *mockPrompts) SavePrompt(context.Context, string, domain.Prompt) error { return m.err }

func (m *mockPrompts) DeletePrompt(context.Context, string) error { return m.err }

func (m *mockPrompts) EnablePrompt(context.Context, string) error { return m.err }

func (m *mockPrompts) ToggleEnabled(_ context.Context, id string, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.set[id]; !ok {
		return domain.ErrNotFound
	}
	m.set = domain.ApplyEnabled(m.set, id, enabled)
	return nil
}

func (m *mockPrompts) ImportFromFile(context.Context) (string, error) { return "", m.err }

func (m *mockPrompts) Prompts() domain.PromptSet { return m.set.Clone() }

func (m *mockPrompts) CurrentFileContent() (string, bool) { return m.content, m.hasContent }

func (m *mockPrompts) Loading() bool { return false }
