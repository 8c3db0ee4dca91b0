package services

import (
	"sync"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

// Ensure Scopes implements the interface.
var _ driving.ScopeRegistry = (*Scopes)(nil)

// Scopes lazily creates one provider controller and one prompt controller
// per application scope. Every controller shares the same backend.
type Scopes struct {
	backend  driven.Backend
	notifier driven.Notifier
	opts     ProviderSwitchOptions

	mu        sync.Mutex
	providers map[domain.AppType]*ProviderSwitchService
	prompts   map[domain.AppType]*PromptService
}

// NewScopes creates a registry over backend.
func NewScopes(backend driven.Backend, notifier driven.Notifier, opts ProviderSwitchOptions) *Scopes {
	return &Scopes{
		backend:   backend,
		notifier:  notifier,
		opts:      opts,
		providers: make(map[domain.AppType]*ProviderSwitchService),
		prompts:   make(map[domain.AppType]*PromptService),
	}
}

// Providers returns the provider controller of app.
func (s *Scopes) Providers(app domain.AppType) (driving.ProviderSwitchController, error) {
	if !app.IsValid() {
		return nil, domain.ErrUnsupportedApp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.providers[app]
	if !ok {
		ctrl = NewProviderSwitchService(app, s.backend, s.notifier, s.opts)
		s.providers[app] = ctrl
	}
	return ctrl, nil
}

// Prompts returns the prompt controller of app.
func (s *Scopes) Prompts(app domain.AppType) (driving.PromptController, error) {
	if !app.IsValid() {
		return nil, domain.ErrUnsupportedApp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.prompts[app]
	if !ok {
		ctrl = NewPromptService(app, s.backend)
		s.prompts[app] = ctrl
	}
	return ctrl, nil
}
