package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore is an in-memory implementation of driven.PromptStore.
type PromptStore struct {
	mu     sync.RWMutex
	scopes map[domain.AppType]domain.PromptSet
}

// NewPromptStore creates a new in-memory prompt store.
func NewPromptStore() *PromptStore {
	return &PromptStore{
		scopes: make(map[domain.AppType]domain.PromptSet),
	}
}

// List returns every prompt of a scope.
func (s *PromptStore) List(_ context.Context, app domain.AppType) (domain.PromptSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[app].Clone(), nil
}

// Get retrieves a prompt by ID.
func (s *PromptStore) Get(_ context.Context, app domain.AppType, id string) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.scopes[app][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// GetEnabled returns the enabled prompt of a scope, or nil.
func (s *PromptStore) GetEnabled(_ context.Context, app domain.AppType) (*domain.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.scopes[app].Enabled()
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Upsert inserts or replaces a prompt, keeping the original creation time.
// Saving an enabled prompt disables the rest of the scope.
func (s *PromptStore) Upsert(_ context.Context, prompt domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.scopes[prompt.AppType]
	if !ok {
		set = domain.PromptSet{}
	}
	if existing, ok := set[prompt.ID]; ok && !existing.CreatedAt.IsZero() {
		prompt.CreatedAt = existing.CreatedAt
	}
	set[prompt.ID] = prompt
	if prompt.Enabled {
		set = domain.ApplyEnabled(set, prompt.ID, true)
	}
	s.scopes[prompt.AppType] = set
	return nil
}

// Delete removes a prompt.
func (s *PromptStore) Delete(_ context.Context, app domain.AppType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes[app], id)
	return nil
}

// Enable marks id as the only enabled prompt of its scope.
func (s *PromptStore) Enable(_ context.Context, app domain.AppType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.scopes[app]
	if _, ok := set[id]; !ok {
		return domain.ErrNotFound
	}
	s.scopes[app] = domain.ApplyEnabled(set, id, true)
	return nil
}
