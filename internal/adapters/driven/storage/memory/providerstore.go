package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// Ensure ProviderStore implements the interface.
var _ driven.ProviderStore = (*ProviderStore)(nil)

type scopedKey struct {
	app domain.AppType
	id  string
}

// ProviderStore is an in-memory implementation of driven.ProviderStore.
type ProviderStore struct {
	mu        sync.RWMutex
	providers map[scopedKey]domain.Provider
}

// NewProviderStore creates a new in-memory provider store.
func NewProviderStore() *ProviderStore {
	return &ProviderStore{
		providers: make(map[scopedKey]domain.Provider),
	}
}

// List returns the providers of a scope in display order.
func (s *ProviderStore) List(_ context.Context, app domain.AppType) ([]domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Provider, 0)
	for key, p := range s.providers {
		if key.app == app {
			result = append(result, p.Clone())
		}
	}
	domain.SortProviders(result)
	return result, nil
}

// Get retrieves a provider by ID.
func (s *ProviderStore) Get(_ context.Context, app domain.AppType, id string) (*domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[scopedKey{app, id}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = p.Clone()
	return &p, nil
}

// GetCurrent returns the current provider of a scope, or nil.
func (s *ProviderStore) GetCurrent(_ context.Context, app domain.AppType) (*domain.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, p := range s.providers {
		if key.app == app && p.IsCurrent {
			p = p.Clone()
			return &p, nil
		}
	}
	return nil, nil
}

// Insert stores a new provider.
func (s *ProviderStore) Insert(_ context.Context, provider domain.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scopedKey{provider.AppType, provider.ID}
	if _, exists := s.providers[key]; exists {
		return domain.ErrAlreadyExists
	}
	if provider.IsCurrent {
		for k, p := range s.providers {
			if k.app == provider.AppType && p.IsCurrent {
				p.IsCurrent = false
				s.providers[k] = p
			}
		}
	}
	s.providers[key] = provider.Clone()
	return nil
}

// Update replaces provider fields, keeping the stored current flag.
func (s *ProviderStore) Update(_ context.Context, provider domain.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scopedKey{provider.AppType, provider.ID}
	existing, ok := s.providers[key]
	if !ok {
		return domain.ErrNotFound
	}
	updated := provider.Clone()
	updated.IsCurrent = existing.IsCurrent
	s.providers[key] = updated
	return nil
}

// Delete removes a provider.
func (s *ProviderStore) Delete(_ context.Context, app domain.AppType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, scopedKey{app, id})
	return nil
}

// SetCurrent marks id as the only current provider of its scope.
func (s *ProviderStore) SetCurrent(_ context.Context, app domain.AppType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[scopedKey{app, id}]; !ok {
		return domain.ErrNotFound
	}
	for key, p := range s.providers {
		if key.app == app {
			p.IsCurrent = key.id == id
			s.providers[key] = p
		}
	}
	return nil
}
