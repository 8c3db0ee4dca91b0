package driven

import (
	"context"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// ProviderStore persists providers. Used by the local backend.
type ProviderStore interface {
	// List returns the providers of a scope ordered by sort index then creation time.
	List(ctx context.Context, app domain.AppType) ([]domain.Provider, error)

	// Get retrieves a provider. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, app domain.AppType, id string) (*domain.Provider, error)

	// GetCurrent returns the current provider, or nil if none is current.
	GetCurrent(ctx context.Context, app domain.AppType) (*domain.Provider, error)

	// Insert stores a new provider. Returns domain.ErrAlreadyExists on id clash.
	// Inserting a current provider clears the scope's previous current flag.
	Insert(ctx context.Context, provider domain.Provider) error

	// Update replaces provider fields. The current flag is not changed.
	// Returns domain.ErrNotFound if absent.
	Update(ctx context.Context, provider domain.Provider) error

	// Delete removes a provider. Deleting an absent provider is not an error.
	Delete(ctx context.Context, app domain.AppType, id string) error

	// SetCurrent atomically clears the scope's current flag and sets it on id.
	// Returns domain.ErrNotFound if id is absent, leaving the scope unchanged.
	SetCurrent(ctx context.Context, app domain.AppType, id string) error
}

// PromptStore persists prompts. Used by the local backend.
type PromptStore interface {
	// List returns every prompt of a scope.
	List(ctx context.Context, app domain.AppType) (domain.PromptSet, error)

	// Get retrieves a prompt. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, app domain.AppType, id string) (*domain.Prompt, error)

	// GetEnabled returns the enabled prompt, or nil if none is enabled.
	GetEnabled(ctx context.Context, app domain.AppType) (*domain.Prompt, error)

	// Upsert inserts or replaces a prompt. CreatedAt of an existing row is kept.
	// Saving an enabled prompt disables every other prompt of the scope.
	Upsert(ctx context.Context, prompt domain.Prompt) error

	// Delete removes a prompt. Deleting an absent prompt is not an error.
	Delete(ctx context.Context, app domain.AppType, id string) error

	// Enable atomically clears the scope's enabled flags and sets it on id.
	// Returns domain.ErrNotFound if id is absent, leaving the scope unchanged.
	Enable(ctx context.Context, app domain.AppType, id string) error
}
