package driven

import (
	"context"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// ProviderBackend is the provider half of the backend command surface.
// Each call either fully applies or fails; failures should be reported as
// *domain.BackendError so callers can categorise them without reading text.
type ProviderBackend interface {
	// ListProviders returns every provider in the scope.
	ListProviders(ctx context.Context, app domain.AppType) ([]domain.Provider, error)

	// GetCurrentProvider returns the current provider, or nil if none is current.
	GetCurrentProvider(ctx context.Context, app domain.AppType) (*domain.Provider, error)

	// AddProvider stores a fully-formed provider. The id is caller-generated.
	AddProvider(ctx context.Context, provider domain.Provider) error

	// UpdateProvider replaces the stored record for provider.ID.
	UpdateProvider(ctx context.Context, provider domain.Provider) error

	// DeleteProvider removes a provider from the scope.
	DeleteProvider(ctx context.Context, app domain.AppType, id string) error

	// SwitchProvider makes id the current provider and writes it live.
	// It may partially apply on failure.
	SwitchProvider(ctx context.Context, app domain.AppType, id string) error

	// CheckConfigSync compares stored state with the live file. Read-only.
	CheckConfigSync(ctx context.Context, app domain.AppType) (*domain.SyncCheckResult, error)

	// SyncFromExternal imports the live file into the store and returns a
	// human-readable summary.
	SyncFromExternal(ctx context.Context, app domain.AppType) (string, error)
}

// PromptBackend is the prompt half of the backend command surface.
type PromptBackend interface {
	// ListPrompts returns every prompt in the scope keyed by id.
	ListPrompts(ctx context.Context, app domain.AppType) (domain.PromptSet, error)

	// GetLiveFileContent returns the live prompt file content.
	GetLiveFileContent(ctx context.Context, app domain.AppType) (string, error)

	// AutoImportPrompts ingests the live prompt file when the scope has no
	// prompts yet and returns the number imported.
	AutoImportPrompts(ctx context.Context, app domain.AppType) (int, error)

	// UpsertPrompt inserts or replaces the prompt stored under id.
	UpsertPrompt(ctx context.Context, app domain.AppType, id string, prompt domain.Prompt) error

	// DeletePrompt removes a prompt.
	DeletePrompt(ctx context.Context, app domain.AppType, id string) error

	// EnablePrompt enables id and clears every other enabled flag in the scope.
	EnablePrompt(ctx context.Context, app domain.AppType, id string) error

	// ImportPromptFromFile stores the live prompt file as a new prompt and
	// returns its id.
	ImportPromptFromFile(ctx context.Context, app domain.AppType) (string, error)
}

// Backend is the complete command surface.
type Backend interface {
	ProviderBackend
	PromptBackend
}
