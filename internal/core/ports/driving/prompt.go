package driving

import (
	"context"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// PromptController owns the prompt presets of one scope.
type PromptController interface {
	// AppType returns the scope this controller manages.
	AppType() domain.AppType

	// Reload re-reads prompts and the live file content. The first call per
	// controller also triggers a best-effort auto-import.
	Reload(ctx context.Context) error

	// SavePrompt inserts or replaces the prompt stored under id.
	SavePrompt(ctx context.Context, id string, prompt domain.Prompt) error

	// DeletePrompt removes a prompt.
	DeletePrompt(ctx context.Context, id string) error

	// EnablePrompt makes id the only enabled prompt.
	EnablePrompt(ctx context.Context, id string) error

	// ToggleEnabled optimistically enables or disables id and rolls back the
	// whole local set if the backend rejects the change.
	ToggleEnabled(ctx context.Context, id string, enabled bool) error

	// ImportFromFile stores the live prompt file as a new prompt and returns its id.
	ImportFromFile(ctx context.Context) (string, error)

	// Prompts returns a copy of the local prompt set.
	Prompts() domain.PromptSet

	// CurrentFileContent returns the live prompt file content, if known.
	CurrentFileContent() (string, bool)

	// Loading reports whether a reload is in progress.
	Loading() bool
}

// ScopeRegistry hands out the controllers of each scope.
// Controllers are created once per scope and reused.
type ScopeRegistry interface {
	Providers(app domain.AppType) (ProviderSwitchController, error)
	Prompts(app domain.AppType) (PromptController, error)
}
