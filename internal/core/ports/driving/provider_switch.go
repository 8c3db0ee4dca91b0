package driving

import (
	"context"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// ProviderSwitchController owns the provider list of one scope and the
// identity of its current provider.
type ProviderSwitchController interface {
	// AppType returns the scope this controller manages.
	AppType() domain.AppType

	// Refresh re-reads the provider list and the current provider.
	// On failure the previous state is kept and the error is recorded.
	Refresh(ctx context.Context) error

	// Add creates a provider from draft. Nothing changes locally until the
	// backend has accepted it. If only the follow-up refresh fails, the
	// stored provider is returned together with the error.
	Add(ctx context.Context, draft domain.ProviderDraft) (domain.Provider, error)

	// Update replaces a provider.
	Update(ctx context.Context, provider domain.Provider) error

	// Delete removes a provider.
	Delete(ctx context.Context, id string) error

	// SwitchTo makes id the current provider. A failed switch still
	// resynchronises local state before the error is returned.
	SwitchTo(ctx context.Context, id string) error

	// CheckConfigSync reports drift between the store and the live file.
	CheckConfigSync(ctx context.Context) (*domain.SyncCheckResult, error)

	// SyncFromExternal imports the live file and returns the backend summary.
	SyncFromExternal(ctx context.Context) (string, error)

	// Providers returns a copy of the last reconciled provider list.
	Providers() []domain.Provider

	// CurrentProvider returns a copy of the current provider, or nil.
	CurrentProvider() *domain.Provider

	// Loading reports whether a refresh is in progress.
	Loading() bool

	// LastError returns the message of the last failed refresh, or "".
	LastError() string
}
