package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/livefile"
	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// Values used when the live configuration is imported as a provider.
const (
	DefaultProviderID   = "default"
	defaultProviderName = "Default (Imported)"
	importedCategory    = "custom"
	importedIconColor   = "#6366f1"
	importedNotes       = "Imported from existing configuration"
)

// ListProviders returns every provider in the scope.
func (b *Backend) ListProviders(ctx context.Context, app domain.AppType) ([]domain.Provider, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}
	providers, err := b.providers.List(ctx, app)
	if err != nil {
		return nil, storeError("listing providers", err)
	}
	return providers, nil
}

// GetCurrentProvider returns the current provider, or nil.
func (b *Backend) GetCurrentProvider(ctx context.Context, app domain.AppType) (*domain.Provider, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}
	current, err := b.providers.GetCurrent(ctx, app)
	if err != nil {
		return nil, storeError("reading current provider", err)
	}
	return current, nil
}

// AddProvider stores provider. The first provider of a scope becomes
// current and is written live.
func (b *Backend) AddProvider(ctx context.Context, provider domain.Provider) error {
	app := provider.AppType
	if err := checkApp(app); err != nil {
		return err
	}

	existing, err := b.providers.List(ctx, app)
	if err != nil {
		return storeError("listing providers", err)
	}
	provider.IsCurrent = len(existing) == 0
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = b.now()
	}

	if err := b.providers.Insert(ctx, provider); err != nil {
		return storeError(fmt.Sprintf("adding provider %q", provider.Name), err)
	}

	if provider.IsCurrent && app.HasLiveConfig() {
		logger.Info("first %s provider %q is now current", app, provider.Name)
		if err := b.live.WriteSettings(app, provider.Settings); err != nil {
			return syncError("writing live configuration", err)
		}
	}
	return nil
}

// UpdateProvider replaces a provider. Updating the current provider
// rewrites the live configuration.
func (b *Backend) UpdateProvider(ctx context.Context, provider domain.Provider) error {
	app := provider.AppType
	if err := checkApp(app); err != nil {
		return err
	}

	stored, err := b.providers.Get(ctx, app, provider.ID)
	if err != nil {
		return storeError(fmt.Sprintf("provider %s", provider.ID), err)
	}
	provider.IsCurrent = stored.IsCurrent
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = stored.CreatedAt
	}

	if err := b.providers.Update(ctx, provider); err != nil {
		return storeError(fmt.Sprintf("updating provider %q", provider.Name), err)
	}

	if provider.IsCurrent && app.HasLiveConfig() {
		if err := b.live.WriteSettings(app, provider.Settings); err != nil {
			return syncError("writing live configuration", err)
		}
	}
	return nil
}

// DeleteProvider removes a provider. The current provider cannot be deleted.
func (b *Backend) DeleteProvider(ctx context.Context, app domain.AppType, id string) error {
	if err := checkApp(app); err != nil {
		return err
	}

	stored, err := b.providers.Get(ctx, app, id)
	if err != nil {
		return storeError(fmt.Sprintf("provider %s", id), err)
	}
	if stored.IsCurrent {
		return domain.NewBackendError(domain.KindOther, "", domain.ErrProviderInUse)
	}

	if err := b.providers.Delete(ctx, app, id); err != nil {
		return storeError(fmt.Sprintf("deleting provider %q", stored.Name), err)
	}
	return nil
}

// SwitchProvider makes id current and writes it live.
//
// The outgoing provider first absorbs any hand edits from the live file.
// If writing the target or recording the switch fails, the outgoing
// provider's configuration is written back.
func (b *Backend) SwitchProvider(ctx context.Context, app domain.AppType, id string) error {
	if err := checkApp(app); err != nil {
		return err
	}

	target, err := b.providers.Get(ctx, app, id)
	if err != nil {
		return storeError(fmt.Sprintf("provider %s", id), err)
	}

	if !app.HasLiveConfig() {
		if err := b.providers.SetCurrent(ctx, app, id); err != nil {
			return storeError("setting current provider", err)
		}
		return nil
	}

	current, err := b.providers.GetCurrent(ctx, app)
	if err != nil {
		return storeError("reading current provider", err)
	}
	if current != nil && current.ID != target.ID {
		b.backfill(ctx, current)
	}

	if err := b.live.WriteSettings(app, target.Settings); err != nil {
		return b.restore(app, current, syncError("writing live configuration", err))
	}
	if err := b.providers.SetCurrent(ctx, app, id); err != nil {
		return b.restore(app, current, storeError("setting current provider", err))
	}

	logger.Info("switched %s to %q", app, target.Name)
	return nil
}

// backfill copies the live configuration into provider. Failures are logged
// because they must not block the switch.
func (b *Backend) backfill(ctx context.Context, provider *domain.Provider) {
	live, err := b.live.ReadSettings(provider.AppType)
	if err != nil {
		logger.Warn("backfill %s: reading live configuration: %v", provider.Name, err)
		return
	}
	if livefile.DetectProvider(provider.AppType, live) == domain.UnknownProvider {
		logger.Debug("backfill %s: live configuration not recognised, skipping", provider.Name)
		return
	}

	provider.Settings = live
	if err := b.providers.Update(ctx, *provider); err != nil {
		logger.Warn("backfill %s: %v", provider.Name, err)
		return
	}
	logger.Debug("backfilled %s from live configuration", provider.Name)
}

// restore writes previous back to the live file after a failed switch.
func (b *Backend) restore(app domain.AppType, previous *domain.Provider, cause error) error {
	if previous == nil {
		return cause
	}
	if err := b.live.WriteSettings(app, previous.Settings); err != nil {
		logger.Error("restoring %s live configuration: %v", app, err)
		return domain.NewBackendError(domain.KindSyncFailure,
			"switch failed and the previous configuration could not be restored",
			errors.Join(cause, err))
	}
	logger.Warn("switch failed, restored %q to the live configuration", previous.Name)
	return cause
}

// CheckConfigSync compares the current provider with the live file.
//
// Both sides are attributed to a provider family from their credentials.
// Matching families are then compared field by field.
func (b *Backend) CheckConfigSync(ctx context.Context, app domain.AppType) (*domain.SyncCheckResult, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}

	result := &domain.SyncCheckResult{
		Status:           domain.SyncStatusInSync,
		CurrentProvider:  domain.UnknownProvider,
		ExternalProvider: domain.UnknownProvider,
	}
	if !app.HasLiveConfig() {
		return result, nil
	}

	current, err := b.providers.GetCurrent(ctx, app)
	if err != nil {
		return nil, storeError("reading current provider", err)
	}
	var local map[string]any
	if current != nil {
		local = current.Settings
		result.CurrentProvider = livefile.DetectProvider(app, local)
	}

	if mod, ok := b.live.LastModified(app); ok {
		result.LastModified = &mod
	}

	live, err := b.live.ReadSettings(app)
	if err != nil {
		logger.Debug("check %s: reading live configuration: %v", app, err)
		result.Status = domain.SyncStatusOutOfSync
		return result, nil
	}
	result.ExternalProvider = livefile.DetectProvider(app, live)

	switch {
	case result.CurrentProvider == result.ExternalProvider:
		result.Conflicts = livefile.DiffCredentials(app, local, live)
		if len(result.Conflicts) > 0 {
			result.Status = domain.SyncStatusOutOfSync
		}
	case result.ExternalProvider == domain.UnknownProvider:
		result.Status = domain.SyncStatusOutOfSync
	default:
		result.Status = domain.SyncStatusConflict
		result.Conflicts = []domain.ConfigConflict{{
			Field:         "provider",
			LocalValue:    result.CurrentProvider,
			ExternalValue: result.ExternalProvider,
		}}
	}
	return result, nil
}

// SyncFromExternal imports the live configuration.
//
// An empty scope gets a "Default (Imported)" provider. Otherwise the
// current provider absorbs the live settings, or a new current provider is
// created when none is current.
func (b *Backend) SyncFromExternal(ctx context.Context, app domain.AppType) (string, error) {
	if err := checkApp(app); err != nil {
		return "", err
	}
	if !app.HasLiveConfig() {
		return "", domain.NewBackendError(domain.KindOther,
			fmt.Sprintf("%s has no live configuration", app), domain.ErrInvalidInput)
	}

	live, err := b.live.ReadSettings(app)
	if err != nil {
		return "", syncError("reading live configuration", err)
	}
	family := livefile.DetectProvider(app, live)
	if family == domain.UnknownProvider {
		return "", domain.NewBackendError(domain.KindOther, "", domain.ErrUnknownExternalProvider)
	}

	providers, err := b.providers.List(ctx, app)
	if err != nil {
		return "", storeError("listing providers", err)
	}
	if len(providers) == 0 {
		if err := b.insertImported(ctx, app, DefaultProviderID, defaultProviderName, live); err != nil {
			return "", err
		}
		return fmt.Sprintf("Imported %s configuration as %q", family, defaultProviderName), nil
	}

	current, err := b.providers.GetCurrent(ctx, app)
	if err != nil {
		return "", storeError("reading current provider", err)
	}
	if current == nil {
		taken := make(map[string]bool, len(providers))
		for _, p := range providers {
			taken[p.ID] = true
		}
		id := stampID("imported", b.now(), func(id string) bool { return taken[id] })
		name := fmt.Sprintf("Imported (%s)", family)
		if err := b.insertImported(ctx, app, id, name, live); err != nil {
			return "", err
		}
		return fmt.Sprintf("Imported %s configuration as %q", family, name), nil
	}

	current.Settings = live
	if err := b.providers.Update(ctx, *current); err != nil {
		return "", storeError(fmt.Sprintf("updating provider %q", current.Name), err)
	}
	return fmt.Sprintf("Updated %q from live %s configuration", current.Name, family), nil
}

// ImportDefaultConfig stores the live configuration as the current
// provider when the scope has no providers yet. It reports whether a
// provider was created.
func (b *Backend) ImportDefaultConfig(ctx context.Context, app domain.AppType) (bool, error) {
	if err := checkApp(app); err != nil {
		return false, err
	}
	if !app.HasLiveConfig() {
		return false, nil
	}

	providers, err := b.providers.List(ctx, app)
	if err != nil {
		return false, storeError("listing providers", err)
	}
	if len(providers) > 0 {
		return false, nil
	}

	live, err := b.live.ReadSettings(app)
	if err != nil {
		return false, syncError("reading live configuration", err)
	}
	if livefile.DetectProvider(app, live) == domain.UnknownProvider {
		return false, nil
	}
	if err := b.insertImported(ctx, app, DefaultProviderID, defaultProviderName, live); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Backend) insertImported(ctx context.Context, app domain.AppType, id, name string, settings map[string]any) error {
	zero := 0
	provider := domain.Provider{
		ID:        id,
		AppType:   app,
		Name:      name,
		Settings:  settings,
		Category:  importedCategory,
		IconColor: importedIconColor,
		Notes:     importedNotes,
		SortIndex: &zero,
		IsCurrent: true,
		CreatedAt: b.now(),
	}
	if err := b.providers.Insert(ctx, provider); err != nil {
		return storeError(fmt.Sprintf("importing %s configuration", app), err)
	}
	logger.Info("imported live %s configuration as %q", app, name)
	return nil
}
