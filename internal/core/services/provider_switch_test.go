package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSwitchService(backend *mockBackend, notifier driven.Notifier) *ProviderSwitchService {
	seq := 0
	return NewProviderSwitchService(domain.AppClaude, backend, notifier, ProviderSwitchOptions{
		SyncFailureHint: "check permissions",
		NewID: func() string {
			seq++
			return fmt.Sprintf("p-%d", seq)
		},
		Now: func() time.Time { return fixedNow },
	})
}

func seedProviders(backend *mockBackend, current string, ids ...string) {
	for i, id := range ids {
		backend.providers = append(backend.providers, domain.Provider{
			ID:        id,
			AppType:   domain.AppClaude,
			Name:      "Provider " + id,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Minute),
		})
	}
	backend.currentID = current
}

func TestProviderSwitchService_Refresh_NormalisesCurrentFlag(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "b", "a", "b")
	// The list claims a is current; the current query says b.
	backend.providers[0].IsCurrent = true
	service := newTestSwitchService(backend, nil)

	require.NoError(t, service.Refresh(context.Background()))

	providers := service.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, 1, domain.CurrentCount(providers))
	assert.False(t, providers[0].IsCurrent)
	assert.True(t, providers[1].IsCurrent)
	require.NotNil(t, service.CurrentProvider())
	assert.Equal(t, "b", service.CurrentProvider().ID)
	assert.True(t, service.CurrentProvider().IsCurrent)
	assert.False(t, service.Loading())
}

func TestProviderSwitchService_Refresh_Idempotent(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()

	require.NoError(t, service.Refresh(ctx))
	first, firstCurrent := service.Providers(), service.CurrentProvider()

	require.NoError(t, service.Refresh(ctx))
	assert.Equal(t, first, service.Providers())
	assert.Equal(t, firstCurrent, service.CurrentProvider())
}

func TestProviderSwitchService_Refresh_NoCurrent(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "", "a")
	service := newTestSwitchService(backend, nil)

	require.NoError(t, service.Refresh(context.Background()))

	assert.Nil(t, service.CurrentProvider())
	assert.Equal(t, 0, domain.CurrentCount(service.Providers()))
}

func TestProviderSwitchService_Refresh_FailureKeepsState(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()
	require.NoError(t, service.Refresh(ctx))
	before := service.Providers()

	backend.setErr("get_current_provider", errors.New("store offline"))
	err := service.Refresh(ctx)

	require.Error(t, err)
	assert.Contains(t, service.LastError(), "store offline")
	assert.Equal(t, before, service.Providers())
	assert.Equal(t, "a", service.CurrentProvider().ID)

	backend.setErr("get_current_provider", nil)
	require.NoError(t, service.Refresh(ctx))
	assert.Empty(t, service.LastError())
}

func TestProviderSwitchService_Add_Success(t *testing.T) {
	backend := newMockBackend()
	service := newTestSwitchService(backend, nil)

	added, err := service.Add(context.Background(), domain.ProviderDraft{
		Name:     "Anthropic",
		Settings: map[string]any{"env": map[string]any{"ANTHROPIC_API_KEY": "sk"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "p-1", added.ID)
	assert.Equal(t, domain.AppClaude, added.AppType)
	assert.Equal(t, fixedNow, added.CreatedAt)
	assert.False(t, added.IsCurrent)

	providers := service.Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, "Anthropic", providers[0].Name)
	assert.Less(t, backend.indexOf("add_provider"), backend.indexOf("list_providers"))
}

func TestProviderSwitchService_Add_FailureLeavesStateUntouched(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()
	require.NoError(t, service.Refresh(ctx))
	before := service.Providers()
	backend.resetCalls()

	backend.setErr("add_provider", errors.New("disk full"))
	_, err := service.Add(ctx, domain.ProviderDraft{Name: "New"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, before, service.Providers())
	assert.Equal(t, []string{"add_provider"}, backend.callLog())
}

func TestProviderSwitchService_Add_RefreshFailureReturnsStoredProvider(t *testing.T) {
	backend := newMockBackend()
	service := newTestSwitchService(backend, nil)
	backend.setErr("list_providers", errors.New("store offline"))

	added, err := service.Add(context.Background(), domain.ProviderDraft{Name: "Anthropic"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store offline")
	assert.Equal(t, "p-1", added.ID)
	assert.Equal(t, "Anthropic", added.Name)
	require.Len(t, backend.providers, 1)
	assert.Equal(t, added.ID, backend.providers[0].ID)
}

func TestProviderSwitchService_Add_RequiresName(t *testing.T) {
	backend := newMockBackend()
	service := newTestSwitchService(backend, nil)

	_, err := service.Add(context.Background(), domain.ProviderDraft{Name: "  "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, backend.callLog())
}

func TestProviderSwitchService_Update(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()

	updated := backend.providers[0]
	updated.Name = "Renamed"
	require.NoError(t, service.Update(ctx, updated))
	assert.Equal(t, "Renamed", service.Providers()[0].Name)

	backend.setErr("update_provider", errors.New("locked"))
	err := service.Update(ctx, updated)
	assert.ErrorContains(t, err, "locked")

	other := updated
	other.AppType = domain.AppCodex
	assert.ErrorIs(t, service.Update(ctx, other), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Update(ctx, domain.Provider{}), domain.ErrInvalidInput)
}

func TestProviderSwitchService_Delete(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, "b"))
	require.Len(t, service.Providers(), 1)

	backend.setErr("delete_provider", domain.NewBackendError(domain.KindOther, "", domain.ErrProviderInUse))
	err := service.Delete(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrProviderInUse)
	assert.Len(t, service.Providers(), 1)
}

func TestProviderSwitchService_SwitchTo_Success(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	notifier := &recordingNotifier{}
	service := newTestSwitchService(backend, notifier)
	ctx := context.Background()
	require.NoError(t, service.Refresh(ctx))

	require.NoError(t, service.SwitchTo(ctx, "b"))

	providers := service.Providers()
	assert.Equal(t, 1, domain.CurrentCount(providers))
	assert.False(t, providers[0].IsCurrent)
	assert.True(t, providers[1].IsCurrent)
	assert.Equal(t, "b", service.CurrentProvider().ID)

	assert.Equal(t, []domain.NotificationLevel{domain.NotifyLoading, domain.NotifySuccess}, notifier.levels())
	assert.Equal(t, "Switched claude to Provider b", notifier.all()[1].Message)
}

func TestProviderSwitchService_SwitchTo_PermissionDenied(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	notifier := &recordingNotifier{}
	service := newTestSwitchService(backend, notifier)
	ctx := context.Background()
	require.NoError(t, service.Refresh(ctx))
	backend.resetCalls()

	denied := domain.NewBackendError(domain.KindPermissionDenied, "settings.json", fs.ErrPermission)
	backend.setErr("switch_provider", denied)
	backend.switchAppliesOnError = true

	err := service.SwitchTo(ctx, "b")

	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
	assert.ErrorIs(t, err, fs.ErrPermission)

	// Local state was reconciled with the partially applied backend before returning.
	assert.Greater(t, backend.indexOf("list_providers"), backend.indexOf("switch_provider"))
	assert.Greater(t, backend.indexOf("get_current_provider"), backend.indexOf("switch_provider"))
	assert.Equal(t, "b", service.CurrentProvider().ID)

	sent := notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.NotifyError, sent[1].Level)
	assert.Equal(t, domain.KindPermissionDenied, sent[1].Kind)
	assert.Equal(t, "Permission denied: cannot write the configuration file", sent[1].Message)
}

func TestProviderSwitchService_SwitchTo_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
		want string
	}{
		{
			name: "not found",
			err:  domain.NewBackendError(domain.KindNotFound, "", domain.ErrNotFound),
			kind: domain.KindNotFound,
			want: "Provider not found: b",
		},
		{
			name: "bare not found sentinel",
			err:  fmt.Errorf("lookup: %w", domain.ErrNotFound),
			kind: domain.KindNotFound,
			want: "Provider not found: b",
		},
		{
			name: "sync failure",
			err:  domain.NewBackendError(domain.KindSyncFailure, "write settings.json", errors.New("rename failed")),
			kind: domain.KindSyncFailure,
			want: "Failed to sync configuration file: write settings.json (check permissions)",
		},
		{
			name: "other",
			err:  errors.New("database is locked"),
			kind: domain.KindOther,
			want: "Failed to switch provider: database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMockBackend()
			seedProviders(backend, "a", "a", "b")
			notifier := &recordingNotifier{}
			service := newTestSwitchService(backend, notifier)
			backend.setErr("switch_provider", tt.err)

			err := service.SwitchTo(context.Background(), "b")

			assert.ErrorIs(t, err, tt.err)
			sent := notifier.all()
			require.Len(t, sent, 2)
			assert.Equal(t, tt.kind, sent[1].Kind)
			assert.Equal(t, tt.want, sent[1].Message)
			assert.Equal(t, "a", service.CurrentProvider().ID)
		})
	}
}

func TestProviderSwitchService_SwitchTo_RefreshFailureAfterSwitchFailure(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	service := newTestSwitchService(backend, nil)
	switchErr := errors.New("write failed")
	backend.setErr("switch_provider", switchErr)
	backend.setErr("list_providers", errors.New("store offline"))

	err := service.SwitchTo(context.Background(), "b")

	assert.ErrorIs(t, err, switchErr)
	assert.Contains(t, service.LastError(), "store offline")
}

func TestProviderSwitchService_CheckConfigSync(t *testing.T) {
	backend := newMockBackend()
	notifier := &recordingNotifier{}
	service := newTestSwitchService(backend, notifier)
	ctx := context.Background()

	backend.syncResult = &domain.SyncCheckResult{
		Status:           domain.SyncStatusConflict,
		CurrentProvider:  "claude",
		ExternalProvider: "claude_oauth",
	}
	result, err := service.CheckConfigSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusConflict, result.Status)
	assert.Empty(t, notifier.all())

	backend.setErr("check_config_sync", errors.New("unreadable"))
	_, err = service.CheckConfigSync(ctx)
	require.Error(t, err)
	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Failed to check configuration sync: unreadable", sent[0].Message)
	assert.Zero(t, backend.count("list_providers"), "drift check never mutates local state")

	backend.setErr("check_config_sync", &domain.BackendError{Kind: domain.KindOther})
	_, err = service.CheckConfigSync(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to check configuration sync", notifier.all()[1].Message)
}

func TestProviderSwitchService_SyncFromExternal(t *testing.T) {
	backend := newMockBackend()
	notifier := &recordingNotifier{}
	service := newTestSwitchService(backend, notifier)
	ctx := context.Background()

	backend.syncFrom = "Imported live configuration as Default (Imported)"
	backend.setHook("sync_from_external", func() {
		seedProviders(backend, "d", "d")
	})

	summary, err := service.SyncFromExternal(ctx)

	require.NoError(t, err)
	assert.Equal(t, backend.syncFrom, summary)
	assert.Equal(t, "d", service.CurrentProvider().ID)
	sent := notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.NotifySuccess, sent[0].Level)
	assert.Equal(t, summary, sent[0].Message)

	backend.setHook("sync_from_external", nil)
	backend.setErr("sync_from_external", domain.ErrUnknownExternalProvider)
	_, err = service.SyncFromExternal(ctx)
	assert.ErrorIs(t, err, domain.ErrUnknownExternalProvider)
	assert.Equal(t, domain.NotifyError, notifier.all()[1].Level)

	backend.setErr("sync_from_external", &domain.BackendError{Kind: domain.KindOther})
	_, err = service.SyncFromExternal(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to sync from external configuration", notifier.all()[2].Message)
}

func TestProviderSwitchService_RejectsOverlappingMutations(t *testing.T) {
	backend := newMockBackend()
	seedProviders(backend, "a", "a", "b")
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	backend.setHook("switch_provider", func() {
		close(started)
		<-release
	})

	done := make(chan error, 1)
	go func() {
		done <- service.SwitchTo(ctx, "b")
	}()
	<-started

	_, err := service.Add(ctx, domain.ProviderDraft{Name: "Late"})
	assert.ErrorIs(t, err, domain.ErrOperationInProgress)
	assert.ErrorIs(t, service.Delete(ctx, "a"), domain.ErrOperationInProgress)

	// Reads are not guarded.
	assert.NoError(t, service.Refresh(ctx))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "b", service.CurrentProvider().ID)
	assert.Zero(t, backend.count("add_provider"))
}

func TestProviderSwitchService_InvariantAcrossOperations(t *testing.T) {
	backend := newMockBackend()
	service := newTestSwitchService(backend, nil)
	ctx := context.Background()

	a, err := service.Add(ctx, domain.ProviderDraft{Name: "A"})
	require.NoError(t, err)
	b, err := service.Add(ctx, domain.ProviderDraft{Name: "B"})
	require.NoError(t, err)

	steps := []func() error{
		func() error { return service.SwitchTo(ctx, a.ID) },
		func() error { return service.SwitchTo(ctx, b.ID) },
		func() error { return service.SwitchTo(ctx, "missing") },
		func() error { return service.Delete(ctx, a.ID) },
		func() error { return service.Refresh(ctx) },
	}
	for _, step := range steps {
		_ = step()
		assert.LessOrEqual(t, domain.CurrentCount(service.Providers()), 1)
	}
	assert.Equal(t, b.ID, service.CurrentProvider().ID)
}
