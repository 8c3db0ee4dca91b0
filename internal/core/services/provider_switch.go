package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// Ensure ProviderSwitchService implements the interface.
var _ driving.ProviderSwitchController = (*ProviderSwitchService)(nil)

// ProviderSwitchOptions tunes a ProviderSwitchService.
type ProviderSwitchOptions struct {
	// SyncFailureHint is appended to file-sync failure notifications.
	SyncFailureHint string

	// NewID generates provider ids. Defaults to uuid.NewString.
	NewID func() string

	// Now stamps CreatedAt on added providers. Defaults to time.Now.
	Now func() time.Time
}

// ProviderSwitchService keeps the provider list of one scope in step with
// the backend. Every successful mutation is followed by a refresh; a failed
// switch is followed by a refresh as well because it may have partially applied.
type ProviderSwitchService struct {
	app      domain.AppType
	backend  driven.ProviderBackend
	notifier driven.Notifier
	opts     ProviderSwitchOptions

	// guard admits one mutation at a time.
	guard *semaphore.Weighted

	mu        sync.RWMutex
	providers []domain.Provider
	current   *domain.Provider
	loading   int
	lastError string
}

// NewProviderSwitchService creates a provider controller for app.
// The notifier is optional.
func NewProviderSwitchService(
	app domain.AppType,
	backend driven.ProviderBackend,
	notifier driven.Notifier,
	opts ProviderSwitchOptions,
) *ProviderSwitchService {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ProviderSwitchService{
		app:      app,
		backend:  backend,
		notifier: notifier,
		opts:     opts,
		guard:    semaphore.NewWeighted(1),
	}
}

// AppType returns the scope this controller manages.
func (s *ProviderSwitchService) AppType() domain.AppType {
	return s.app
}

// Refresh fetches the provider list and the current provider concurrently
// and replaces local state only if both succeed.
func (s *ProviderSwitchService) Refresh(ctx context.Context) error {
	s.beginLoading()
	defer s.endLoading()

	var (
		providers []domain.Provider
		current   *domain.Provider
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.backend.ListProviders(gctx, s.app)
		if err != nil {
			return fmt.Errorf("list providers: %w", err)
		}
		providers = list
		return nil
	})
	g.Go(func() error {
		cur, err := s.backend.GetCurrentProvider(gctx, s.app)
		if err != nil {
			return fmt.Errorf("get current provider: %w", err)
		}
		current = cur
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		logger.Debug("refresh %s providers failed: %v", s.app, err)
		return err
	}

	currentID := ""
	if current != nil {
		c := *current
		c.IsCurrent = true
		current = &c
		currentID = c.ID
	}
	// The current pointer is authoritative for the flag.
	providers = domain.ApplyCurrent(providers, currentID)

	s.mu.Lock()
	s.providers = providers
	s.current = current
	s.lastError = ""
	s.mu.Unlock()

	logger.Debug("refreshed %s: %d providers, current=%q", s.app, len(providers), currentID)
	return nil
}

// Add creates a provider from draft. The backend must accept it before it
// appears locally.
//
// A failed refresh after a successful add still returns the stored provider
// alongside the error, so callers can tell the add was applied.
func (s *ProviderSwitchService) Add(ctx context.Context, draft domain.ProviderDraft) (domain.Provider, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return domain.Provider{}, fmt.Errorf("%w: provider name is required", domain.ErrInvalidInput)
	}

	var added domain.Provider
	err := s.exclusive(func() error {
		provider := domain.NewProvider(s.opts.NewID(), s.app, draft, s.opts.Now())
		if err := s.backend.AddProvider(ctx, provider); err != nil {
			return fmt.Errorf("add provider: %w", err)
		}
		added = provider
		if err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh after adding provider %s: %w", provider.ID, err)
		}
		return nil
	})
	return added, err
}

// Update sends the full provider record to the backend.
func (s *ProviderSwitchService) Update(ctx context.Context, provider domain.Provider) error {
	if provider.ID == "" {
		return fmt.Errorf("%w: provider id is required", domain.ErrInvalidInput)
	}
	if provider.AppType == "" {
		provider.AppType = s.app
	}
	if provider.AppType != s.app {
		return fmt.Errorf("%w: provider belongs to %s, not %s", domain.ErrInvalidInput, provider.AppType, s.app)
	}

	return s.exclusive(func() error {
		if err := s.backend.UpdateProvider(ctx, provider); err != nil {
			return fmt.Errorf("update provider %s: %w", provider.ID, err)
		}
		return s.Refresh(ctx)
	})
}

// Delete removes a provider. Whether the current provider may be deleted
// is the backend's decision.
func (s *ProviderSwitchService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: provider id is required", domain.ErrInvalidInput)
	}

	return s.exclusive(func() error {
		if err := s.backend.DeleteProvider(ctx, s.app, id); err != nil {
			return fmt.Errorf("delete provider %s: %w", id, err)
		}
		return s.Refresh(ctx)
	})
}

// SwitchTo makes id the current provider.
//
// On backend failure the error is categorised and announced, local state is
// refreshed regardless, and the original error is returned.
func (s *ProviderSwitchService) SwitchTo(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: provider id is required", domain.ErrInvalidInput)
	}

	return s.exclusive(func() error {
		s.notify(domain.NotifyLoading, domain.KindNone, fmt.Sprintf("Switching %s provider...", s.app))

		if err := s.backend.SwitchProvider(ctx, s.app, id); err != nil {
			kind, detail := domain.ClassifyError(err)
			s.notify(domain.NotifyError, kind, s.switchFailureMessage(kind, id, detail))

			if rerr := s.Refresh(ctx); rerr != nil {
				logger.Warn("resync after failed %s switch to %s: %v", s.app, id, rerr)
			}
			return fmt.Errorf("switch %s provider to %s: %w", s.app, id, err)
		}

		if err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh after switch: %w", err)
		}

		name := id
		if cur := s.CurrentProvider(); cur != nil && cur.Name != "" {
			name = cur.Name
		}
		s.notify(domain.NotifySuccess, domain.KindNone, fmt.Sprintf("Switched %s to %s", s.app, name))
		logger.Info("switched %s provider to %s", s.app, id)
		return nil
	})
}

// switchFailureMessage renders the user-facing text for a failed switch.
func (s *ProviderSwitchService) switchFailureMessage(kind domain.ErrorKind, id, detail string) string {
	switch kind {
	case domain.KindNotFound:
		return fmt.Sprintf("Provider not found: %s", id)
	case domain.KindSyncFailure:
		msg := "Failed to sync configuration file"
		if detail != "" {
			msg += ": " + detail
		}
		if s.opts.SyncFailureHint != "" {
			msg += " (" + s.opts.SyncFailureHint + ")"
		}
		return msg
	case domain.KindPermissionDenied:
		return "Permission denied: cannot write the configuration file"
	default:
		return failureMessage("Failed to switch provider", detail)
	}
}

// failureMessage appends detail to msg when there is one.
func failureMessage(msg, detail string) string {
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}

// CheckConfigSync asks the backend for a drift report. Nothing is mutated.
func (s *ProviderSwitchService) CheckConfigSync(ctx context.Context) (*domain.SyncCheckResult, error) {
	result, err := s.backend.CheckConfigSync(ctx, s.app)
	if err != nil {
		kind, detail := domain.ClassifyError(err)
		s.notify(domain.NotifyError, kind, failureMessage("Failed to check configuration sync", detail))
		return nil, fmt.Errorf("check %s config sync: %w", s.app, err)
	}
	return result, nil
}

// SyncFromExternal imports the live configuration and refreshes.
func (s *ProviderSwitchService) SyncFromExternal(ctx context.Context) (string, error) {
	var summary string
	err := s.exclusive(func() error {
		out, err := s.backend.SyncFromExternal(ctx, s.app)
		if err != nil {
			kind, detail := domain.ClassifyError(err)
			s.notify(domain.NotifyError, kind, failureMessage("Failed to sync from external configuration", detail))
			return fmt.Errorf("sync %s from external: %w", s.app, err)
		}
		if err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh after external sync: %w", err)
		}
		summary = out
		s.notify(domain.NotifySuccess, domain.KindNone, out)
		return nil
	})
	return summary, err
}

// Providers returns a copy of the last reconciled provider list.
func (s *ProviderSwitchService) Providers() []domain.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// CurrentProvider returns a copy of the current provider, or nil.
func (s *ProviderSwitchService) CurrentProvider() *domain.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Loading reports whether a refresh is in progress.
func (s *ProviderSwitchService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// LastError returns the message of the last failed refresh.
func (s *ProviderSwitchService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// exclusive runs fn unless another mutation is already in flight.
func (s *ProviderSwitchService) exclusive(fn func() error) error {
	if !s.guard.TryAcquire(1) {
		return fmt.Errorf("%s providers: %w", s.app, domain.ErrOperationInProgress)
	}
	defer s.guard.Release(1)
	return fn()
}

func (s *ProviderSwitchService) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *ProviderSwitchService) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *ProviderSwitchService) notify(level domain.NotificationLevel, kind domain.ErrorKind, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Notification{
		Level:   level,
		AppType: s.app,
		Message: msg,
		Kind:    kind,
	})
}
