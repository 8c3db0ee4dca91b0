package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// Ensure PromptService implements the interface.
var _ driving.PromptController = (*PromptService)(nil)

// PromptService keeps the prompt presets of one scope in step with the
// backend and enforces the single-enabled rule on optimistic updates.
type PromptService struct {
	app     domain.AppType
	backend driven.PromptBackend

	// guard admits one mutation at a time.
	guard *semaphore.Weighted

	mu             sync.RWMutex
	prompts        domain.PromptSet
	fileContent    string
	hasFileContent bool
	loading        int

	// autoImported records scopes whose auto-import has been attempted by
	// this instance. It lives exactly as long as the controller.
	autoImported map[domain.AppType]bool
}

// NewPromptService creates a prompt controller for app.
func NewPromptService(app domain.AppType, backend driven.PromptBackend) *PromptService {
	return &PromptService{
		app:          app,
		backend:      backend,
		guard:        semaphore.NewWeighted(1),
		prompts:      domain.PromptSet{},
		autoImported: make(map[domain.AppType]bool),
	}
}

// AppType returns the scope this controller manages.
func (s *PromptService) AppType() domain.AppType {
	return s.app
}

// Reload re-reads prompts and the live file content.
//
// The first call attempts an auto-import. The attempt is recorded before
// the backend is called so a failing import is never retried. Import and
// live-content failures are logged, not returned.
func (s *PromptService) Reload(ctx context.Context) error {
	s.beginLoading()
	defer s.endLoading()

	if s.claimAutoImport() {
		n, err := s.backend.AutoImportPrompts(ctx, s.app)
		switch {
		case err != nil:
			logger.Warn("auto-import %s prompts: %v", s.app, err)
		case n > 0:
			logger.Info("auto-imported %d %s prompt(s)", n, s.app)
		}
	}

	prompts, listErr := s.backend.ListPrompts(ctx, s.app)

	content, contentErr := s.backend.GetLiveFileContent(ctx, s.app)
	if contentErr != nil {
		logger.Debug("live %s prompt content unavailable: %v", s.app, contentErr)
	}

	s.mu.Lock()
	if listErr == nil {
		if prompts == nil {
			prompts = domain.PromptSet{}
		}
		s.prompts = prompts.Clone()
	}
	if contentErr == nil {
		s.fileContent, s.hasFileContent = content, true
	} else {
		s.fileContent, s.hasFileContent = "", false
	}
	s.mu.Unlock()

	if listErr != nil {
		return fmt.Errorf("list %s prompts: %w", s.app, listErr)
	}
	return nil
}

// SavePrompt inserts or replaces the prompt stored under id.
func (s *PromptService) SavePrompt(ctx context.Context, id string, prompt domain.Prompt) error {
	if id == "" {
		return fmt.Errorf("%w: prompt id is required", domain.ErrInvalidInput)
	}
	prompt.ID = id
	prompt.AppType = s.app

	return s.exclusive(func() error {
		if err := s.backend.UpsertPrompt(ctx, s.app, id, prompt); err != nil {
			return fmt.Errorf("save prompt %s: %w", id, err)
		}
		return s.Reload(ctx)
	})
}

// DeletePrompt removes a prompt.
func (s *PromptService) DeletePrompt(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: prompt id is required", domain.ErrInvalidInput)
	}

	return s.exclusive(func() error {
		if err := s.backend.DeletePrompt(ctx, s.app, id); err != nil {
			return fmt.Errorf("delete prompt %s: %w", id, err)
		}
		return s.Reload(ctx)
	})
}

// EnablePrompt asks the backend to make id the only enabled prompt.
func (s *PromptService) EnablePrompt(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: prompt id is required", domain.ErrInvalidInput)
	}

	return s.exclusive(func() error {
		if err := s.backend.EnablePrompt(ctx, s.app, id); err != nil {
			return fmt.Errorf("enable prompt %s: %w", id, err)
		}
		return s.Reload(ctx)
	})
}

// ToggleEnabled applies the change locally first, then confirms it with
// the backend. If the backend rejects it, the whole pre-call set is restored.
func (s *PromptService) ToggleEnabled(ctx context.Context, id string, enabled bool) error {
	return s.exclusive(func() error {
		s.mu.Lock()
		target, ok := s.prompts[id]
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
		}
		snapshot := s.prompts.Clone()
		s.prompts = domain.ApplyEnabled(snapshot, id, enabled)
		s.mu.Unlock()

		var err error
		if enabled {
			err = s.backend.EnablePrompt(ctx, s.app, id)
		} else {
			target.Enabled = false
			err = s.backend.UpsertPrompt(ctx, s.app, id, target)
		}

		if err != nil {
			s.mu.Lock()
			s.prompts = snapshot
			s.mu.Unlock()
			logger.Debug("rolled back %s prompt toggle of %s: %v", s.app, id, err)
			return fmt.Errorf("toggle prompt %s: %w", id, err)
		}

		return s.Reload(ctx)
	})
}

// ImportFromFile stores the live prompt file as a new prompt.
func (s *PromptService) ImportFromFile(ctx context.Context) (string, error) {
	var id string
	err := s.exclusive(func() error {
		imported, err := s.backend.ImportPromptFromFile(ctx, s.app)
		if err != nil {
			return fmt.Errorf("import %s prompt from file: %w", s.app, err)
		}
		id = imported
		return s.Reload(ctx)
	})
	return id, err
}

// Prompts returns a copy of the local prompt set.
func (s *PromptService) Prompts() domain.PromptSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompts.Clone()
}

// CurrentFileContent returns the last fetched live prompt file content.
func (s *PromptService) CurrentFileContent() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileContent, s.hasFileContent
}

// Loading reports whether a reload is in progress.
func (s *PromptService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// claimAutoImport marks the scope as auto-imported and reports whether this
// call was the first.
func (s *PromptService) claimAutoImport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autoImported[s.app] {
		return false
	}
	s.autoImported[s.app] = true
	return true
}

func (s *PromptService) exclusive(fn func() error) error {
	if !s.guard.TryAcquire(1) {
		return fmt.Errorf("%s prompts: %w", s.app, domain.ErrOperationInProgress)
	}
	defer s.guard.Release(1)
	return fn()
}

func (s *PromptService) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *PromptService) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}
