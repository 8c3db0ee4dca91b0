package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

const promptNameTimeLayout = "2006-01-02 15:04"

// ListPrompts returns every prompt in the scope keyed by id.
func (b *Backend) ListPrompts(ctx context.Context, app domain.AppType) (domain.PromptSet, error) {
	if err := checkApp(app); err != nil {
		return nil, err
	}
	prompts, err := b.prompts.List(ctx, app)
	if err != nil {
		return nil, storeError("listing prompts", err)
	}
	return prompts, nil
}

// GetLiveFileContent returns the live prompt file content. A missing file
// is reported as not found.
func (b *Backend) GetLiveFileContent(_ context.Context, app domain.AppType) (string, error) {
	if err := checkApp(app); err != nil {
		return "", err
	}
	content, ok, err := b.live.ReadPrompt(app)
	if err != nil {
		return "", syncError("reading live prompt file", err)
	}
	if !ok {
		return "", domain.NewBackendError(domain.KindNotFound, "", domain.ErrLiveFileEmpty)
	}
	return content, nil
}

// AutoImportPrompts stores a non-blank live prompt file as an enabled
// prompt when the scope has no prompts yet.
func (b *Backend) AutoImportPrompts(ctx context.Context, app domain.AppType) (int, error) {
	if err := checkApp(app); err != nil {
		return 0, err
	}

	existing, err := b.prompts.List(ctx, app)
	if err != nil {
		return 0, storeError("listing prompts", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	content, ok, err := b.live.ReadPrompt(app)
	if err != nil || !ok || strings.TrimSpace(content) == "" {
		if err != nil {
			logger.Debug("auto-import %s: %v", app, err)
		}
		return 0, nil
	}

	now := b.now()
	prompt := domain.Prompt{
		ID:          stampID("auto-imported", now, func(string) bool { return false }),
		AppType:     app,
		Name:        "Auto-imported " + now.Local().Format(promptNameTimeLayout),
		Content:     content,
		Description: "Automatically imported on first launch",
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.prompts.Upsert(ctx, prompt); err != nil {
		return 0, storeError("storing auto-imported prompt", err)
	}
	logger.Info("auto-imported %s prompt file as %s", app, prompt.ID)
	return 1, nil
}

// UpsertPrompt inserts or replaces the prompt stored under id. An enabled
// prompt is written to the live file.
func (b *Backend) UpsertPrompt(ctx context.Context, app domain.AppType, id string, prompt domain.Prompt) error {
	if err := checkApp(app); err != nil {
		return err
	}
	if id == "" {
		return domain.NewBackendError(domain.KindOther, "prompt id is required", domain.ErrInvalidInput)
	}

	now := b.now()
	prompt.ID = id
	prompt.AppType = app
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = now
	}
	prompt.UpdatedAt = now

	if err := b.prompts.Upsert(ctx, prompt); err != nil {
		return storeError(fmt.Sprintf("saving prompt %q", prompt.Name), err)
	}

	if prompt.Enabled && app.HasLiveConfig() {
		if err := b.live.WritePrompt(app, prompt.Content); err != nil {
			return syncError("writing live prompt file", err)
		}
	}
	return nil
}

// DeletePrompt removes a prompt. Enabled prompts cannot be deleted.
func (b *Backend) DeletePrompt(ctx context.Context, app domain.AppType, id string) error {
	if err := checkApp(app); err != nil {
		return err
	}

	stored, err := b.prompts.Get(ctx, app, id)
	if err != nil {
		return storeError(fmt.Sprintf("prompt %s", id), err)
	}
	if stored.Enabled {
		return domain.NewBackendError(domain.KindOther, "", domain.ErrPromptEnabled)
	}

	if err := b.prompts.Delete(ctx, app, id); err != nil {
		return storeError(fmt.Sprintf("deleting prompt %q", stored.Name), err)
	}
	return nil
}

// EnablePrompt makes id the only enabled prompt and writes it live.
//
// Hand edits to the live file are kept first: they are copied into the
// previously enabled prompt, or saved as a disabled backup prompt when
// nothing was enabled and no stored prompt has the same content.
func (b *Backend) EnablePrompt(ctx context.Context, app domain.AppType, id string) error {
	if err := checkApp(app); err != nil {
		return err
	}

	if _, err := b.prompts.Get(ctx, app, id); err != nil {
		return storeError(fmt.Sprintf("prompt %s", id), err)
	}

	if app.HasLiveConfig() {
		b.preserveLivePrompt(ctx, app)
	}

	if err := b.prompts.Enable(ctx, app, id); err != nil {
		return storeError(fmt.Sprintf("enabling prompt %s", id), err)
	}

	if !app.HasLiveConfig() {
		return nil
	}
	enabled, err := b.prompts.Get(ctx, app, id)
	if err != nil {
		return storeError(fmt.Sprintf("prompt %s", id), err)
	}
	if err := b.live.WritePrompt(app, enabled.Content); err != nil {
		return syncError("writing live prompt file", err)
	}
	logger.Debug("synced %s prompt %s to the live file", app, id)
	return nil
}

// preserveLivePrompt is best-effort; failures are logged.
func (b *Backend) preserveLivePrompt(ctx context.Context, app domain.AppType) {
	content, ok, err := b.live.ReadPrompt(app)
	if err != nil {
		logger.Warn("reading live %s prompt: %v", app, err)
		return
	}
	if !ok || strings.TrimSpace(content) == "" {
		return
	}

	now := b.now()

	enabled, err := b.prompts.GetEnabled(ctx, app)
	if err != nil {
		logger.Warn("reading enabled %s prompt: %v", app, err)
		return
	}
	if enabled != nil {
		enabled.Content = content
		enabled.UpdatedAt = now
		if err := b.prompts.Upsert(ctx, *enabled); err != nil {
			logger.Warn("backfilling prompt %s: %v", enabled.ID, err)
			return
		}
		logger.Info("backfilled live content into prompt %s", enabled.ID)
		return
	}

	all, err := b.prompts.List(ctx, app)
	if err != nil {
		logger.Warn("listing %s prompts: %v", app, err)
		return
	}
	trimmed := strings.TrimSpace(content)
	for _, p := range all {
		if strings.TrimSpace(p.Content) == trimmed {
			return
		}
	}

	backup := domain.Prompt{
		ID:          stampID("backup", now, func(id string) bool { _, ok := all[id]; return ok }),
		AppType:     app,
		Name:        "Original Prompt " + now.Local().Format(promptNameTimeLayout),
		Content:     content,
		Description: "Auto-backup of original prompt",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.prompts.Upsert(ctx, backup); err != nil {
		logger.Warn("saving backup prompt: %v", err)
		return
	}
	logger.Info("saved live %s prompt as %s", app, backup.ID)
}

// ImportPromptFromFile stores the live prompt file as a new disabled prompt
// and returns its id.
func (b *Backend) ImportPromptFromFile(ctx context.Context, app domain.AppType) (string, error) {
	if err := checkApp(app); err != nil {
		return "", err
	}

	content, ok, err := b.live.ReadPrompt(app)
	if err != nil {
		return "", syncError("reading live prompt file", err)
	}
	if !ok || strings.TrimSpace(content) == "" {
		return "", domain.NewBackendError(domain.KindOther, "", domain.ErrLiveFileEmpty)
	}

	existing, err := b.prompts.List(ctx, app)
	if err != nil {
		return "", storeError("listing prompts", err)
	}

	now := b.now()
	prompt := domain.Prompt{
		ID:          stampID("imported", now, func(id string) bool { _, ok := existing[id]; return ok }),
		AppType:     app,
		Name:        "Imported Prompt " + now.Local().Format(promptNameTimeLayout),
		Content:     content,
		Description: "Imported from existing config file",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.prompts.Upsert(ctx, prompt); err != nil {
		return "", storeError("storing imported prompt", err)
	}
	return prompt.ID, nil
}
