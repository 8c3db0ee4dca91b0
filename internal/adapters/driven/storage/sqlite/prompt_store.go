package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// promptStore implements driven.PromptStore.
type promptStore struct {
	store *Store
}

var _ driven.PromptStore = (*promptStore)(nil)

const promptColumns = `id, app_type, name, content, description, enabled, created_at, updated_at`

// List returns every prompt of a scope.
func (s *promptStore) List(ctx context.Context, app domain.AppType) (domain.PromptSet, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+promptColumns+`
		FROM prompts WHERE app_type = ?
	`, app.String())
	if err != nil {
		return nil, fmt.Errorf("querying prompts: %w", err)
	}
	defer rows.Close()

	set := domain.PromptSet{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		set[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prompts: %w", err)
	}
	return set, nil
}

// Get retrieves a prompt by ID.
func (s *promptStore) Get(ctx context.Context, app domain.AppType, id string) (*domain.Prompt, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+promptColumns+`
		FROM prompts WHERE app_type = ? AND id = ?
	`, app.String(), id)

	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// GetEnabled returns the enabled prompt of a scope, or nil.
func (s *promptStore) GetEnabled(ctx context.Context, app domain.AppType) (*domain.Prompt, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+promptColumns+`
		FROM prompts WHERE app_type = ? AND enabled = 1
	`, app.String())

	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Upsert inserts or replaces a prompt. Saving an enabled prompt disables
// the rest of the scope in the same transaction.
func (s *promptStore) Upsert(ctx context.Context, prompt domain.Prompt) error {
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = time.Now()
	}
	if prompt.UpdatedAt.IsZero() {
		prompt.UpdatedAt = prompt.CreatedAt
	}

	return s.store.inTx(ctx, func(tx *sql.Tx) error {
		if prompt.Enabled {
			if _, err := tx.ExecContext(ctx,
				"UPDATE prompts SET enabled = 0 WHERE app_type = ? AND id != ?",
				prompt.AppType.String(), prompt.ID); err != nil {
				return fmt.Errorf("clearing enabled prompt: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO prompts (`+promptColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id, app_type) DO UPDATE SET
				name = excluded.name,
				content = excluded.content,
				description = excluded.description,
				enabled = excluded.enabled,
				updated_at = excluded.updated_at
		`, prompt.ID, prompt.AppType.String(), prompt.Name, prompt.Content,
			nullString(prompt.Description), boolToInt(prompt.Enabled),
			toMillis(prompt.CreatedAt), toMillis(prompt.UpdatedAt))
		if err != nil {
			return fmt.Errorf("saving prompt: %w", err)
		}
		return nil
	})
}

// Delete removes a prompt.
func (s *promptStore) Delete(ctx context.Context, app domain.AppType, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM prompts WHERE app_type = ? AND id = ?", app.String(), id)
	if err != nil {
		return fmt.Errorf("deleting prompt: %w", err)
	}
	return nil
}

// Enable marks id as the only enabled prompt of its scope.
func (s *promptStore) Enable(ctx context.Context, app domain.AppType, id string) error {
	return s.store.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := rowExists(ctx, tx,
			"SELECT 1 FROM prompts WHERE app_type = ? AND id = ?", app.String(), id)
		if err != nil {
			return fmt.Errorf("checking prompt: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET enabled = 0 WHERE app_type = ? AND enabled = 1", app.String()); err != nil {
			return fmt.Errorf("clearing enabled prompt: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET enabled = 1 WHERE app_type = ? AND id = ?", app.String(), id); err != nil {
			return fmt.Errorf("enabling prompt: %w", err)
		}
		return nil
	})
}

func scanPrompt(row rowScanner) (*domain.Prompt, error) {
	var (
		p                    domain.Prompt
		app                  string
		description          sql.NullString
		enabled              int
		createdAt, updatedAt int64
	)
	if err := row.Scan(&p.ID, &app, &p.Name, &p.Content, &description, &enabled,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning prompt: %w", err)
	}

	p.AppType = domain.AppType(app)
	p.Description = description.String
	p.Enabled = enabled == 1
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
