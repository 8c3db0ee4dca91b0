package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// providerStore implements driven.ProviderStore.
type providerStore struct {
	store *Store
}

var _ driven.ProviderStore = (*providerStore)(nil)

const providerColumns = `id, app_type, name, settings_config, category, icon, icon_color, notes,
	sort_index, is_current, created_at`

// List returns the providers of a scope in display order.
func (s *providerStore) List(ctx context.Context, app domain.AppType) ([]domain.Provider, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+providerColumns+`
		FROM providers WHERE app_type = ?
		ORDER BY sort_index IS NULL, sort_index, created_at, id
	`, app.String())
	if err != nil {
		return nil, fmt.Errorf("querying providers: %w", err)
	}
	defer rows.Close()

	providers := make([]domain.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating providers: %w", err)
	}
	return providers, nil
}

// Get retrieves a provider by ID.
func (s *providerStore) Get(ctx context.Context, app domain.AppType, id string) (*domain.Provider, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+providerColumns+`
		FROM providers WHERE app_type = ? AND id = ?
	`, app.String(), id)

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

// GetCurrent returns the current provider of a scope, or nil.
func (s *providerStore) GetCurrent(ctx context.Context, app domain.AppType) (*domain.Provider, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+providerColumns+`
		FROM providers WHERE app_type = ? AND is_current = 1
	`, app.String())

	p, err := scanProvider(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Insert stores a new provider. Inserting a current provider clears the
// scope's previous current flag in the same transaction.
func (s *providerStore) Insert(ctx context.Context, provider domain.Provider) error {
	settingsJSON, err := marshalSettings(provider.Settings)
	if err != nil {
		return err
	}

	return s.store.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := rowExists(ctx, tx,
			"SELECT 1 FROM providers WHERE app_type = ? AND id = ?", provider.AppType.String(), provider.ID)
		if err != nil {
			return fmt.Errorf("checking provider: %w", err)
		}
		if exists {
			return domain.ErrAlreadyExists
		}

		if provider.IsCurrent {
			if _, err := tx.ExecContext(ctx,
				"UPDATE providers SET is_current = 0 WHERE app_type = ?", provider.AppType.String()); err != nil {
				return fmt.Errorf("clearing current provider: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO providers (`+providerColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, provider.ID, provider.AppType.String(), provider.Name, settingsJSON,
			nullString(provider.Category), nullString(provider.Icon), nullString(provider.IconColor),
			nullString(provider.Notes), nullSortIndex(provider.SortIndex),
			boolToInt(provider.IsCurrent), toMillis(provider.CreatedAt))
		if err != nil {
			return fmt.Errorf("inserting provider: %w", err)
		}
		return nil
	})
}

// Update replaces provider fields. The current flag and creation time are kept.
func (s *providerStore) Update(ctx context.Context, provider domain.Provider) error {
	settingsJSON, err := marshalSettings(provider.Settings)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE providers SET
			name = ?, settings_config = ?, category = ?, icon = ?, icon_color = ?,
			notes = ?, sort_index = ?
		WHERE app_type = ? AND id = ?
	`, provider.Name, settingsJSON, nullString(provider.Category), nullString(provider.Icon),
		nullString(provider.IconColor), nullString(provider.Notes), nullSortIndex(provider.SortIndex),
		provider.AppType.String(), provider.ID)
	if err != nil {
		return fmt.Errorf("updating provider: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating provider: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a provider.
func (s *providerStore) Delete(ctx context.Context, app domain.AppType, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM providers WHERE app_type = ? AND id = ?", app.String(), id)
	if err != nil {
		return fmt.Errorf("deleting provider: %w", err)
	}
	return nil
}

// SetCurrent marks id as the only current provider of its scope.
func (s *providerStore) SetCurrent(ctx context.Context, app domain.AppType, id string) error {
	return s.store.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := rowExists(ctx, tx,
			"SELECT 1 FROM providers WHERE app_type = ? AND id = ?", app.String(), id)
		if err != nil {
			return fmt.Errorf("checking provider: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE providers SET is_current = 0 WHERE app_type = ? AND is_current = 1", app.String()); err != nil {
			return fmt.Errorf("clearing current provider: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE providers SET is_current = 1 WHERE app_type = ? AND id = ?", app.String(), id); err != nil {
			return fmt.Errorf("setting current provider: %w", err)
		}
		return nil
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*domain.Provider, error) {
	var (
		p                                domain.Provider
		app, settingsJSON                string
		category, icon, iconColor, notes sql.NullString
		sortIndex                        sql.NullInt64
		isCurrent                        int
		createdAt                        int64
	)
	if err := row.Scan(&p.ID, &app, &p.Name, &settingsJSON, &category, &icon, &iconColor,
		&notes, &sortIndex, &isCurrent, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning provider: %w", err)
	}

	if err := json.Unmarshal([]byte(settingsJSON), &p.Settings); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}

	p.AppType = domain.AppType(app)
	p.Category = category.String
	p.Icon = icon.String
	p.IconColor = iconColor.String
	p.Notes = notes.String
	if sortIndex.Valid {
		idx := int(sortIndex.Int64)
		p.SortIndex = &idx
	}
	p.IsCurrent = isCurrent == 1
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func marshalSettings(settings map[string]any) (string, error) {
	if settings == nil {
		return "{}", nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("marshalling settings: %w", err)
	}
	return string(data), nil
}

func nullSortIndex(idx *int) sql.NullInt64 {
	if idx == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*idx), Valid: true}
}
