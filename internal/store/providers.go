package store

import (
	"context"
	"database/sql"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

const providerColumns = `id, model_id, name, provider, active`

func scanProvider(scanner interface{ Scan(dest ...any) error }) (*domain.ModelProvider, error) {
	var p domain.ModelProvider
	err := scanner.Scan(&p.ID, &p.ModelID, &p.Name, &p.Provider, &p.Active)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProviders returns model providers grouped by provider then name.
// With activeOnly, disabled entries are filtered out, which is what the
// GUI's model picker wants; the settings screen lists everything.
func (s *Store) ListProviders(ctx context.Context, activeOnly bool) ([]*domain.ModelProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM model_providers ORDER BY provider, name`
	if activeOnly {
		query = `SELECT ` + providerColumns + ` FROM model_providers WHERE active = 1 ORDER BY provider, name`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	var providers []*domain.ModelProvider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, errors.Store(err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}
	return providers, nil
}

// GetProvider looks up a model registration by its model_id.
func (s *Store) GetProvider(ctx context.Context, modelID string) (*domain.ModelProvider, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM model_providers WHERE model_id = ?`, modelID)
	p, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, errors.ProviderNotFoundf("model %q is not registered", modelID)
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return p, nil
}

// UpsertProvider registers a model or refreshes its display name and
// provider. New registrations start active; an update leaves the
// active flag alone. The returned bool reports whether a row was
// created.
func (s *Store) UpsertProvider(ctx context.Context, modelID, name, provider string) (*domain.ModelProvider, bool, error) {
	var created bool
	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE model_providers
			SET name = ?, provider = ?, updated_at = datetime('now')
			WHERE model_id = ?`,
			name, provider, modelID)
		if err != nil {
			return errors.Store(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}
		if n > 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO model_providers (model_id, name, provider, active)
			VALUES (?, ?, ?, 1)`,
			modelID, name, provider)
		if err != nil {
			return errors.Store(err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	p, err := s.GetProvider(ctx, modelID)
	if err != nil {
		return nil, false, err
	}
	return p, created, nil
}

// SetProviderActive flips a model's active flag without losing the
// registration.
func (s *Store) SetProviderActive(ctx context.Context, modelID string, active bool) (*domain.ModelProvider, error) {
	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE model_providers
			SET active = ?, updated_at = datetime('now')
			WHERE model_id = ?`,
			active, modelID)
		if err != nil {
			return errors.Store(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}
		if n == 0 {
			return errors.ProviderNotFoundf("model %q is not registered", modelID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProvider(ctx, modelID)
}
