package store

import (
	"context"
	"database/sql"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// migration is one incremental schema change. Migrations run in order
// inside a single transaction each; schema_version records the highest
// applied version.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "versions recency index",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				`CREATE INDEX IF NOT EXISTS idx_versions_prompt_created
				 ON versions(prompt_uuid, created_at DESC)`)
			return err
		},
	},
	{
		version: 2,
		name:    "normalize legacy category paths",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			// Early databases allowed NULL and empty category paths.
			// The category tree and filters expect the literal default.
			_, err := tx.ExecContext(ctx,
				`UPDATE prompts SET category_path = 'Uncategorized'
				 WHERE category_path IS NULL OR category_path = ''`)
			return err
		},
	},
}

// migrate applies any pending migrations.
func (s *Store) migrate(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err := s.withWrite(ctx, func(tx *sql.Tx) error {
			if err := m.apply(ctx, tx); err != nil {
				return errors.Storef(err, "migration %d (%s) failed", m.version, m.name)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, m.version)
			if err != nil {
				return errors.Store(err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		s.logger.Info("applied migration", "version", m.version, "name", m.name)
		applied++
	}

	if applied == 0 {
		s.logger.Debug("database schema is up to date", "version", current)
	}
	return nil
}

// schemaVersion returns the highest applied migration version.
func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, errors.Store(err)
	}
	return version, nil
}

// MigrationStatus describes the schema version of an open database.
type MigrationStatus struct {
	CurrentVersion    int  `json:"current_version"`
	LatestVersion     int  `json:"latest_version"`
	MigrationsPending bool `json:"migrations_pending"`
}

// MigrationStatus reports the current and latest schema versions.
func (s *Store) MigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	latest := 0
	for _, m := range migrations {
		if m.version > latest {
			latest = m.version
		}
	}

	return &MigrationStatus{
		CurrentVersion:    current,
		LatestVersion:     latest,
		MigrationsPending: current < latest,
	}, nil
}
