package store

import (
	"context"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// Stats is a snapshot of database row counts for the system endpoint.
type Stats struct {
	SchemaVersion int   `json:"schema_version"`
	Prompts       int64 `json:"prompts"`
	Versions      int64 `json:"versions"`
	Runs          int64 `json:"runs"`
	Providers     int64 `json:"providers"`
}

// Stats counts the rows in each table along with the schema version.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	version, err := s.schemaVersion(ctx)
	if err != nil {
		return nil, errors.Store(err)
	}

	stats := &Stats{SchemaVersion: version}
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM prompts`, &stats.Prompts},
		{`SELECT COUNT(*) FROM versions`, &stats.Versions},
		{`SELECT COUNT(*) FROM runs`, &stats.Runs},
		{`SELECT COUNT(*) FROM model_providers WHERE active = 1`, &stats.Providers},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, errors.Store(err)
		}
	}
	return stats, nil
}
