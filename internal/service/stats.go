package service

import (
	"context"
	"log/slog"

	"github.com/promptkeepapp/promptkeep-server/internal/search"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

// StatsService assembles the system overview shown on the GUI's
// settings page.
type StatsService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, index *search.Index, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Overview is a snapshot of database and index counts.
type Overview struct {
	SchemaVersion    int    `json:"schema_version"`
	Prompts          int64  `json:"prompts"`
	Versions         int64  `json:"versions"`
	Runs             int64  `json:"runs"`
	ActiveProviders  int64  `json:"active_providers"`
	IndexedDocuments uint64 `json:"indexed_documents"`
}

// Overview returns current row and index document counts. An index
// count failure degrades to zero rather than failing the whole call.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	indexed, err := s.index.DocumentCount()
	if err != nil {
		s.logger.Warn("could not count index documents", "error", err)
		indexed = 0
	}

	return &Overview{
		SchemaVersion:    stats.SchemaVersion,
		Prompts:          stats.Prompts,
		Versions:         stats.Versions,
		Runs:             stats.Runs,
		ActiveProviders:  stats.Providers,
		IndexedDocuments: indexed,
	}, nil
}
