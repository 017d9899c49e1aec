package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/search"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

// SearchService bridges the full-text index with the store. Routine
// index updates ride along on the store's write path; this service owns
// queries and full rebuilds.
type SearchService struct {
	index   *search.Index
	store   *store.Store
	emitter store.EventEmitter
	logger  *slog.Logger
}

// NewSearchService creates a new search service. A nil emitter drops
// rebuild notifications.
func NewSearchService(index *search.Index, st *store.Store, emitter store.EventEmitter, logger *slog.Logger) *SearchService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &SearchService{
		index:   index,
		store:   st,
		emitter: emitter,
		logger:  logger,
	}
}

// Search runs a full-text query over version bodies, titles, and tags.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed version documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildResult reports a completed index rebuild.
type RebuildResult struct {
	Indexed int           `json:"indexed"`
	Took    time.Duration `json:"took_ns"`
}

// Rebuild drops the index and reindexes every version from the
// database. This is a heavy operation - use sparingly.
func (s *SearchService) Rebuild(ctx context.Context) (*RebuildResult, error) {
	start := time.Now()
	s.logger.Info("starting full index rebuild")

	if err := s.index.Reset(); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}

	prompts, err := s.store.ListPrompts(ctx, store.ListPromptsParams{})
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	var docs []*search.VersionDocument
	for _, prompt := range prompts {
		versions, err := s.store.ListAllVersions(ctx, prompt.UUID)
		if err != nil {
			s.logger.Warn("skipping prompt during rebuild", "uuid", prompt.UUID, "error", err)
			continue
		}
		for _, version := range versions {
			docs = append(docs, search.NewVersionDocument(prompt, version))
		}
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return nil, fmt.Errorf("index versions: %w", err)
		}
	}

	took := time.Since(start)
	s.emitter.Emit(sse.NewSearchRebuiltEvent(len(docs), took))
	s.logger.Info("index rebuild complete", "documents", len(docs), "took", took)

	return &RebuildResult{Indexed: len(docs), Took: took}, nil
}

// RebuildIfNeeded rebuilds only when the index directory is missing or
// was created fresh this boot. Called once at startup.
func (s *SearchService) RebuildIfNeeded(ctx context.Context) error {
	if !s.index.NeedsReindex() {
		return nil
	}

	s.logger.Info("search index is fresh, rebuilding from database")
	_, err := s.Rebuild(ctx)
	return err
}
