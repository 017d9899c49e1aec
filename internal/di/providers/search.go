package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/search"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.New(search.Options{
		DataPath: cfg.Storage.IndexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	// Wire to store so every saved version is indexed as it commits
	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, sseHandle.Manager, log.Logger), nil
}

// RebuildSearchIndexIfNeeded repopulates the index from the database
// when it was created fresh this boot (first run, mapping change, or
// corruption recovery). Should be called after all services are wired.
func RebuildSearchIndexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if err := searchService.RebuildIfNeeded(context.Background()); err != nil {
			log.Error("Search index rebuild failed", "error", err)
		}
	}()
}
