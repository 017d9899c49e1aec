// Package di provides dependency injection configuration for the PromptKeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/di/providers"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/reconciler"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideMirror)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvidePromptService)
	do.Provide(injector, providers.ProvideVersionService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideProviderService)
	do.Provide(injector, providers.ProvideRunService)
	do.Provide(injector, providers.ProvidePasteService)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideStatsService)

	// Workers
	do.Provide(injector, providers.ProvideReconciler)
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*mirror.Mirror](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.PromptService](injector)
	_ = do.MustInvoke[*service.VersionService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.ProviderService](injector)
	_ = do.MustInvoke[*service.RunService](injector)
	_ = do.MustInvoke[*service.PasteService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)

	// Workers
	_ = do.MustInvoke[*reconciler.Reconciler](injector)
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	// Repopulate the search index from the database if it came up fresh
	providers.RebuildSearchIndexIfNeeded(injector)

	return nil
}
