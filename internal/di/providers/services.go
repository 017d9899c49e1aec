package providers

import (
	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

// ProvidePromptService provides the prompt management service.
func ProvidePromptService(i do.Injector) (*service.PromptService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPromptService(storeHandle.Store, log.Logger), nil
}

// ProvideVersionService provides the version history service.
func ProvideVersionService(i do.Injector) (*service.VersionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*mirror.Mirror](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVersionService(storeHandle.Store, m, log.Logger), nil
}

// ProvideCategoryService provides the category tree service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, log.Logger), nil
}

// ProvideProviderService provides the model provider registry service.
func ProvideProviderService(i do.Injector) (*service.ProviderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProviderService(storeHandle.Store, log.Logger), nil
}

// ProvideRunService provides the prompt run logging service.
func ProvideRunService(i do.Injector) (*service.RunService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRunService(storeHandle.Store, log.Logger), nil
}

// ProvidePasteService provides the HTML paste conversion service.
func ProvidePasteService(i do.Injector) (*service.PasteService, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPasteService(log.Logger), nil
}

// ProvideStatsService provides the knowledge base statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}
