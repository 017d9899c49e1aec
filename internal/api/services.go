package api

import (
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Prompt   *service.PromptService
	Version  *service.VersionService
	Category *service.CategoryService
	Provider *service.ProviderService
	Run      *service.RunService
	Paste    *service.PasteService
	Search   *service.SearchService
	Stats    *service.StatsService
}
