package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
)

// ProvideMirror provides the markdown mirror of the prompt library.
// The mirror directory is the user-visible face of the knowledge base,
// so it is created eagerly even before the first prompt is saved.
func ProvideMirror(i do.Injector) (*mirror.Mirror, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.PromptsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create prompts dir: %w", err)
	}

	m := mirror.New(cfg.Storage.PromptsDir, log.Logger)

	log.Info("Markdown mirror ready", "dir", m.Dir())

	return m, nil
}
