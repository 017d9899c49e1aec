package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/reconciler"
	"github.com/promptkeepapp/promptkeep-server/internal/watcher"
)

// ProvideReconciler provides the reconciler that folds external edits
// of mirror files back into the database as new versions.
func ProvideReconciler(i do.Injector) (*reconciler.Reconciler, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*mirror.Mirror](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return reconciler.New(storeHandle.Store, m, sseHandle.Manager, log.Logger), nil
}

// FileWatcherHandle wraps the file watcher with shutdown capability.
// The watcher is nil when directory watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the prompt directory watcher.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Watcher.Enabled {
		log.Info("Prompt directory watching disabled by configuration")
		return &FileWatcherHandle{}, nil
	}

	rec := do.MustInvoke[*reconciler.Reconciler](i)
	m := do.MustInvoke[*mirror.Mirror](i)

	w, err := watcher.New(log.Logger, watcher.Options{
		SettleDelay: cfg.Watcher.SettleDelay,
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(m.Dir()); err != nil {
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	// Reconcile events in background
	go func() {
		for {
			select {
			case event := <-w.Events():
				if err := rec.ProcessEvent(ctx, event); err != nil {
					log.Warn("failed to reconcile file event",
						"error", err,
						"type", event.Type,
						"path", event.Path,
					)
				}
			case err := <-w.Errors():
				log.Warn("file watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Watching prompt library", "dir", m.Dir())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
