package providers

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/api"
	"github.com/promptkeepapp/promptkeep-server/internal/config"
	"github.com/promptkeepapp/promptkeep-server/internal/logger"
	"github.com/promptkeepapp/promptkeep-server/internal/mdns"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Get all services
	promptService := do.MustInvoke[*service.PromptService](i)
	versionService := do.MustInvoke[*service.VersionService](i)
	categoryService := do.MustInvoke[*service.CategoryService](i)
	providerService := do.MustInvoke[*service.ProviderService](i)
	runService := do.MustInvoke[*service.RunService](i)
	pasteService := do.MustInvoke[*service.PasteService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	statsService := do.MustInvoke[*service.StatsService](i)

	services := &api.Services{
		Prompt:   promptService,
		Version:  versionService,
		Category: categoryService,
		Provider: providerService,
		Run:      runService,
		Paste:    pasteService,
		Search:   searchService,
		Stats:    statsService,
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	handler := api.NewServer(cfg, storeHandle.Store, services, sseHandler, sseHandle.Manager, log.Logger)

	// Bind to the configured host only; the default of 127.0.0.1 keeps
	// the knowledge base private to the machine it runs on.
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}

// MDNSServiceHandle wraps mdns.Service with Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.started && h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService provides the mDNS advertisement service.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Discovery.Enabled {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{Service: nil, started: false}, nil
	}

	svc := mdns.NewService(log.Logger)

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		log.Warn("Failed to parse server port for mDNS, using default", "port", cfg.Server.Port)
		port = 8571
	}

	if err := svc.Start(cfg.Discovery.ServiceName, port); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
		// Non-fatal: the server works without discovery (e.g., no Avahi daemon)
		return &MDNSServiceHandle{Service: svc, started: false}, nil
	}

	return &MDNSServiceHandle{Service: svc, started: true}, nil
}
