package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/logger"
	"github.com/alibiapp/alibi-server/internal/watcher"
)

// CatalogWatcherHandle wraps the master catalog file watcher.
// Watcher is nil when no master catalog file is configured.
type CatalogWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideCatalogWatcher watches the configured master catalog file for edits.
// The catalog itself is loaded once at startup, so a change only logs that a
// restart is needed to pick it up.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Data.MasterCatalogPath == "" {
		return &CatalogWatcherHandle{}, nil
	}

	w, err := watcher.New(cfg.Data.MasterCatalogPath, watcher.DefaultSettleDelay, func(path string) {
		log.Warn("Master catalog changed on disk - restart the server to reload it", "path", path)
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Catalog watcher error", "error", err)
		}
	}()

	log.Info("Watching master catalog", "path", cfg.Data.MasterCatalogPath)

	return &CatalogWatcherHandle{Watcher: w, cancel: cancel}, nil
}
