package providers

import (
	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/logger"
)

// ProvideCatalog provides the local excuse catalog, loaded once at startup.
// A configured master catalog file layers on top of the embedded seed data.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Load is first-source-wins, so the master file goes ahead of the
	// embedded seeds to actually take precedence.
	sources := catalog.EmbeddedSources()
	if cfg.Data.MasterCatalogPath != "" {
		src, err := catalog.FileSource(cfg.Data.MasterCatalogPath)
		if err != nil {
			return nil, err
		}
		sources = append([]catalog.Source{src}, sources...)
		log.Info("Loaded master catalog file", "path", cfg.Data.MasterCatalogPath)
	}

	cat, err := catalog.Load(log.Logger, sources...)
	if err != nil {
		return nil, err
	}

	stats := cat.Stats()
	log.Info("Excuse catalog ready",
		"situations", stats.TotalSituations,
		"excuses", stats.TotalExcuses,
	)

	return cat, nil
}
