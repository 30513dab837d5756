// Package di provides dependency injection configuration for the Alibi server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/di/providers"
	"github.com/alibiapp/alibi-server/internal/logger"
	"github.com/alibiapp/alibi-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Catalog and generation
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideGenerator)

	// Business services
	do.Provide(injector, providers.ProvideExcuseService)
	do.Provide(injector, providers.ProvideRatingService)
	do.Provide(injector, providers.ProvideFavoriteService)

	// Workers
	do.Provide(injector, providers.ProvideCatalogWatcher)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*catalog.Catalog](injector)
	_ = do.MustInvoke[*providers.GeneratorHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.ExcuseService](injector)
	_ = do.MustInvoke[*service.RatingService](injector)
	_ = do.MustInvoke[*service.FavoriteService](injector)

	// Workers
	_ = do.MustInvoke[*providers.CatalogWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
