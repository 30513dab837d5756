package providers

import (
	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/logger"
	"github.com/alibiapp/alibi-server/internal/service"
)

// ProvideExcuseService provides generation, catalog selection, and search.
func ProvideExcuseService(i do.Injector) (*service.ExcuseService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	genHandle := do.MustInvoke[*GeneratorHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A typed nil *llm.Client must not leak into the interface; the service
	// checks the interface against nil to pick the catalog fallback.
	var gen service.Generator
	if genHandle.Client != nil {
		gen = genHandle.Client
	}

	return service.NewExcuseService(storeHandle.Store, cat, gen, searchHandle.SearchIndex, log.Logger), nil
}

// ProvideRatingService provides rating and share tracking.
func ProvideRatingService(i do.Injector) (*service.RatingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRatingService(storeHandle.Store, log.Logger), nil
}

// ProvideFavoriteService provides per-device favorites.
func ProvideFavoriteService(i do.Injector) (*service.FavoriteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFavoriteService(storeHandle.Store, log.Logger), nil
}
