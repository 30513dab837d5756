package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/alibiapp/alibi-server/internal/config"
	"github.com/alibiapp/alibi-server/internal/logger"
	"github.com/alibiapp/alibi-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text excuse index. An empty index with
// excuses already in the database means a mapping-version rebuild (or a fresh
// deployment over an existing database) wiped it, so persisted excuses are
// re-indexed before the server starts serving searches.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	count, err := idx.DocumentCount()
	if err != nil {
		log.Warn("Failed to read search index document count", "error", err)
		return &SearchIndexHandle{SearchIndex: idx}, nil
	}

	if count == 0 {
		excuses, err := storeHandle.ListExcuses(context.Background())
		if err != nil {
			log.Warn("Failed to list excuses for search backfill", "error", err)
		} else if len(excuses) > 0 {
			docs := make([]*search.SearchDocument, 0, len(excuses))
			for _, e := range excuses {
				docs = append(docs, search.ExcuseToSearchDocument(e))
			}
			if err := idx.IndexDocuments(docs); err != nil {
				log.Warn("Failed to backfill search index", "error", err)
			} else {
				log.Info("Backfilled search index from database", "documents", len(docs))
				count = uint64(len(docs))
			}
		}
	}

	log.Info("Search index ready", "documents", count)

	return &SearchIndexHandle{SearchIndex: idx}, nil
}
