package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/search"
)

// SearchService answers local catalog searches from the Bleve index.
type SearchService struct {
	index   *search.Index
	catalog *CatalogService
	logger  *slog.Logger
}

// NewSearchService creates a search service.
func NewSearchService(index *search.Index, catalog *CatalogService, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		catalog: catalog,
		logger:  logger,
	}
}

// Search runs a keyword query over title, author, and publisher and
// resolves the hits back to catalog books in relevance order. Hits whose
// books have left the catalog since indexing are skipped.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = 20
	}

	params := search.DefaultParams()
	params.Query = query
	params.Limit = limit

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	books := make([]domain.Book, 0, len(result.Hits))
	for _, hit := range result.Hits {
		book, ok := s.catalog.Get(hit.ISBN13)
		if !ok {
			s.logger.Debug("search hit no longer in catalog", "isbn13", hit.ISBN13)
			continue
		}
		books = append(books, book)
	}

	s.logger.Debug("catalog search",
		"query", query,
		"total", result.Total,
		"took_ms", result.TookMs,
	)
	return books, nil
}

// RebuildIndex reindexes the whole catalog snapshot.
// Called at startup and after seeding.
func (s *SearchService) RebuildIndex(_ context.Context) error {
	snapshot := s.catalog.Snapshot()

	docs := make([]*search.Document, 0, len(snapshot))
	for i := range snapshot {
		docs = append(docs, search.BookToDocument(&snapshot[i]))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}

	s.logger.Info("catalog search index built", "documents", len(docs))
	return nil
}
