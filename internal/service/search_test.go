package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/search"
)

func setupSearch(t *testing.T, books []domain.Book) (*SearchService, *CatalogService) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookdam-search-svc-test-*")
	require.NoError(t, err)

	idx, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: svcLogger()})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = idx.Close()
		_ = os.RemoveAll(tmpDir)
	})

	catalog := loadedCatalog(t, books)
	svc := NewSearchService(idx, catalog, svcLogger())
	require.NoError(t, svc.RebuildIndex(context.Background()))

	return svc, catalog
}

func TestSearchResolvesCatalogBooks(t *testing.T) {
	svc, _ := setupSearch(t, []domain.Book{
		{ISBN13: "9791100000001", Title: "여행의 이유", Author: "김영하", Publisher: "문학동네"},
		{ISBN13: "9791100000002", Title: "아몬드", Author: "손원평", Publisher: "창비"},
	})

	books, err := svc.Search(context.Background(), "아몬드", 10)
	require.NoError(t, err)
	require.NotEmpty(t, books)
	assert.Equal(t, "9791100000002", books[0].ISBN13)
	// Results carry full catalog records, not just indexed fields.
	assert.Equal(t, "손원평", books[0].Author)
}

func TestSearchSkipsStaleHits(t *testing.T) {
	svc, catalog := setupSearch(t, []domain.Book{
		{ISBN13: "9791100000001", Title: "여행의 이유", Author: "김영하"},
		{ISBN13: "9791100000002", Title: "여행자의 밤", Author: "박준"},
	})

	// Shrink the catalog after indexing; the stale hit is dropped.
	catalog.publish([]domain.Book{
		{ISBN13: "9791100000001", Title: "여행의 이유", Author: "김영하"},
	})

	books, err := svc.Search(context.Background(), "여행", 10)
	require.NoError(t, err)
	for _, b := range books {
		assert.NotEqual(t, "9791100000002", b.ISBN13)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	svc, _ := setupSearch(t, []domain.Book{
		{ISBN13: "9791100000001", Title: "책", Author: "작가"},
	})

	books, err := svc.Search(context.Background(), "책", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, books)
}
