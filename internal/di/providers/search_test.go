package providers

import (
	"context"
	"io"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdamapp/bookdam-server/internal/config"
	"github.com/bookdamapp/bookdam-server/internal/domain"
	"github.com/bookdamapp/bookdam-server/internal/logger"
	"github.com/bookdamapp/bookdam-server/internal/service"
)

func TestProvideSearchServiceRebuildsIndex(t *testing.T) {
	tmpDir := t.TempDir()

	injector := do.New()
	t.Cleanup(func() { _ = injector.Shutdown() })

	do.ProvideValue(injector, &config.Config{
		Data: config.DataConfig{BasePath: tmpDir},
	})
	do.ProvideValue(injector, logger.New(logger.Config{
		Writer:      io.Discard,
		Format:      "json",
		Environment: "development",
	}))
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideSearchIndex)
	do.Provide(injector, ProvideCatalogService)
	do.Provide(injector, ProvideSearchService)

	// Seed the store before any catalog or index provider runs.
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	_, err := storeHandle.PutBooks(context.Background(), []domain.Book{
		{ISBN13: "9791100000001", Title: "아몬드", Author: "손원평", Emotion: "감동"},
		{ISBN13: "9791100000002", Title: "달러구트 꿈 백화점", Author: "이미예", Emotion: "흥미"},
	})
	require.NoError(t, err)

	// Building the service brings the index up to date with the catalog,
	// so a fresh index directory still serves local search.
	svc := do.MustInvoke[*service.SearchService](injector)

	books, err := svc.Search(context.Background(), "아몬드", 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "9791100000001", books[0].ISBN13)

	indexHandle := do.MustInvoke[*SearchIndexHandle](injector)
	count, err := indexHandle.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}
