package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookdamapp/bookdam-server/internal/auth"
	"github.com/bookdamapp/bookdam-server/internal/config"
	"github.com/bookdamapp/bookdam-server/internal/kv"
	"github.com/bookdamapp/bookdam-server/internal/logger"
	"github.com/bookdamapp/bookdam-server/internal/service"
)

// ProvideCatalogService provides the in-memory catalog, loaded from the store.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog := service.NewCatalogService(storeHandle.Store, log.Logger)

	// An empty catalog is not fatal; discovery waits for a later load.
	if err := catalog.Load(context.Background()); err != nil {
		log.Warn("initial catalog load failed", "error", err)
	} else {
		log.Info("Catalog loaded", "books", catalog.Size())
	}

	return catalog, nil
}

// ProvideDiscoveryService provides daily and emotion picks.
func ProvideDiscoveryService(i do.Injector) (*service.DiscoveryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	cache := do.MustInvoke[kv.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDiscoveryService(catalog, cache, log.Logger, service.DiscoveryOptions{
		DailyCount:   cfg.Discovery.DailyCount,
		PollInterval: cfg.Discovery.EmotionPollInterval,
		MaxWait:      cfg.Discovery.EmotionWaitMax,
	}), nil
}

// ProvideRecommendService provides emotion-classified recommendations.
func ProvideRecommendService(i do.Injector) (*service.RecommendService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	clientHandle := do.MustInvoke[*RecommendClientHandle](i)
	cache := do.MustInvoke[kv.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendService(clientHandle.Client, cache, log.Logger, service.RecommendOptions{
		PageSize:  cfg.Recommend.PageSize,
		MaxPages:  cfg.Recommend.MaxPages,
		RecentMax: cfg.Search.RecentMax,
	}), nil
}

// ProvideBookshelfService provides per-user bookmarks.
func ProvideBookshelfService(i do.Injector) (*service.BookshelfService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookshelfService(storeHandle.Store, catalog, log.Logger), nil
}

// ProvideAuthService provides account management.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}
