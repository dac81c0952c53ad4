package api

import "github.com/bookdamapp/bookdam-server/internal/service"

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Discovery *service.DiscoveryService
	Recommend *service.RecommendService
	Bookshelf *service.BookshelfService
	Search    *service.SearchService
}
