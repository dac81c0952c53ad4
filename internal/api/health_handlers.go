package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health and catalog readiness",
		Tags:        []string{"System"},
	}, s.handleHealthCheck)
}

// HealthResponse contains server health information.
type HealthResponse struct {
	Status      string    `json:"status" doc:"Server status"`
	CatalogSize int       `json:"catalog_size" doc:"Number of books in the catalog"`
	Time        time.Time `json:"time" doc:"Server time"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponse{
			Status:      "ok",
			CatalogSize: s.services.Catalog.Size(),
			Time:        time.Now(),
		},
	}, nil
}
