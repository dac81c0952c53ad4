package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdamapp/bookdam-server/internal/config"
	"github.com/bookdamapp/bookdam-server/internal/logger"
	"github.com/bookdamapp/bookdam-server/internal/recommend"
)

// RecommendClientHandle wraps the recommendation API client.
type RecommendClientHandle struct {
	*recommend.Client
}

// Shutdown implements do.Shutdownable.
func (h *RecommendClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRecommendClient provides the external recommendation API client.
// With no base URL configured the client is still built; searches against
// it fail and the failures surface as empty result sets.
func ProvideRecommendClient(i do.Injector) (*RecommendClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := recommend.NewClient(cfg.Recommend.BaseURL, cfg.Recommend.RequestTimeout, log.Logger)

	if cfg.Recommend.BaseURL == "" {
		log.Warn("recommendation API base URL not configured, remote search disabled")
	}

	return &RecommendClientHandle{Client: client}, nil
}
