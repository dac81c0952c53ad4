package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookdamapp/bookdam-server/internal/config"
	"github.com/bookdamapp/bookdam-server/internal/kv"
	"github.com/bookdamapp/bookdam-server/internal/logger"
	"github.com/bookdamapp/bookdam-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideKVStore provides the key-value cache backed by the store's database.
func ProvideKVStore(i do.Injector) (kv.Store, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return kv.NewBadger(storeHandle.DB()), nil
}
