package providers

import (
	"github.com/samber/do/v2"

	"github.com/tentoapp/tento-server/internal/config"
	"github.com/tentoapp/tento-server/internal/logger"
	"github.com/tentoapp/tento-server/internal/service"
	"github.com/tentoapp/tento-server/internal/session"
	"github.com/tentoapp/tento-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.DatabasePath())

	return &StoreHandle{Store: db}, nil
}

// ProvideTokenService provides the PASETO session token verifier. The
// key is loaded from the data directory, generated on first run.
func ProvideTokenService(i do.Injector) (*session.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex := cfg.Session.KeyHex
	if keyHex == "" {
		loaded, err := session.LoadOrGenerateKeyHex(cfg.Data.BasePath)
		if err != nil {
			return nil, err
		}
		keyHex = loaded
		log.Info("Session key loaded", "path", cfg.Data.BasePath)
	}

	return session.NewTokenService(keyHex, cfg.Session.TokenDuration)
}

// ProvideListService provides the list mutation service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewListService(store.Store, log.Logger), nil
}

// ProvideProfileService provides the profile and public read service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	store := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(store.Store, log.Logger), nil
}
