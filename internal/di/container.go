// Package di provides dependency injection configuration for the tento server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/tentoapp/tento-server/internal/card"
	"github.com/tentoapp/tento-server/internal/config"
	"github.com/tentoapp/tento-server/internal/di/providers"
	"github.com/tentoapp/tento-server/internal/logger"
	"github.com/tentoapp/tento-server/internal/service"
	"github.com/tentoapp/tento-server/internal/session"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Data layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideProfileService)

	// Card rendering
	do.Provide(injector, providers.ProvideFontSet)
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideCardCache)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*session.TokenService](injector)

	_ = do.MustInvoke[*service.ListService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)

	_ = do.MustInvoke[*providers.FontSetHandle](injector)
	_ = do.MustInvoke[*card.Renderer](injector)
	_ = do.MustInvoke[*providers.CardCacheHandle](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
