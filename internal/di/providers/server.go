package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tentoapp/tento-server/internal/api"
	"github.com/tentoapp/tento-server/internal/card"
	"github.com/tentoapp/tento-server/internal/config"
	"github.com/tentoapp/tento-server/internal/logger"
	"github.com/tentoapp/tento-server/internal/service"
	"github.com/tentoapp/tento-server/internal/session"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server, already listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	lists := do.MustInvoke[*service.ListService](i)
	profiles := do.MustInvoke[*service.ProfileService](i)
	tokens := do.MustInvoke[*session.TokenService](i)
	renderer := do.MustInvoke[*card.Renderer](i)
	cache := do.MustInvoke[*CardCacheHandle](i)

	apiServer := api.NewServer(api.Config{
		CORSOrigins:   cfg.Server.CORSOrigins,
		RenderTimeout: cfg.Card.RenderTimeout,
		RateRPS:       cfg.Card.RateRPS,
		RateBurst:     cfg.Card.RateBurst,
	}, lists, profiles, tokens, renderer, cache.Cache, log.Logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "port", cfg.Server.Port, "public_url", cfg.Server.PublicBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server, api: apiServer}, nil
}
