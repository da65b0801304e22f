package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/tentoapp/tento-server/internal/card"
	"github.com/tentoapp/tento-server/internal/config"
	"github.com/tentoapp/tento-server/internal/logger"
)

// FontSetHandle wraps the font set with shutdown capability for its
// file watcher.
type FontSetHandle struct {
	*card.FontSet
}

// Shutdown implements do.Shutdownable.
func (h *FontSetHandle) Shutdown() error {
	return h.FontSet.Close()
}

// ProvideFontSet loads the card fonts and starts watching the display
// font file for changes when one is configured.
func ProvideFontSet(i do.Injector) (*FontSetHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	fonts := card.LoadFonts(context.Background(), cfg.Card.DisplayFontPath, cfg.Card.BodyFontURL, log.Logger)

	if cfg.Card.DisplayFontPath != "" {
		if err := fonts.Watch(); err != nil {
			log.Warn("Display font watching disabled", "error", err)
		}
	}

	return &FontSetHandle{FontSet: fonts}, nil
}

// ProvideRenderer provides the card renderer.
func ProvideRenderer(i do.Injector) (*card.Renderer, error) {
	fonts := do.MustInvoke[*FontSetHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return card.NewRenderer(fonts.FontSet, log.Logger), nil
}

// CardCacheHandle wraps the render cache with shutdown capability.
type CardCacheHandle struct {
	*card.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CardCacheHandle) Shutdown() error {
	return h.Cache.Close()
}

// ProvideCardCache provides the rendered card cache.
func ProvideCardCache(i do.Injector) (*CardCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cache, err := card.OpenCache(cfg.CardCachePath(), cfg.Card.CacheTTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Card cache opened", "path", cfg.CardCachePath(), "ttl", cfg.Card.CacheTTL)

	return &CardCacheHandle{Cache: cache}, nil
}
