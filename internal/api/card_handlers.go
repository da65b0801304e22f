package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tentoapp/tento-server/internal/card"
	domainerrors "github.com/tentoapp/tento-server/internal/errors"
	"github.com/tentoapp/tento-server/internal/http/response"
)

// handleProfileCard serves the social preview image for a profile page.
func (s *Server) handleProfileCard(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	key := card.ProfileKey(username)

	if data, ok := s.cache.Get(key); ok {
		writePNG(w, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RenderTimeout)
	defer cancel()

	projection, err := s.profiles.GetProfileCard(ctx, username)
	if err != nil {
		s.handleCardError(w, err, "profile card", username)
		return
	}

	data, err := s.renderer.RenderProfileCard(ctx, projection)
	if err != nil {
		s.handleCardError(w, err, "profile card", username)
		return
	}

	s.cache.Set(key, data)
	writePNG(w, data)
}

// handleListCard serves the social preview image for a list page.
func (s *Server) handleListCard(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")
	key := card.ListKey(username, slug)

	if data, ok := s.cache.Get(key); ok {
		writePNG(w, data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RenderTimeout)
	defer cancel()

	projection, err := s.profiles.GetListCard(ctx, username, slug)
	if err != nil {
		s.handleCardError(w, err, "list card", username)
		return
	}

	data, err := s.renderer.RenderListCard(ctx, projection)
	if err != nil {
		s.handleCardError(w, err, "list card", username)
		return
	}

	s.cache.Set(key, data)
	writePNG(w, data)
}

// handleCardError maps card pipeline failures. Unknown subjects are a
// plain 404; render failures and timeouts surface as 500 so crawlers
// retry later instead of caching an error page.
func (s *Server) handleCardError(w http.ResponseWriter, err error, kind, username string) {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeNotFound {
		response.NotFound(w, domainErr.Message, s.logger)
		return
	}

	s.logger.Error("card render failed", "kind", kind, "username", username, "error", err)
	response.InternalError(w, "failed to render card", s.logger)
}

// writePNG writes a rendered card with caching headers friendly to
// social-media crawlers.
func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best effort, client may have gone away
}
