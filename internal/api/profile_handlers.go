package api

import (
	"context"
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tentoapp/tento-server/internal/card"
	"github.com/tentoapp/tento-server/internal/http/response"
	"github.com/tentoapp/tento-server/internal/service"
)

// UpdateProfileRequest represents the request body for updating the
// authenticated user's profile. Omitted fields are left untouched.
type UpdateProfileRequest struct {
	Bio   *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Image *string `json:"image,omitempty"`
}

// handleUpdateProfile updates the authenticated user's bio and/or avatar.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req UpdateProfileRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	err := s.profiles.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Bio:   req.Bio,
		Image: req.Image,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.invalidateProfileCard(ctx)

	response.Success(w, map[string]string{"status": "updated"}, s.logger)
}

// handleGetProfile returns a public profile page by username.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	view, err := s.profiles.GetProfileByUsername(r.Context(), username)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, s.logger)
}

// handleGetListPage returns a public list page by username and slug.
func (s *Server) handleGetListPage(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	slug := chi.URLParam(r, "slug")

	view, err := s.profiles.GetListByUsernameAndSlug(r.Context(), username, slug)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, view, s.logger)
}

// invalidateProfileCard drops the cached profile card for the acting
// user, so the next crawler hit re-renders with fresh data. List cards
// are left to expire by TTL.
func (s *Server) invalidateProfileCard(ctx context.Context) {
	username, ok := ctx.Value(contextKeyUsername).(string)
	if !ok || username == "" {
		return
	}
	s.cache.Invalidate(card.ProfileKey(username))
}
