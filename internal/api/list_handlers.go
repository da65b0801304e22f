package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tentoapp/tento-server/internal/http/response"
	"github.com/tentoapp/tento-server/internal/service"
)

// CreateListRequest represents the request body for creating a list.
type CreateListRequest struct {
	Name  string   `json:"name" validate:"required,max=200"`
	Items []string `json:"items" validate:"max=10,dive,max=500"`
	Tags  []string `json:"tags" validate:"max=5,dive,max=50"`
}

// UpdateListRequest represents the request body for a partial list update.
// Omitted fields are left untouched; an empty items or tags array clears
// the collection.
type UpdateListRequest struct {
	Name  *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Items *[]string `json:"items,omitempty" validate:"omitempty,max=10,dive,max=500"`
	Tags  *[]string `json:"tags,omitempty" validate:"omitempty,max=5,dive,max=50"`
}

// handleCreateList creates a new list for the authenticated user.
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req CreateListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	listID, err := s.lists.CreateList(ctx, userID, req.Name, req.Items, req.Tags)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.invalidateProfileCard(ctx)

	response.Created(w, map[string]string{"id": listID}, s.logger)
}

// handleGetLists returns the authenticated user's lists. An anonymous
// caller gets an empty array, not an error.
func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lists, err := s.lists.GetLists(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, lists, s.logger)
}

// handleUpdateList applies a partial update to a list the user owns.
func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req UpdateListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	err := s.lists.UpdateList(ctx, userID, id, service.UpdateListRequest{
		Name:  req.Name,
		Items: req.Items,
		Tags:  req.Tags,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.invalidateProfileCard(ctx)

	response.Success(w, map[string]string{"id": id}, s.logger)
}

// handleDeleteList deletes a list the user owns.
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	id := chi.URLParam(r, "id")

	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if err := s.lists.DeleteList(ctx, userID, id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.invalidateProfileCard(ctx)

	response.NoContent(w)
}
