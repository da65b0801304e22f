// Package service provides the business logic layer for lists, profiles,
// and the card projections.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tentoapp/tento-server/internal/domain"
	domainerrors "github.com/tentoapp/tento-server/internal/errors"
	"github.com/tentoapp/tento-server/internal/store"
	"github.com/tentoapp/tento-server/internal/store/sqlite"
	"github.com/tentoapp/tento-server/internal/util"
)

// slugSuffixLen is how many characters of the list ID disambiguate a
// colliding slug. The ID is fresh, so the suffixed slug is unique without
// a retry loop.
const slugSuffixLen = 8

// ListService owns all list mutations. Every mutating call takes the
// acting user's ID explicitly; callers resolve the session once at the
// request boundary and pass the identity down.
type ListService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewListService creates a new list service.
func NewListService(store *sqlite.Store, logger *slog.Logger) *ListService {
	return &ListService{
		store:  store,
		logger: logger,
	}
}

// UpdateListRequest contains the optional fields of a list update.
// A nil field is left untouched; a pointer to an empty slice is a
// deliberate "clear all" request. The distinction matters.
type UpdateListRequest struct {
	Name  *string
	Items *[]string
	Tags  *[]string
}

// normalizeItems trims values, drops empties, and assigns 1-based ranks
// by position in the filtered sequence.
func normalizeItems(values []string) []domain.ListItem {
	var items []domain.ListItem
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		items = append(items, domain.ListItem{Rank: len(items) + 1, Value: v})
	}
	return items
}

// normalizeTags trims tags, drops empties, and deduplicates
// case-sensitively, preserving first-occurrence order.
func normalizeTags(values []string) []string {
	seen := make(map[string]bool, len(values))
	var tags []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		tags = append(tags, v)
	}
	return tags
}

// resolveSlug slugifies the name and disambiguates against the owner's
// existing lists. excludeID skips the list's own row, so a rename to the
// current slug is not a collision.
func (s *ListService) resolveSlug(ctx context.Context, ownerID, name, listID, excludeID string) (string, error) {
	slug := util.Slugify(name)
	taken, err := s.store.SlugExists(ctx, ownerID, slug, excludeID)
	if err != nil {
		return "", storeUnavailable("check slug", err)
	}
	if taken {
		slug = slug + "-" + listID[:slugSuffixLen]
	}
	return slug, nil
}

// CreateList creates a list with its items and tags for the acting user.
// Returns the new list ID.
func (s *ListService) CreateList(ctx context.Context, actorID, name string, items, tags []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if actorID == "" {
		return "", domainerrors.Unauthorized("authentication required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", domainerrors.Validation("list name is required")
	}
	if len(items) > domain.MaxListItems {
		return "", domainerrors.Validationf("a list holds at most %d items", domain.MaxListItems)
	}
	if len(tags) > domain.MaxListTags {
		return "", domainerrors.Validationf("a list holds at most %d tags", domain.MaxListTags)
	}

	listID := uuid.NewString()

	slug, err := s.resolveSlug(ctx, actorID, name, listID, "")
	if err != nil {
		return "", err
	}

	now := time.Now()
	list := &domain.List{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        listID,
		UserID:    actorID,
		Slug:      slug,
		Name:      name,
		Items:     normalizeItems(items),
		Tags:      normalizeTags(tags),
	}

	if err := s.store.CreateList(ctx, list); err != nil {
		return "", storeUnavailable("create list", err)
	}

	s.logger.Info("list created",
		"list_id", listID,
		"user_id", actorID,
		"slug", slug,
		"items", len(list.Items),
		"tags", len(list.Tags),
	)

	return listID, nil
}

// requireOwned loads a list and verifies the actor owns it. A missing
// list and a list owned by someone else produce the same NotFound error,
// so non-owners cannot probe for existence.
func (s *ListService) requireOwned(ctx context.Context, actorID, listID string) (*domain.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, storeUnavailable("get list", err)
	}
	if list.UserID != actorID {
		return nil, domainerrors.NotFound("list not found")
	}
	return list, nil
}

// UpdateList applies a partial update to a list the actor owns.
// A rename recomputes the slug with the same collision rules as create.
// Item and tag updates are full replaces, never diffs.
func (s *ListService) UpdateList(ctx context.Context, actorID, listID string, req UpdateListRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actorID == "" {
		return domainerrors.Unauthorized("authentication required")
	}

	if _, err := s.requireOwned(ctx, actorID, listID); err != nil {
		return err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domainerrors.Validation("list name is required")
		}

		slug, err := s.resolveSlug(ctx, actorID, name, listID, listID)
		if err != nil {
			return err
		}

		if err := s.store.UpdateListName(ctx, listID, name, slug); err != nil {
			return storeUnavailable("rename list", err)
		}
	}

	if req.Items != nil {
		if len(*req.Items) > domain.MaxListItems {
			return domainerrors.Validationf("a list holds at most %d items", domain.MaxListItems)
		}
		if err := s.store.ReplaceListItems(ctx, listID, normalizeItems(*req.Items)); err != nil {
			return storeUnavailable("replace items", err)
		}
	}

	if req.Tags != nil {
		if len(*req.Tags) > domain.MaxListTags {
			return domainerrors.Validationf("a list holds at most %d tags", domain.MaxListTags)
		}
		if err := s.store.ReplaceListTags(ctx, listID, normalizeTags(*req.Tags)); err != nil {
			return storeUnavailable("replace tags", err)
		}
	}

	s.logger.Info("list updated", "list_id", listID, "user_id", actorID)
	return nil
}

// DeleteList deletes a list the actor owns, cascading its items and tags.
func (s *ListService) DeleteList(ctx context.Context, actorID, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actorID == "" {
		return domainerrors.Unauthorized("authentication required")
	}

	if _, err := s.requireOwned(ctx, actorID, listID); err != nil {
		return err
	}

	if err := s.store.DeleteList(ctx, listID); err != nil {
		return storeUnavailable("delete list", err)
	}

	s.logger.Info("list deleted", "list_id", listID, "user_id", actorID)
	return nil
}

// GetLists returns the actor's own lists, most recently updated first.
// An anonymous caller gets an empty sequence, not an error.
func (s *ListService) GetLists(ctx context.Context, actorID string) ([]domain.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actorID == "" {
		return []domain.List{}, nil
	}

	lists, err := s.store.ListsByOwner(ctx, actorID)
	if err != nil {
		return nil, storeUnavailable("list lists", err)
	}
	if lists == nil {
		lists = []domain.List{}
	}
	return lists, nil
}

// storeUnavailable wraps an unexpected store error into the UNAVAILABLE
// domain error. Store sentinels pass through untouched so callers can
// still match them.
func storeUnavailable(op string, err error) error {
	var storeErr *store.Error
	if domainerrors.As(err, &storeErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domainerrors.Wrapf(err, domainerrors.CodeUnavailable, "%s", op)
}
