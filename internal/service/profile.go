package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tentoapp/tento-server/internal/domain"
	domainerrors "github.com/tentoapp/tento-server/internal/errors"
	"github.com/tentoapp/tento-server/internal/media/images"
	"github.com/tentoapp/tento-server/internal/store"
	"github.com/tentoapp/tento-server/internal/store/sqlite"
)

// otherListsLimit is how many cross-promotion lists a list page shows.
const otherListsLimit = 3

// ProfileService owns profile mutation and the public read aggregations
// (profile pages, list pages, and the card projections).
type ProfileService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *sqlite.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
	}
}

// UpdateProfileRequest contains the optional profile fields. Nil fields
// are left untouched.
type UpdateProfileRequest struct {
	Bio   *string
	Image *string
}

// UpdateProfile updates the actor's bio and/or avatar. The bio lives on
// the profile row (created lazily on first write); the avatar is an
// identity attribute and goes to the user row, with a BlurHash placeholder
// computed for inline images.
func (s *ProfileService) UpdateProfile(ctx context.Context, actorID string, req UpdateProfileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actorID == "" {
		return domainerrors.Unauthorized("authentication required")
	}

	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		// The cap is on characters, not bytes; multi-byte bios must
		// count the same way the request validator does.
		if utf8.RuneCountInString(bio) > domain.MaxBioLength {
			return domainerrors.Validationf("bio must be %d characters or less", domain.MaxBioLength)
		}

		// Whitespace-only input stores an explicit absence.
		var stored *string
		if bio != "" {
			stored = &bio
		}
		if err := s.store.UpsertProfileBio(ctx, actorID, stored); err != nil {
			return storeUnavailable("upsert bio", err)
		}
	}

	if req.Image != nil {
		image := strings.TrimSpace(*req.Image)

		// BlurHash only applies to inline avatars; external URLs are
		// stored as-is and a failed decode is not fatal.
		var hash string
		if data, ok := images.DecodeDataURI(image); ok {
			h, err := images.ComputeBlurHash(data)
			if err != nil {
				s.logger.Warn("failed to compute avatar blurhash", "user_id", actorID, "error", err)
			} else {
				hash = h
			}
		}

		if err := s.store.UpdateUserImage(ctx, actorID, image, hash); err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				return domainerrors.NotFound("user not found")
			}
			return storeUnavailable("update avatar", err)
		}
	}

	s.logger.Info("profile updated", "user_id", actorID)
	return nil
}

// GetProfileByUsername returns the full public profile view: identity,
// optional bio, and all lists most recently updated first. The username
// lookup is case-insensitive.
func (s *ProfileService) GetProfileByUsername(ctx context.Context, username string) (*domain.ProfileView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, storeUnavailable("get user", err)
	}

	view := &domain.ProfileView{User: user.Public()}

	// The profile row is zero-or-one; absence just means no bio yet.
	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return nil, storeUnavailable("get profile", err)
	}
	if profile != nil {
		view.Bio = profile.Bio
	}

	lists, err := s.store.ListsByOwner(ctx, user.ID)
	if err != nil {
		return nil, storeUnavailable("list lists", err)
	}
	if lists == nil {
		lists = []domain.List{}
	}
	view.Lists = lists

	return view, nil
}

// GetListByUsernameAndSlug returns the public list page view, including
// up to three other lists by the same owner for cross-promotion.
func (s *ProfileService) GetListByUsernameAndSlug(ctx context.Context, username, slug string) (*domain.ListView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, storeUnavailable("get user", err)
	}

	list, err := s.store.ListBySlug(ctx, user.ID, slug, 0)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, storeUnavailable("get list", err)
	}

	others, err := s.store.RecentListRefs(ctx, user.ID, list.ID, otherListsLimit)
	if err != nil {
		return nil, storeUnavailable("list other lists", err)
	}
	if others == nil {
		others = []domain.ListRef{}
	}

	return &domain.ListView{
		List:       *list,
		User:       user.Public(),
		OtherLists: others,
	}, nil
}

// GetProfileCard returns the reduced projection for the profile social
// card: up to CardMaxLists recent lists, each with at most
// CardMaxItemsPerList items, and the most recent update for the date row.
func (s *ProfileService) GetProfileCard(ctx context.Context, username string) (*domain.ProfileCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, storeUnavailable("get user", err)
	}

	lists, err := s.store.RecentLists(ctx, user.ID, domain.CardMaxLists, domain.CardMaxItemsPerList)
	if err != nil {
		return nil, storeUnavailable("list recent lists", err)
	}

	card := &domain.ProfileCard{
		Username: user.Username,
		Name:     user.DisplayName(),
		Lists:    lists,
		Date:     time.Now(),
	}
	if len(lists) > 0 {
		card.Date = lists[0].UpdatedAt
	}

	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return nil, storeUnavailable("get profile", err)
	}
	if profile != nil {
		card.Bio = profile.Bio
	}

	return card, nil
}

// GetListCard returns the reduced projection for the list social card:
// the list with at most CardMaxItems items and all its tags.
func (s *ProfileService) GetListCard(ctx context.Context, username, slug string) (*domain.ListCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, storeUnavailable("get user", err)
	}

	list, err := s.store.ListBySlug(ctx, user.ID, slug, domain.CardMaxItems)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, storeUnavailable("get list", err)
	}

	return &domain.ListCard{
		Username: user.Username,
		Name:     user.DisplayName(),
		List:     *list,
		Date:     list.UpdatedAt,
	}, nil
}
