package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tentoapp/tento-server/internal/domain"
	"github.com/tentoapp/tento-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        "user-1",
		Username:  "alice",
		Name:      "Alice",
		Email:     "alice@example.com",
		Image:     "https://example.com/alice.png",
	}

	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username: got %q, want %q", got.Username, "alice")
	}
	if got.Image != user.Image {
		t.Errorf("Image: got %q, want %q", got.Image, user.Image)
	}
	if got.CreatedAt.Unix() != now.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, now)
	}
}

func TestCreateUser_LowercasesUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	err := s.CreateUser(ctx, &domain.User{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        "user-1",
		Username:  "ALICE",
		Email:     "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username: got %q, want %q", got.Username, "alice")
	}
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")

	for _, lookup := range []string{"alice", "Alice", "ALICE"} {
		got, err := s.GetUserByUsername(ctx, lookup)
		if err != nil {
			t.Fatalf("GetUserByUsername(%q): %v", lookup, err)
		}
		if got.ID != "user-1" {
			t.Errorf("GetUserByUsername(%q): got ID %q, want user-1", lookup, got.ID)
		}
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")

	now := time.Now()
	err := s.CreateUser(ctx, &domain.User{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        "user-2",
		Username:  "Alice",
		Email:     "other@example.com",
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateUserImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-1", "alice")

	if err := s.UpdateUserImage(ctx, "user-1", "https://example.com/new.png", "LEHV6nWB2yk8pyo0adR*.7kCMdnj"); err != nil {
		t.Fatalf("UpdateUserImage: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Image != "https://example.com/new.png" {
		t.Errorf("Image: got %q", got.Image)
	}
	if got.ImageBlurhash == "" {
		t.Error("ImageBlurhash: expected non-empty")
	}

	// Clearing the image clears the blurhash too.
	if err := s.UpdateUserImage(ctx, "user-1", "", ""); err != nil {
		t.Fatalf("UpdateUserImage clear: %v", err)
	}
	got, err = s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Image != "" || got.ImageBlurhash != "" {
		t.Errorf("expected cleared image, got %q/%q", got.Image, got.ImageBlurhash)
	}
}

func TestUpdateUserImage_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateUserImage(context.Background(), "nonexistent", "x", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
