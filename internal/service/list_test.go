package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tentoapp/tento-server/internal/domain"
	domainerrors "github.com/tentoapp/tento-server/internal/errors"
	"github.com/tentoapp/tento-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestListService(t *testing.T) (*ListService, *sqlite.Store) {
	t.Helper()
	s := newTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewListService(s, logger), s
}

func createTestUser(t *testing.T, s *sqlite.Store, id, username string) {
	t.Helper()
	now := time.Now()
	err := s.CreateUser(context.Background(), &domain.User{
		CreatedAt: now,
		UpdatedAt: now,
		ID:        id,
		Username:  username,
		Name:      username,
		Email:     username + "@example.com",
	})
	require.NoError(t, err)
}

func TestCreateList(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten Albums", []string{"OK Computer", "Kid A"}, []string{"music"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Top Ten Albums", list.Name)
	assert.Equal(t, "top-ten-albums", list.Slug)
	assert.Equal(t, "user-1", list.UserID)
	require.Len(t, list.Items, 2)
	assert.Equal(t, 1, list.Items[0].Rank)
	assert.Equal(t, "OK Computer", list.Items[0].Value)
	assert.Equal(t, 2, list.Items[1].Rank)
	assert.Equal(t, []string{"music"}, list.Tags)
}

func TestCreateList_SlugCollision(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	first, err := svc.CreateList(ctx, "user-1", "Top Ten", nil, nil)
	require.NoError(t, err)

	second, err := svc.CreateList(ctx, "user-1", "Top Ten!!", nil, nil)
	require.NoError(t, err)

	a, err := s.GetList(ctx, first)
	require.NoError(t, err)
	b, err := s.GetList(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, "top-ten", a.Slug)
	assert.Equal(t, "top-ten-"+second[:slugSuffixLen], b.Slug)
}

func TestCreateList_SameSlugDifferentOwners(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")
	createTestUser(t, s, "user-2", "bob")

	aliceID, err := svc.CreateList(ctx, "user-1", "Top Ten", nil, nil)
	require.NoError(t, err)
	bobID, err := svc.CreateList(ctx, "user-2", "Top Ten", nil, nil)
	require.NoError(t, err)

	a, err := s.GetList(ctx, aliceID)
	require.NoError(t, err)
	b, err := s.GetList(ctx, bobID)
	require.NoError(t, err)

	// Slugs are scoped per owner, so neither needs a suffix.
	assert.Equal(t, "top-ten", a.Slug)
	assert.Equal(t, "top-ten", b.Slug)
}

func TestCreateList_Validation(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	_, err := svc.CreateList(ctx, "", "Top Ten", nil, nil)
	assertCode(t, err, domainerrors.CodeUnauthorized)

	_, err = svc.CreateList(ctx, "user-1", "   ", nil, nil)
	assertCode(t, err, domainerrors.CodeValidation)

	tooMany := make([]string, domain.MaxListItems+1)
	for i := range tooMany {
		tooMany[i] = "item"
	}
	_, err = svc.CreateList(ctx, "user-1", "Top Ten", tooMany, nil)
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = svc.CreateList(ctx, "user-1", "Top Ten", nil, []string{"a", "b", "c", "d", "e", "f"})
	assertCode(t, err, domainerrors.CodeValidation)
}

func TestCreateList_NormalizesInput(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "  Mixed Bag  ",
		[]string{" first ", "", "second", "   "},
		[]string{"tag", " tag ", "other", ""})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mixed Bag", list.Name)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "first", list.Items[0].Value)
	assert.Equal(t, 1, list.Items[0].Rank)
	assert.Equal(t, "second", list.Items[1].Value)
	assert.Equal(t, 2, list.Items[1].Rank)
	assert.Equal(t, []string{"tag", "other"}, list.Tags)
}

func TestUpdateList_Rename(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Old Name", []string{"a"}, []string{"keep"})
	require.NoError(t, err)

	name := "New Name"
	err = svc.UpdateList(ctx, "user-1", id, UpdateListRequest{Name: &name})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New Name", list.Name)
	assert.Equal(t, "new-name", list.Slug)
	// Untouched fields survive a rename.
	require.Len(t, list.Items, 1)
	assert.Equal(t, []string{"keep"}, list.Tags)
}

func TestUpdateList_RenameToOwnNameKeepsSlug(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten", nil, nil)
	require.NoError(t, err)

	// Renaming to a name that slugifies to the list's current slug must
	// not trip the collision check against the list itself.
	name := "Top Ten!"
	err = svc.UpdateList(ctx, "user-1", id, UpdateListRequest{Name: &name})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "top-ten", list.Slug)
}

func TestUpdateList_RenameCollision(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	_, err := svc.CreateList(ctx, "user-1", "Taken", nil, nil)
	require.NoError(t, err)
	id, err := svc.CreateList(ctx, "user-1", "Free", nil, nil)
	require.NoError(t, err)

	name := "Taken"
	err = svc.UpdateList(ctx, "user-1", id, UpdateListRequest{Name: &name})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "taken-"+id[:slugSuffixLen], list.Slug)
}

func TestUpdateList_ReplaceItemsAndTags(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten", []string{"a", "b", "c"}, []string{"x", "y"})
	require.NoError(t, err)

	items := []string{"only"}
	tags := []string{}
	err = svc.UpdateList(ctx, "user-1", id, UpdateListRequest{Items: &items, Tags: &tags})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "only", list.Items[0].Value)
	assert.Equal(t, 1, list.Items[0].Rank)
	assert.Empty(t, list.Tags)
	assert.Equal(t, "Top Ten", list.Name)
}

func TestUpdateList_AllFieldsAtOnce(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Before", []string{"old"}, []string{"old"})
	require.NoError(t, err)

	name := "After"
	items := []string{"one", "two"}
	tags := []string{"fresh"}
	err = svc.UpdateList(ctx, "user-1", id, UpdateListRequest{Name: &name, Items: &items, Tags: &tags})
	require.NoError(t, err)

	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "After", list.Name)
	assert.Equal(t, "after", list.Slug)
	require.Len(t, list.Items, 2)
	assert.Equal(t, []string{"fresh"}, list.Tags)
}

func TestUpdateList_NotOwner(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")
	createTestUser(t, s, "user-2", "bob")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten", []string{"a"}, nil)
	require.NoError(t, err)

	name := "Hijacked"
	err = svc.UpdateList(ctx, "user-2", id, UpdateListRequest{Name: &name})
	assertCode(t, err, domainerrors.CodeNotFound)

	// Unchanged.
	list, err := s.GetList(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Top Ten", list.Name)
}

func TestDeleteList(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten", []string{"a"}, []string{"x"})
	require.NoError(t, err)

	err = svc.DeleteList(ctx, "user-1", id)
	require.NoError(t, err)

	_, err = s.GetList(ctx, id)
	require.Error(t, err)
}

func TestDeleteList_NotOwner(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")
	createTestUser(t, s, "user-2", "bob")

	id, err := svc.CreateList(ctx, "user-1", "Top Ten", nil, nil)
	require.NoError(t, err)

	err = svc.DeleteList(ctx, "user-2", id)
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = s.GetList(ctx, id)
	require.NoError(t, err)
}

func TestDeleteList_Missing(t *testing.T) {
	svc, s := newTestListService(t)
	createTestUser(t, s, "user-1", "alice")

	err := svc.DeleteList(context.Background(), "user-1", "no-such-list")
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestGetLists(t *testing.T) {
	svc, s := newTestListService(t)
	ctx := context.Background()
	createTestUser(t, s, "user-1", "alice")
	createTestUser(t, s, "user-2", "bob")

	firstID, err := svc.CreateList(ctx, "user-1", "First", nil, nil)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.CreateList(ctx, "user-1", "Second", nil, nil)
	require.NoError(t, err)
	_, err = svc.CreateList(ctx, "user-2", "Other", nil, nil)
	require.NoError(t, err)

	lists, err := svc.GetLists(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Second", lists[0].Name)
	assert.Equal(t, "First", lists[1].Name)

	// An update moves a list to the front.
	time.Sleep(5 * time.Millisecond)
	items := []string{"bump"}
	err = svc.UpdateList(ctx, "user-1", firstID, UpdateListRequest{Items: &items})
	require.NoError(t, err)

	lists, err = svc.GetLists(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "First", lists[0].Name)
}

func TestGetLists_Anonymous(t *testing.T) {
	svc, _ := newTestListService(t)

	lists, err := svc.GetLists(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, lists)
	assert.Empty(t, lists)
}

func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
