package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tentoapp/tento-server/internal/domain"
	"github.com/tentoapp/tento-server/internal/id"
	"github.com/tentoapp/tento-server/internal/store"
)

// listColumns is the ordered list of columns selected in list queries.
// Must match the scan order in scanList.
const listColumns = `id, created_at, updated_at, user_id, slug, name`

// scanList scans a sql.Row (or sql.Rows via its Scan method) into a domain.List.
func scanList(scanner interface{ Scan(dest ...any) error }) (*domain.List, error) {
	var l domain.List

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&l.ID,
		&createdAt,
		&updatedAt,
		&l.UserID,
		&l.Slug,
		&l.Name,
	)
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// loadListItems loads a list's items ordered by rank ascending.
// A limit <= 0 loads all items.
func (s *Store) loadListItems(ctx context.Context, listID string, limit int) ([]domain.ListItem, error) {
	query := `SELECT id, list_id, rank, value FROM list_items WHERE list_id = ? ORDER BY rank`
	args := []any{listID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ListItem
	for rows.Next() {
		var item domain.ListItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.Rank, &item.Value); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// loadListTags loads a list's tags as a flat string sequence.
func (s *Store) loadListTags(ctx context.Context, listID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM list_tags WHERE list_id = ?`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// loadChildren populates Items and Tags for a slice of lists.
// itemLimit <= 0 loads all items per list.
func (s *Store) loadChildren(ctx context.Context, lists []domain.List, itemLimit int) error {
	for i := range lists {
		items, err := s.loadListItems(ctx, lists[i].ID, itemLimit)
		if err != nil {
			return fmt.Errorf("load items for %s: %w", lists[i].ID, err)
		}
		tags, err := s.loadListTags(ctx, lists[i].ID)
		if err != nil {
			return fmt.Errorf("load tags for %s: %w", lists[i].ID, err)
		}
		lists[i].Items = items
		lists[i].Tags = tags
	}
	return nil
}

// insertItems inserts item rows for a list, generating row IDs.
// Runs inside the caller's transaction.
func insertItems(ctx context.Context, tx *sql.Tx, listID string, items []domain.ListItem) error {
	for _, item := range items {
		itemID, err := id.Generate("item")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO list_items (id, list_id, rank, value)
			VALUES (?, ?, ?, ?)`,
			itemID, listID, item.Rank, item.Value,
		)
		if err != nil {
			return fmt.Errorf("insert item rank %d: %w", item.Rank, err)
		}
	}
	return nil
}

// insertTags inserts tag rows for a list, generating row IDs.
// Runs inside the caller's transaction.
func insertTags(ctx context.Context, tx *sql.Tx, listID string, tags []string) error {
	for _, tag := range tags {
		tagID, err := id.Generate("tag")
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO list_tags (id, list_id, tag)
			VALUES (?, ?, ?)`,
			tagID, listID, tag,
		)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}
	return nil
}

// CreateList inserts a new list with its items and tags in one transaction.
// Items must already be trimmed, filtered, and ranked; tags deduplicated.
// Returns store.ErrAlreadyExists if the (owner, slug) pair is taken.
func (s *Store) CreateList(ctx context.Context, list *domain.List) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lists (id, created_at, updated_at, user_id, slug, name)
		VALUES (?, ?, ?, ?, ?, ?)`,
		list.ID,
		formatTime(list.CreatedAt),
		formatTime(list.UpdatedAt),
		list.UserID,
		list.Slug,
		list.Name,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := insertItems(ctx, tx, list.ID, list.Items); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, list.ID, list.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// GetList retrieves a list by ID with its items (rank ascending) and tags.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) GetList(ctx context.Context, listID string) (*domain.List, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ?`, listID)

	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	lists := []domain.List{*l}
	if err := s.loadChildren(ctx, lists, 0); err != nil {
		return nil, err
	}
	return &lists[0], nil
}

// UpdateListName renames a list, writing the precomputed slug and
// touching updated_at.
// Returns store.ErrNotFound if the list does not exist, and
// store.ErrAlreadyExists if the new (owner, slug) pair is taken by a
// concurrent writer; the unique index is the real arbiter.
func (s *Store) UpdateListName(ctx context.Context, listID, name, slug string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lists SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		name, slug, formatTime(time.Now()), listID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceListItems replaces a list's entire item set: delete all, then
// insert the new rows, in one transaction. This is a full replace, not a
// diff; an empty slice clears every item.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) ReplaceListItems(ctx context.Context, listID string, items []domain.ListItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchList(ctx, tx, listID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_items WHERE list_id = ?`, listID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, listID, items); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceListTags replaces a list's entire tag set, same pattern as items.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) ReplaceListTags(ctx context.Context, listID string, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := touchList(ctx, tx, listID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM list_tags WHERE list_id = ?`, listID); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, listID, tags); err != nil {
		return err
	}

	return tx.Commit()
}

// touchList bumps updated_at so owner list ordering reflects the mutation.
// Doubles as the existence check for child replacement.
func touchList(ctx context.Context, tx *sql.Tx, listID string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE lists SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), listID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteList performs a hard delete on a list.
// The ON DELETE CASCADE on list_items and list_tags removes the children.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) DeleteList(ctx context.Context, listID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, listID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListsByOwner returns all lists owned by a user, most recently updated
// first, each expanded with items (rank ascending) and tags.
func (s *Store) ListsByOwner(ctx context.Context, ownerID string) ([]domain.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, lists, 0); err != nil {
		return nil, err
	}
	return lists, nil
}

// RecentLists returns up to limit lists owned by a user, most recently
// updated first, each expanded with at most itemsPerList items
// (itemsPerList <= 0 loads all). Used by the card projections, which cap
// row counts tightly to bound rendering cost.
func (s *Store) RecentLists(ctx context.Context, ownerID string, limit, itemsPerList int) ([]domain.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, lists, itemsPerList); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListBySlug retrieves a list by (owner, slug), expanded with at most
// itemLimit items (itemLimit <= 0 loads all) and all tags.
// Returns store.ErrNotFound if no list matches.
func (s *Store) ListBySlug(ctx context.Context, ownerID, slug string, itemLimit int) (*domain.List, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? AND slug = ?`,
		ownerID, slug)

	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	lists := []domain.List{*l}
	if err := s.loadChildren(ctx, lists, itemLimit); err != nil {
		return nil, err
	}
	return &lists[0], nil
}

// RecentListRefs returns up to limit (id, name, slug) references to a
// user's most recently updated lists, excluding excludeID if non-empty.
// Used for the "more from this user" block on list pages.
func (s *Store) RecentListRefs(ctx context.Context, ownerID, excludeID string, limit int) ([]domain.ListRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug FROM lists
		WHERE user_id = ? AND id != ?
		ORDER BY updated_at DESC LIMIT ?`,
		ownerID, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.ListRef
	for rows.Next() {
		var ref domain.ListRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Slug); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// SlugExists reports whether another list of the same owner already uses
// the slug. excludeID skips the list's own row, so a list renaming to its
// current slug is not a collision.
func (s *Store) SlugExists(ctx context.Context, ownerID, slug, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lists WHERE user_id = ? AND slug = ? AND id != ?`,
		ownerID, slug, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
