package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tentoapp/tento-server/internal/domain"
	"github.com/tentoapp/tento-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, name, email, image, image_blurhash`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt string
		updatedAt string
		image     sql.NullString
		blurhash  sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.Name,
		&u.Email,
		&image,
		&blurhash,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if image.Valid {
		u.Image = image.String
	}
	if blurhash.Valid {
		u.ImageBlurhash = blurhash.String
	}

	return &u, nil
}

// CreateUser inserts a new user row. Usernames are stored lowercase so
// lookups are case-insensitive by construction.
// Returns store.ErrAlreadyExists on a username or email collision.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, username, name, email, image, image_blurhash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		strings.ToLower(user.Username),
		user.Name,
		user.Email,
		nullString(user.Image),
		nullString(user.ImageBlurhash),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username. The lookup is
// case-insensitive: usernames are stored lowercase and the argument is
// folded before the query.
// Returns store.ErrNotFound if no user matches.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`,
		strings.ToLower(username))

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserImage sets or clears the avatar fields on a user row.
// An empty image clears both the image and its blurhash.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUserImage(ctx context.Context, userID, image, blurhash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET image = ?, image_blurhash = ?, updated_at = ?
		WHERE id = ?`,
		nullString(image),
		nullString(blurhash),
		formatTime(time.Now()),
		userID,
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
