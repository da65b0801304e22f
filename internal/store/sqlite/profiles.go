package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tentoapp/tento-server/internal/domain"
	"github.com/tentoapp/tento-server/internal/id"
	"github.com/tentoapp/tento-server/internal/store"
)

// profileColumns is the ordered list of columns selected in profile queries.
// Must match the scan order in scanProfile.
const profileColumns = `id, created_at, updated_at, user_id, bio`

// scanProfile scans a sql.Row (or sql.Rows via its Scan method) into a domain.Profile.
func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.Profile, error) {
	var p domain.Profile

	var (
		createdAt string
		updatedAt string
		bio       sql.NullString
	)

	err := scanner.Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
		&p.UserID,
		&bio,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if bio.Valid {
		p.Bio = &bio.String
	}

	return &p, nil
}

// GetProfile retrieves a profile by user ID.
// Returns store.ErrNotFound if no profile row exists yet for the user.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProfileBio creates or updates the profile row for a user.
// A nil bio stores NULL; the distinction between "no bio" and "empty bio"
// is collapsed by the service before it reaches the store.
func (s *Store) UpsertProfileBio(ctx context.Context, userID string, bio *string) error {
	now := formatTime(time.Now())

	profileID, err := id.Generate("prof")
	if err != nil {
		return err
	}

	// The generated id and created_at only apply on first insert; the
	// conflict arm leaves both untouched.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, created_at, updated_at, user_id, bio)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET bio = excluded.bio, updated_at = excluded.updated_at`,
		profileID,
		now,
		now,
		userID,
		nullableString(bio),
	)
	return err
}
