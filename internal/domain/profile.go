package domain

import "time"

// MaxBioLength is the maximum number of characters allowed in a bio.
const MaxBioLength = 160

// Profile holds the user-editable bio, separate from the identity record.
// A profile row may not exist yet; it is created lazily on first edit.
// Bio is a pointer because "no bio" and "empty bio" collapse to the same
// stored absence: whitespace-only input is persisted as NULL.
type Profile struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Bio       *string   `json:"bio,omitempty"`
}
