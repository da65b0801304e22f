// Package domain defines the core entities for the tento server.
package domain

import "time"

// User is an identity record. Account lifecycle (registration, credentials,
// sessions) is owned by the identity provider; the server reads users and
// only ever writes the avatar fields.
type User struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            string    `json:"id"`
	Username      string    `json:"username"` // Unique, stored lowercase
	Name          string    `json:"name"`     // Display name
	Email         string    `json:"email"`
	Image         string    `json:"image,omitempty"`          // External URL or inline base64 data URI
	ImageBlurhash string    `json:"image_blurhash,omitempty"` // Placeholder hash, computed on upload
}

// PublicUser is the subset of User exposed on public profile pages.
type PublicUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	ImageBlurhash string `json:"image_blurhash,omitempty"`
}

// Public returns the externally visible projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		Image:         u.Image,
		ImageBlurhash: u.ImageBlurhash,
	}
}

// DisplayName returns the best available name for rendering:
// display name, then username, then a generic placeholder.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}
