// Package session is the boundary with the identity provider. The server
// never issues credentials in production; it verifies PASETO tokens minted
// by the provider and resolves them to a Session once per request. Issue
// exists for development tooling and tests.
package session

import "time"

// Session identifies the authenticated caller for one request.
// A nil *Session means anonymous.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
}

// Claims are the fields carried inside a v4.local session token.
// The token is encrypted, so these are not readable without the key.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
