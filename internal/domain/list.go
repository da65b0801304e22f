package domain

import "time"

// List caps. The store accepts any count; services re-validate these
// limits before writing.
const (
	MaxListItems = 10
	MaxListTags  = 5
)

// List is a named, ranked collection of free-text items belonging to one
// user. The (UserID, Slug) pair is unique; renames recompute the slug.
type List struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Items     []ListItem `json:"items"`
	Tags      []string   `json:"tags"`
}

// ListItem is one ranked entry in a list. Rank is a 1-based ordinal
// reflecting input order; it sorts ascending but need not be contiguous.
type ListItem struct {
	ID     string `json:"id"`
	ListID string `json:"list_id"`
	Rank   int    `json:"rank"`
	Value  string `json:"value"`
}

// ListRef is a minimal pointer to a list, used for cross-promotion rows
// on list pages ("more from this user").
type ListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
