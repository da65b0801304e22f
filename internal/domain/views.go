package domain

import "time"

// ProfileView is the full public profile page model: identity, optional
// bio, and every list the user owns, most recently updated first.
type ProfileView struct {
	User  PublicUser `json:"user"`
	Bio   *string    `json:"bio,omitempty"`
	Lists []List     `json:"lists"`
}

// ListView is the public list page model. OtherLists carries up to three
// more lists by the same owner for cross-promotion.
type ListView struct {
	List       List       `json:"list"`
	User       PublicUser `json:"user"`
	OtherLists []ListRef  `json:"other_lists"`
}

// Card projection caps. The card views cap result sizes tightly to bound
// rendering cost; every social-media crawl re-triggers a render.
const (
	CardMaxLists        = 10 // lists on a profile card
	CardMaxItemsPerList = 3  // items pre-expanded per profile-card list
	CardMaxItems        = 5  // items on a list card
	CardMaxTags         = 3  // tags shown on a card
)

// ProfileCard is the reduced projection behind GET /card/profile/{username}.
type ProfileCard struct {
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Bio      *string   `json:"bio,omitempty"`
	Lists    []List    `json:"lists"` // at most CardMaxLists, items capped per list
	Date     time.Time `json:"date"`  // most recent update among Lists
}

// ListCard is the reduced projection behind GET /card/list/{username}/{slug}.
type ListCard struct {
	Username string    `json:"username"`
	Name     string    `json:"name"` // owner display name
	List     List      `json:"list"` // at most CardMaxItems items
	Date     time.Time `json:"date"` // list's last update
}
