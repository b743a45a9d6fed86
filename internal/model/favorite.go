package model

import "time"

// Favorite is a user-created reference to an entity by name plus a category tag.
type Favorite struct {
	// ID is the stable identifier of the favorite (UUID)
	ID string `json:"id"`

	// Name is the referenced entity's name
	Name string `json:"name"`

	// Category is the tag recorded when favoriting (e.g., "persona")
	Category string `json:"category"`

	// CreatedAt is when the favorite was added
	CreatedAt time.Time `json:"created_at"`
}

// Matches reports whether the favorite references name within category.
func (f Favorite) Matches(name, category string) bool {
	return f.Name == name && f.Category == category
}
