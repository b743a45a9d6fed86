package model

import (
	"fmt"
	"strings"
)

// Category is a collection exposed by the remote API.
type Category string

const (
	CategoryPeople    Category = "people"
	CategoryPlanets   Category = "planets"
	CategoryVehicles  Category = "vehicles"
	CategoryStarships Category = "starships"
	CategorySpecies   Category = "species"
	CategoryFilms     Category = "films"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryPeople,
	CategoryPlanets,
	CategoryVehicles,
	CategoryStarships,
	CategorySpecies,
	CategoryFilms,
}

// ParseCategory validates s and returns the matching Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))

	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(CategoryNames(), ", "))
}

// CategoryNames returns the names of all supported categories.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}

	return names
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// FavoriteTag returns the tag recorded on favorites created from this category.
func (c Category) FavoriteTag() string {
	switch c {
	case CategoryPeople:
		return "persona"
	case CategoryPlanets:
		return "planeta"
	case CategorySpecies:
		return "species"
	default:
		return strings.TrimSuffix(string(c), "s")
	}
}

// DetailPath returns the routing path of the detail view for the entity
// at index. The index is a position in the current in-memory sequence.
func (c Category) DetailPath(index int) string {
	return fmt.Sprintf("/%s_detailed/%d", c, index)
}

// NameField returns the JSON field holding the display name.
func (c Category) NameField() string {
	if c == CategoryFilms {
		return "title"
	}

	return "name"
}

// SummaryFields returns the attributes shown on a card for this category.
func (c Category) SummaryFields() []string {
	switch c {
	case CategoryPeople:
		return []string{"gender", "eye_color", "hair_color"}
	case CategoryPlanets:
		return []string{"climate", "terrain", "population"}
	case CategoryVehicles, CategoryStarships:
		return []string{"model", "manufacturer", "crew"}
	case CategorySpecies:
		return []string{"classification", "language", "average_lifespan"}
	case CategoryFilms:
		return []string{"episode_id", "director", "release_date"}
	}

	return nil
}
