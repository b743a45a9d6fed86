// Package model defines the data structures used throughout starcards.
//
// These types are shared by the remote API client, the application store,
// the persistence layer, and both view layers. They carry no behaviour
// beyond formatting and validation helpers.
//
// # Entity
//
// The [Entity] struct is a single record loaded from the remote API
// (a person, planet, vehicle, ...):
//
//	type Entity struct {
//	    Name       string            // Display name, unique within a batch
//	    Category   Category          // people, planets, ...
//	    URL        string            // Source URL when the API provides one
//	    Attributes map[string]string // gender, eye_color, climate, ...
//	    Color      string            // Presentation-only color, empty by default
//	}
//
// # Favorite
//
// The [Favorite] struct references an entity by name plus a category tag
// ("persona", "planeta", ...). Favorites carry a generated ID so they can be
// addressed independently of their position.
//
// # Config
//
// The [Config] struct holds application configuration. See [DefaultConfig].
package model
