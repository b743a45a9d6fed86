// Package store provides persistence for starcards favorites.
//
// The package defines the [Store] interface, which the application store
// uses to write favorites through and to restore them on start. Three
// backends implement it:
//   - BoltDB (default), an embedded key-value store
//   - SQLite, through the pure Go modernc.org/sqlite driver
//   - Memory, which keeps nothing across runs
//
// Use [Open] to select a backend by name:
//
//	favorites, err := store.Open(model.StorageBolt, dir)
//	list, err := favorites.ListFavorites()
package store
