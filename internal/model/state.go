package model

// LoadState is the lifecycle state of the application store.
type LoadState string

const (
	// LoadStateUninitialized means no load has been issued yet
	LoadStateUninitialized LoadState = "uninitialized"

	// LoadStatePending means a load is in flight
	LoadStatePending LoadState = "pending"

	// LoadStateReady means the entity sequence is populated (possibly empty)
	LoadStateReady LoadState = "ready"

	// LoadStateFailed means the last load failed; prior entities are kept
	LoadStateFailed LoadState = "failed"
)

// String returns the string representation of LoadState
func (s LoadState) String() string {
	return string(s)
}

// IsSettled returns true when no load is in flight
func (s LoadState) IsSettled() bool {
	return s == LoadStateReady || s == LoadStateFailed
}

// Snapshot is a read-only copy of the application store.
type Snapshot struct {
	State     LoadState  `json:"state"`
	Err       string     `json:"error,omitempty"`
	Category  Category   `json:"category"`
	Entities  []Entity   `json:"entities"`
	Favorites []Favorite `json:"favorites"`
	Revision  uint64     `json:"revision"`
}

// IsFavorite reports whether any favorite references the entity name.
func (s Snapshot) IsFavorite(name string) bool {
	for _, f := range s.Favorites {
		if f.Name == name {
			return true
		}
	}

	return false
}
