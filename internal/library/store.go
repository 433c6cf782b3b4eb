package library

// Store is the pluggable key/value persistence behind a Library.
// Values are opaque JSON documents; the Library owns their shape.
type Store interface {
	// Get returns the value stored under key, or nil, nil when the key is absent.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// ValidateSetup verifies that the backend is reachable and usable.
	ValidateSetup() error

	// Close releases any resources held by the backend.
	Close() error
}

// BatchStore is implemented by backends that can write several keys at once
// so that either all of them land or none do.
type BatchStore interface {
	Store
	PutMany(entries map[string][]byte) error
}
