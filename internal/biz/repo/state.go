package repo

import "context"

// StateRepo is the persistence gateway interface
// A key-value blob store: the whole value is read and written at once
type StateRepo interface {
	// Save stores value under key, replacing any previous value
	Save(ctx context.Context, key string, value []byte) error

	// Load returns the value stored under key, or nil when the key is missing
	Load(ctx context.Context, key string) ([]byte, error)

	// Close releases the underlying store
	Close() error
}
