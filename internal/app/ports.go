package app

import "context"

// Persisted keys. Each key is loaded and saved independently.
const (
	KeyResources        = "resources"
	KeyEvents           = "events"
	KeyNextEventCounter = "nextEventCounter"
)

// KVStore represents the key-value persistence port used by Store.
// Load reports ok=false for an absent key.
type KVStore interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}
