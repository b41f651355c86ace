package store

import "context"

// Adapter persists the full table set as a single snapshot. Implementations
// must write atomically: a reader must never observe a half-written snapshot.
//
// Load returns (snapshot, true, nil) when a previous snapshot exists,
// (zero, false, nil) on first run, and a non-nil error (wrapping
// common.ErrStorage) when the storage layer itself fails.
type Adapter interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}
