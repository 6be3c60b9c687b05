package store

import (
	"context"

	"github.com/vgetd/vgetd/internal/data"
)

// SnapshotStore is the authoritative record of last-known progress per
// job. Writes are last-write-wins; reads never observe a torn snapshot.
type SnapshotStore interface {
	SnapshotReader
	SnapshotWriter
}

type SnapshotReader interface {
	// Get returns the stored snapshot for id. ok is false when the id has
	// never been written.
	Get(ctx context.Context, id string) (data.Snapshot, bool, error)
}

type SnapshotWriter interface {
	// Put upserts the snapshot for id, replacing any prior value.
	Put(ctx context.Context, id string, snap data.Snapshot) error
}
