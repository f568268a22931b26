// Package remote defines the replica the sync engine pushes to and pulls
// from. The replica is dumb on purpose: it stores one document collection
// per entity type, assigns remote ids, and answers full-collection reads.
// All reconciliation logic lives on the device side.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrUnavailable is returned when the replica cannot be reached. Sync
// treats it as a signal to go offline, never as a record-level failure.
var ErrUnavailable = errors.New("remote unavailable")

// Document is one stored record as the replica holds it.
type Document struct {
	RemoteID  string
	Doc       json.RawMessage
	UpdatedAt time.Time
}

// Replica is the remote store behind the sync engine.
type Replica interface {
	// Ping is the connectivity probe. A nil error means the device is
	// online for sync purposes.
	Ping(ctx context.Context) error

	// Create stores a new document and returns the replica-assigned id.
	Create(ctx context.Context, collection string, doc json.RawMessage) (string, error)

	// Update replaces the document held under remoteID.
	Update(ctx context.Context, collection, remoteID string, doc json.RawMessage) error

	// Delete removes the document. Deleting an id that is already gone is
	// not an error; the tombstone sweep retries blindly.
	Delete(ctx context.Context, collection, remoteID string) error

	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)

	Close() error
}
