// Package memory is an in-process replica used by tests and by dev mode
// when no remote database is configured. It mimics the real replica's
// contract, including serially assigned remote ids and an on/off switch
// for simulating lost connectivity.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"ponselpos/backend/internal/remote"
)

type Replica struct {
	mu      sync.Mutex
	nextID  int64
	offline bool
	data    map[string]map[string]remote.Document
}

func New() *Replica {
	return &Replica{nextID: 1, data: make(map[string]map[string]remote.Document)}
}

// SetOffline makes every call fail with ErrUnavailable until reset.
func (r *Replica) SetOffline(off bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = off
}

func (r *Replica) Ping(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return remote.ErrUnavailable
	}
	return nil
}

func (r *Replica) Create(_ context.Context, collection string, doc json.RawMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return "", remote.ErrUnavailable
	}
	id := fmt.Sprintf("%d", r.nextID)
	r.nextID++
	if r.data[collection] == nil {
		r.data[collection] = make(map[string]remote.Document)
	}
	r.data[collection][id] = remote.Document{
		RemoteID:  id,
		Doc:       append(json.RawMessage(nil), doc...),
		UpdatedAt: time.Now().UTC(),
	}
	return id, nil
}

func (r *Replica) Update(_ context.Context, collection, remoteID string, doc json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return remote.ErrUnavailable
	}
	coll := r.data[collection]
	if _, ok := coll[remoteID]; !ok {
		return fmt.Errorf("update %s/%s: document not found", collection, remoteID)
	}
	coll[remoteID] = remote.Document{
		RemoteID:  remoteID,
		Doc:       append(json.RawMessage(nil), doc...),
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *Replica) Delete(_ context.Context, collection, remoteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return remote.ErrUnavailable
	}
	delete(r.data[collection], remoteID)
	return nil
}

func (r *Replica) List(_ context.Context, collection string) ([]remote.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, remote.ErrUnavailable
	}
	coll := r.data[collection]
	out := make([]remote.Document, 0, len(coll))
	for _, doc := range coll {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemoteID < out[j].RemoteID })
	return out, nil
}

func (r *Replica) Close() error { return nil }

// Count reports collection size, a test convenience.
func (r *Replica) Count(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data[collection])
}
