// Package sync reconciles the local store with the remote replica.
//
// The local store is always authoritative for records it has touched:
// push sends every pending record out, pull only prunes local synced
// records whose remote copy vanished and imports remote documents no
// local record claims. A record-level failure skips that record and the
// sweep moves on; a transport failure aborts the sweep, and the next
// connectivity flip retries everything, because pending status is only
// cleared on confirmed success.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/remote"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/xid"
)

type Engine struct {
	local   store.Local
	replica remote.Replica
	logger  *log.Logger
}

func NewEngine(local store.Local, replica remote.Replica, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{local: local, replica: replica, logger: logger}
}

// binding adapts one entity collection to the generic sweep. prepare runs
// before a push and may veto it: a child record whose parent has not been
// assigned a remote id yet is skipped, not failed, and picked up by a
// later sweep once the parent is through.
type binding[T any] struct {
	name        string
	idPrefix    string
	meta        func(*T) *domain.SyncMeta
	listAll     func(context.Context) ([]T, error)
	listPending func(context.Context) ([]T, error)
	put         func(context.Context, T) error
	encode      func(T) (json.RawMessage, error)
	decode      func(remote.Document) (T, error)
	// prune removes a local record whose remote document vanished,
	// cascading to its dependents the way the originating delete did.
	prune   func(context.Context, string) error
	prepare func(context.Context, *T) (skip bool, err error)
}

// SyncAll runs one full reconciliation sweep: push pending records in
// dependency order so parents land before children, retry outstanding
// remote deletes, then pull every collection to prune and import.
// The returned report is valid even when err is non-nil and covers the
// work done before the abort.
func (e *Engine) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	rep := &domain.SyncReport{StartedAt: time.Now().UTC().Format(domain.DateLayout)}

	if err := e.pushAll(ctx, rep); err != nil {
		return rep, err
	}
	if err := e.sweepTombstones(ctx, rep); err != nil {
		return rep, err
	}
	if err := e.pullAll(ctx, rep); err != nil {
		return rep, err
	}

	e.logger.Printf("[sync] sweep done: pushed=%d pulled=%d pruned=%d deleted=%d skipped=%d",
		rep.Pushed, rep.Pulled, rep.Pruned, rep.Deleted, rep.Skipped)
	return rep, nil
}

func (e *Engine) pushAll(ctx context.Context, rep *domain.SyncReport) error {
	if err := pushCollection(ctx, e, e.customers(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.suppliers(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.products(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.imeis(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.sales(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.purchases(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.saleReturns(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.purchaseReturns(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.customerLedger(), rep); err != nil {
		return err
	}
	if err := pushCollection(ctx, e, e.supplierLedger(), rep); err != nil {
		return err
	}
	return pushCollection(ctx, e, e.expenses(), rep)
}

func (e *Engine) pullAll(ctx context.Context, rep *domain.SyncReport) error {
	if err := pullCollection(ctx, e, e.customers(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.suppliers(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.products(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.imeis(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.sales(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.purchases(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.saleReturns(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.purchaseReturns(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.customerLedger(), rep); err != nil {
		return err
	}
	if err := pullCollection(ctx, e, e.supplierLedger(), rep); err != nil {
		return err
	}
	return pullCollection(ctx, e, e.expenses(), rep)
}

// sweepTombstones retries outstanding remote deletes. A tombstone is only
// dropped once the replica confirms; an unreachable replica leaves it in
// place for the next sweep.
func (e *Engine) sweepTombstones(ctx context.Context, rep *domain.SyncReport) error {
	tombs, err := e.local.ListTombstones(ctx)
	if err != nil {
		return err
	}
	for _, t := range tombs {
		if err := e.replica.Delete(ctx, t.EntityType, t.RemoteID); err != nil {
			if errors.Is(err, remote.ErrUnavailable) {
				return err
			}
			e.logger.Printf("[sync] remote delete %s/%s failed: %v", t.EntityType, t.RemoteID, err)
			rep.Skipped++
			continue
		}
		if err := e.local.DeleteTombstone(ctx, t.ID); err != nil {
			return err
		}
		rep.Deleted++
	}
	return nil
}

func (e *Engine) tombstoned(ctx context.Context) (map[string]bool, error) {
	tombs, err := e.local.ListTombstones(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(tombs))
	for _, t := range tombs {
		out[t.EntityType+"/"+t.RemoteID] = true
	}
	return out, nil
}

// PendingCounts reports outbox depth per collection, the figure the
// status endpoint and the shutdown log show.
func (e *Engine) PendingCounts(ctx context.Context) (*domain.PendingCounts, error) {
	counts := &domain.PendingCounts{ByCollection: make(map[string]int)}

	add := func(name string, n int, err error) error {
		if err != nil {
			return err
		}
		if n > 0 {
			counts.ByCollection[name] = n
		}
		counts.Total += n
		return nil
	}

	c, err := e.local.ListPendingCustomers(ctx)
	if err := add(domain.CollectionCustomers, len(c), err); err != nil {
		return nil, err
	}
	s, err := e.local.ListPendingSuppliers(ctx)
	if err := add(domain.CollectionSuppliers, len(s), err); err != nil {
		return nil, err
	}
	p, err := e.local.ListPendingProducts(ctx)
	if err := add(domain.CollectionProducts, len(p), err); err != nil {
		return nil, err
	}
	im, err := e.local.ListPendingIMEIs(ctx)
	if err := add(domain.CollectionIMEIs, len(im), err); err != nil {
		return nil, err
	}
	sa, err := e.local.ListPendingSales(ctx)
	if err := add(domain.CollectionSales, len(sa), err); err != nil {
		return nil, err
	}
	pu, err := e.local.ListPendingPurchases(ctx)
	if err := add(domain.CollectionPurchases, len(pu), err); err != nil {
		return nil, err
	}
	sr, err := e.local.ListPendingSaleReturns(ctx)
	if err := add(domain.CollectionSaleReturns, len(sr), err); err != nil {
		return nil, err
	}
	pr, err := e.local.ListPendingPurchaseReturns(ctx)
	if err := add(domain.CollectionPurchaseReturns, len(pr), err); err != nil {
		return nil, err
	}
	cl, err := e.local.ListPendingCustomerLedgers(ctx)
	if err := add(domain.CollectionCustomerLedger, len(cl), err); err != nil {
		return nil, err
	}
	sl, err := e.local.ListPendingSupplierLedgers(ctx)
	if err := add(domain.CollectionSupplierLedger, len(sl), err); err != nil {
		return nil, err
	}
	ex, err := e.local.ListPendingExpenses(ctx)
	if err := add(domain.CollectionExpenses, len(ex), err); err != nil {
		return nil, err
	}

	tombs, err := e.local.ListTombstones(ctx)
	if err != nil {
		return nil, err
	}
	counts.Tombstones = len(tombs)
	counts.Total += len(tombs)
	return counts, nil
}

// pushCollection sends every pending record in the collection out. A
// record with no remote id is created; one with a remote id is updated,
// falling back to create when the remote copy vanished underneath it.
// Pending status clears only after the replica confirms and the local
// write-back succeeds.
func pushCollection[T any](ctx context.Context, e *Engine, b binding[T], rep *domain.SyncReport) error {
	pending, err := b.listPending(ctx)
	if err != nil {
		return err
	}
	for i := range pending {
		rec := &pending[i]
		if b.prepare != nil {
			skip, err := b.prepare(ctx, rec)
			if err != nil {
				return err
			}
			if skip {
				rep.Skipped++
				continue
			}
		}
		meta := b.meta(rec)
		doc, err := b.encode(*rec)
		if err != nil {
			e.logger.Printf("[sync] encode %s %s: %v", b.name, meta.LocalID, err)
			rep.Skipped++
			continue
		}

		if meta.RemoteID == "" {
			id, err := e.replica.Create(ctx, b.name, doc)
			if err != nil {
				if errors.Is(err, remote.ErrUnavailable) {
					return err
				}
				e.logger.Printf("[sync] push create %s %s: %v", b.name, meta.LocalID, err)
				rep.Skipped++
				continue
			}
			meta.RemoteID = id
		} else {
			if err := e.replica.Update(ctx, b.name, meta.RemoteID, doc); err != nil {
				if errors.Is(err, remote.ErrUnavailable) {
					return err
				}
				// The remote copy is gone: recreate rather than strand the
				// record pending forever.
				id, cerr := e.replica.Create(ctx, b.name, doc)
				if cerr != nil {
					if errors.Is(cerr, remote.ErrUnavailable) {
						return cerr
					}
					e.logger.Printf("[sync] push update %s %s: %v", b.name, meta.LocalID, err)
					rep.Skipped++
					continue
				}
				meta.RemoteID = id
			}
		}

		meta.SyncStatus = domain.SyncSynced
		if err := b.put(ctx, *rec); err != nil {
			return fmt.Errorf("mark %s %s synced: %w", b.name, meta.LocalID, err)
		}
		rep.Pushed++
	}
	return nil
}

// pullCollection reconciles one collection downward. Synced local records
// whose remote document vanished are pruned, cascading to their
// dependents; remote documents that no local record claims are imported,
// unless the collection still has pending records (a half-pushed
// collection must finish pushing before imports are trusted) or the
// document is tombstoned locally. Tombstones are re-read per collection
// because an earlier prune cascade in the same sweep may have written
// new ones.
func pullCollection[T any](ctx context.Context, e *Engine, b binding[T], rep *domain.SyncReport) error {
	docs, err := e.replica.List(ctx, b.name)
	if err != nil {
		return err
	}
	byRemote := make(map[string]remote.Document, len(docs))
	for _, d := range docs {
		byRemote[d.RemoteID] = d
	}

	locals, err := b.listAll(ctx)
	if err != nil {
		return err
	}
	claimed := make(map[string]bool, len(locals))
	hasPending := false
	for i := range locals {
		meta := b.meta(&locals[i])
		if meta.RemoteID != "" {
			claimed[meta.RemoteID] = true
		}
		if meta.SyncStatus == domain.SyncPending {
			hasPending = true
			continue
		}
		if meta.RemoteID != "" {
			if _, ok := byRemote[meta.RemoteID]; !ok {
				if err := b.prune(ctx, meta.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
					return err
				}
				rep.Pruned++
			}
		}
	}

	if hasPending {
		return nil
	}
	tombed, err := e.tombstoned(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if claimed[d.RemoteID] || tombed[b.name+"/"+d.RemoteID] {
			continue
		}
		rec, err := b.decode(d)
		if err != nil {
			e.logger.Printf("[sync] decode %s %s: %v", b.name, d.RemoteID, err)
			rep.Skipped++
			continue
		}
		meta := b.meta(&rec)
		if meta.LocalID == "" {
			meta.LocalID = xid.New(b.idPrefix)
		}
		meta.RemoteID = d.RemoteID
		meta.SyncStatus = domain.SyncSynced
		if err := b.put(ctx, rec); err != nil {
			return fmt.Errorf("import %s %s: %w", b.name, d.RemoteID, err)
		}
		rep.Pulled++
	}
	return nil
}
