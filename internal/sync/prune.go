package sync

import (
	"context"
	"errors"
	"time"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/ledger"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/xid"
)

// Pruning mirrors a remote delete. When a document vanishes from the
// replica the local record goes too, and so does everything hanging off
// it, the same way the originating terminal's delete cascade ran:
// a pruned customer takes its ledger entries, a pruned sale puts stock
// and serials back and refolds the balance. Dependent documents still on
// the replica are deleted there as well; if that delete cannot be
// confirmed a tombstone keeps it on the retry path.

// dropRemote deletes a dependent's document during a prune cascade. An
// unconfirmed delete becomes a tombstone rather than a sweep failure:
// the local cascade must finish regardless, the parent is already gone.
func (e *Engine) dropRemote(ctx context.Context, collection, remoteID string) error {
	if remoteID == "" {
		return nil
	}
	if err := e.replica.Delete(ctx, collection, remoteID); err != nil {
		e.logger.Printf("[sync] prune remote delete %s/%s: %v", collection, remoteID, err)
		return e.local.PutTombstone(ctx, domain.Tombstone{
			ID:         xid.New("tomb"),
			EntityType: collection,
			RemoteID:   remoteID,
			CreatedAt:  time.Now().UTC(),
		})
	}
	return nil
}

func (e *Engine) pruneCustomer(ctx context.Context, localID string) error {
	entries, err := e.local.ListCustomerLedgerByCustomer(ctx, localID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	for _, en := range entries {
		if err := e.dropRemote(ctx, domain.CollectionCustomerLedger, en.RemoteID); err != nil {
			return err
		}
		if err := e.local.DeleteCustomerLedger(ctx, en.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return e.local.DeleteCustomer(ctx, localID)
}

func (e *Engine) pruneSupplier(ctx context.Context, localID string) error {
	entries, err := e.local.ListSupplierLedgerBySupplier(ctx, localID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	for _, en := range entries {
		if err := e.dropRemote(ctx, domain.CollectionSupplierLedger, en.RemoteID); err != nil {
			return err
		}
		if err := e.local.DeleteSupplierLedger(ctx, en.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return e.local.DeleteSupplier(ctx, localID)
}

func (e *Engine) pruneProduct(ctx context.Context, localID string) error {
	recs, err := e.local.ListIMEIsByProduct(ctx, localID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	for _, rec := range recs {
		if err := e.dropRemote(ctx, domain.CollectionIMEIs, rec.RemoteID); err != nil {
			return err
		}
		if err := e.local.DeleteIMEI(ctx, rec.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return e.local.DeleteProduct(ctx, localID)
}

func (e *Engine) pruneSale(ctx context.Context, localID string) error {
	sale, err := e.local.GetSale(ctx, localID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	for _, it := range sale.Items {
		if prod, err := e.local.GetProduct(ctx, it.ProductID); err == nil {
			prod.CurrentStock += it.Qty
			prod.SyncStatus = domain.SyncPending
			if err := e.local.PutProduct(ctx, *prod); err != nil {
				return err
			}
		}
		for _, serial := range it.IMEIs {
			rec, err := e.local.GetLiveIMEIBySerial(ctx, serial)
			if err != nil || rec.Status != domain.IMEISold || rec.SaleID != sale.LocalID {
				continue
			}
			rec.Status = domain.IMEIInStock
			rec.SaleID = ""
			rec.SyncStatus = domain.SyncPending
			if err := e.local.PutIMEI(ctx, *rec); err != nil {
				return err
			}
		}
	}

	if sale.CustomerID != "" {
		if err := e.dropCustomerEntriesByRef(ctx, sale.CustomerID, sale.LocalID); err != nil {
			return err
		}
		if err := e.refoldCustomer(ctx, sale.CustomerID); err != nil {
			return err
		}
	}
	return e.local.DeleteSale(ctx, localID)
}

func (e *Engine) prunePurchase(ctx context.Context, localID string) error {
	purchase, err := e.local.GetPurchase(ctx, localID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	for _, it := range purchase.Items {
		if prod, err := e.local.GetProduct(ctx, it.ProductID); err == nil {
			prod.CurrentStock -= it.Qty
			prod.SyncStatus = domain.SyncPending
			if err := e.local.PutProduct(ctx, *prod); err != nil {
				return err
			}
		}
		// Units from this intake still in stock leave with it; sold units
		// stay, the sale that moved them is its own record.
		for _, serial := range it.IMEIs {
			rec, err := e.local.GetLiveIMEIBySerial(ctx, serial)
			if err != nil || rec.Status != domain.IMEIInStock || rec.PurchaseID != purchase.LocalID {
				continue
			}
			if err := e.dropRemote(ctx, domain.CollectionIMEIs, rec.RemoteID); err != nil {
				return err
			}
			if err := e.local.DeleteIMEI(ctx, rec.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
	}

	if purchase.SupplierID != "" {
		if err := e.dropSupplierEntriesByRef(ctx, purchase.SupplierID, purchase.LocalID); err != nil {
			return err
		}
		if err := e.refoldSupplier(ctx, purchase.SupplierID); err != nil {
			return err
		}
	}
	return e.local.DeletePurchase(ctx, localID)
}

func (e *Engine) dropCustomerEntriesByRef(ctx context.Context, customerID, refID string) error {
	entries, err := e.local.ListCustomerLedgerByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	for _, en := range entries {
		if en.RefID != refID {
			continue
		}
		if err := e.dropRemote(ctx, domain.CollectionCustomerLedger, en.RemoteID); err != nil {
			return err
		}
		if err := e.local.DeleteCustomerLedger(ctx, en.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (e *Engine) dropSupplierEntriesByRef(ctx context.Context, supplierID, refID string) error {
	entries, err := e.local.ListSupplierLedgerBySupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	for _, en := range entries {
		if en.RefID != refID {
			continue
		}
		if err := e.dropRemote(ctx, domain.CollectionSupplierLedger, en.RemoteID); err != nil {
			return err
		}
		if err := e.local.DeleteSupplierLedger(ctx, en.LocalID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (e *Engine) refoldCustomer(ctx context.Context, customerID string) error {
	cust, err := e.local.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	entries, err := e.local.ListCustomerLedgerByCustomer(ctx, customerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	bal := ledger.RecomputeCustomer(cust.OpeningBalanceCents, cust.BalanceType, entries)
	cust.CurrentBalanceCents = bal.AmountCents
	cust.SyncStatus = domain.SyncPending
	return e.local.PutCustomer(ctx, *cust)
}

func (e *Engine) refoldSupplier(ctx context.Context, supplierID string) error {
	sup, err := e.local.GetSupplier(ctx, supplierID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	entries, err := e.local.ListSupplierLedgerBySupplier(ctx, supplierID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	bal := ledger.RecomputeSupplier(sup.OpeningBalanceCents, sup.BalanceType, entries)
	sup.CurrentBalanceCents = bal.AmountCents
	sup.CurrentBalanceType = bal.Type
	sup.SyncStatus = domain.SyncPending
	return e.local.PutSupplier(ctx, *sup)
}
