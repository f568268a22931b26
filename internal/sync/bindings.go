package sync

import (
	"context"
	"errors"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/remote"
	"ponselpos/backend/internal/store"
)

func (e *Engine) customers() binding[domain.Customer] {
	return binding[domain.Customer]{
		name:        domain.CollectionCustomers,
		idPrefix:    "cus",
		meta:        func(c *domain.Customer) *domain.SyncMeta { return &c.SyncMeta },
		listAll:     e.local.ListCustomers,
		listPending: e.local.ListPendingCustomers,
		put:         e.local.PutCustomer,
		encode:      remote.EncodeCustomer,
		decode:      remote.DecodeCustomer,
		prune:       e.pruneCustomer,
	}
}

func (e *Engine) suppliers() binding[domain.Supplier] {
	return binding[domain.Supplier]{
		name:        domain.CollectionSuppliers,
		idPrefix:    "sup",
		meta:        func(s *domain.Supplier) *domain.SyncMeta { return &s.SyncMeta },
		listAll:     e.local.ListSuppliers,
		listPending: e.local.ListPendingSuppliers,
		put:         e.local.PutSupplier,
		encode:      remote.EncodeSupplier,
		decode:      remote.DecodeSupplier,
		prune:       e.pruneSupplier,
	}
}

func (e *Engine) products() binding[domain.Product] {
	return binding[domain.Product]{
		name:        domain.CollectionProducts,
		idPrefix:    "prod",
		meta:        func(p *domain.Product) *domain.SyncMeta { return &p.SyncMeta },
		listAll:     e.local.ListProducts,
		listPending: e.local.ListPendingProducts,
		put:         e.local.PutProduct,
		encode:      remote.EncodeProduct,
		decode:      remote.DecodeProduct,
		prune:       e.pruneProduct,
	}
}

func (e *Engine) imeis() binding[domain.IMEIRecord] {
	return binding[domain.IMEIRecord]{
		name:        domain.CollectionIMEIs,
		idPrefix:    "imei",
		meta:        func(r *domain.IMEIRecord) *domain.SyncMeta { return &r.SyncMeta },
		listAll:     e.local.ListIMEIs,
		listPending: e.local.ListPendingIMEIs,
		put:         e.local.PutIMEI,
		encode:      remote.EncodeIMEI,
		decode:      remote.DecodeIMEI,
		prune:       e.local.DeleteIMEI,
		prepare: func(ctx context.Context, r *domain.IMEIRecord) (bool, error) {
			return e.parentUnsynced(ctx, func() (*domain.SyncMeta, error) {
				p, err := e.local.GetProduct(ctx, r.ProductID)
				if err != nil {
					return nil, err
				}
				return &p.SyncMeta, nil
			})
		},
	}
}

func (e *Engine) sales() binding[domain.Sale] {
	return binding[domain.Sale]{
		name:        domain.CollectionSales,
		idPrefix:    "sale",
		meta:        func(s *domain.Sale) *domain.SyncMeta { return &s.SyncMeta },
		listAll:     e.local.ListSales,
		listPending: e.local.ListPendingSales,
		put:         e.local.PutSale,
		encode:      remote.EncodeSale,
		decode:      remote.DecodeSale,
		prune:       e.pruneSale,
		prepare: func(ctx context.Context, s *domain.Sale) (bool, error) {
			if s.CustomerID == "" {
				return false, nil
			}
			cust, err := e.local.GetCustomer(ctx, s.CustomerID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return false, nil
				}
				return false, err
			}
			if cust.RemoteID == "" {
				return true, nil
			}
			s.CustomerRemoteID = cust.RemoteID
			return false, nil
		},
	}
}

func (e *Engine) purchases() binding[domain.Purchase] {
	return binding[domain.Purchase]{
		name:        domain.CollectionPurchases,
		idPrefix:    "pur",
		meta:        func(p *domain.Purchase) *domain.SyncMeta { return &p.SyncMeta },
		listAll:     e.local.ListPurchases,
		listPending: e.local.ListPendingPurchases,
		put:         e.local.PutPurchase,
		encode:      remote.EncodePurchase,
		decode:      remote.DecodePurchase,
		prune:       e.prunePurchase,
		prepare: func(ctx context.Context, p *domain.Purchase) (bool, error) {
			if p.SupplierID == "" {
				return false, nil
			}
			sup, err := e.local.GetSupplier(ctx, p.SupplierID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return false, nil
				}
				return false, err
			}
			if sup.RemoteID == "" {
				return true, nil
			}
			p.SupplierRemoteID = sup.RemoteID
			return false, nil
		},
	}
}

func (e *Engine) saleReturns() binding[domain.SaleReturn] {
	return binding[domain.SaleReturn]{
		name:        domain.CollectionSaleReturns,
		idPrefix:    "sret",
		meta:        func(r *domain.SaleReturn) *domain.SyncMeta { return &r.SyncMeta },
		listAll:     e.local.ListSaleReturns,
		listPending: e.local.ListPendingSaleReturns,
		put:         e.local.PutSaleReturn,
		encode:      remote.EncodeSaleReturn,
		decode:      remote.DecodeSaleReturn,
		prune:       e.local.DeleteSaleReturn,
		prepare: func(ctx context.Context, r *domain.SaleReturn) (bool, error) {
			return e.parentUnsynced(ctx, func() (*domain.SyncMeta, error) {
				s, err := e.local.GetSale(ctx, r.SaleID)
				if err != nil {
					return nil, err
				}
				return &s.SyncMeta, nil
			})
		},
	}
}

func (e *Engine) purchaseReturns() binding[domain.PurchaseReturn] {
	return binding[domain.PurchaseReturn]{
		name:        domain.CollectionPurchaseReturns,
		idPrefix:    "pret",
		meta:        func(r *domain.PurchaseReturn) *domain.SyncMeta { return &r.SyncMeta },
		listAll:     e.local.ListPurchaseReturns,
		listPending: e.local.ListPendingPurchaseReturns,
		put:         e.local.PutPurchaseReturn,
		encode:      remote.EncodePurchaseReturn,
		decode:      remote.DecodePurchaseReturn,
		prune:       e.local.DeletePurchaseReturn,
		prepare: func(ctx context.Context, r *domain.PurchaseReturn) (bool, error) {
			return e.parentUnsynced(ctx, func() (*domain.SyncMeta, error) {
				p, err := e.local.GetPurchase(ctx, r.PurchaseID)
				if err != nil {
					return nil, err
				}
				return &p.SyncMeta, nil
			})
		},
	}
}

func (e *Engine) customerLedger() binding[domain.CustomerLedgerEntry] {
	return binding[domain.CustomerLedgerEntry]{
		name:        domain.CollectionCustomerLedger,
		idPrefix:    "cled",
		meta:        func(l *domain.CustomerLedgerEntry) *domain.SyncMeta { return &l.SyncMeta },
		listAll:     e.local.ListCustomerLedgers,
		listPending: e.local.ListPendingCustomerLedgers,
		put:         e.local.PutCustomerLedger,
		encode:      remote.EncodeCustomerLedger,
		decode:      remote.DecodeCustomerLedger,
		prune:       e.local.DeleteCustomerLedger,
		prepare: func(ctx context.Context, l *domain.CustomerLedgerEntry) (bool, error) {
			return e.parentUnsynced(ctx, func() (*domain.SyncMeta, error) {
				c, err := e.local.GetCustomer(ctx, l.CustomerID)
				if err != nil {
					return nil, err
				}
				return &c.SyncMeta, nil
			})
		},
	}
}

func (e *Engine) supplierLedger() binding[domain.SupplierLedgerEntry] {
	return binding[domain.SupplierLedgerEntry]{
		name:        domain.CollectionSupplierLedger,
		idPrefix:    "sled",
		meta:        func(l *domain.SupplierLedgerEntry) *domain.SyncMeta { return &l.SyncMeta },
		listAll:     e.local.ListSupplierLedgers,
		listPending: e.local.ListPendingSupplierLedgers,
		put:         e.local.PutSupplierLedger,
		encode:      remote.EncodeSupplierLedger,
		decode:      remote.DecodeSupplierLedger,
		prune:       e.local.DeleteSupplierLedger,
		prepare: func(ctx context.Context, l *domain.SupplierLedgerEntry) (bool, error) {
			return e.parentUnsynced(ctx, func() (*domain.SyncMeta, error) {
				s, err := e.local.GetSupplier(ctx, l.SupplierID)
				if err != nil {
					return nil, err
				}
				return &s.SyncMeta, nil
			})
		},
	}
}

func (e *Engine) expenses() binding[domain.Expense] {
	return binding[domain.Expense]{
		name:        domain.CollectionExpenses,
		idPrefix:    "exp",
		meta:        func(x *domain.Expense) *domain.SyncMeta { return &x.SyncMeta },
		listAll:     e.local.ListExpenses,
		listPending: e.local.ListPendingExpenses,
		put:         e.local.PutExpense,
		encode:      remote.EncodeExpense,
		decode:      remote.DecodeExpense,
		prune:       e.local.DeleteExpense,
	}
}

// parentUnsynced reports whether a push must wait for its parent to get a
// remote id. A parent missing locally does not block; orphaned records
// still belong on the replica.
func (e *Engine) parentUnsynced(ctx context.Context, lookup func() (*domain.SyncMeta, error)) (bool, error) {
	meta, err := lookup()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return meta.RemoteID == "", nil
}
