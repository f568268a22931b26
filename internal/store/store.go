package store

import (
	"context"
	"errors"

	"ponselpos/backend/internal/domain"
)

// Error taxonomy. Local store failures are the only class treated as fatal
// to a calling operation; remote sync failures never travel through here.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateIMEI     = errors.New("duplicate imei")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Local is the local record store: one durable keyspace per entity type,
// keyed by local_id, with secondary lookups on sync_status and on the
// foreign keys the cascades query by. Every method works without network
// availability.
//
// Put is an upsert: the caller owns SyncStatus and the store never touches
// it. ListPending* is the sync outbox query.
type Local interface {
	PutCustomer(ctx context.Context, c domain.Customer) error
	GetCustomer(ctx context.Context, localID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListPendingCustomers(ctx context.Context) ([]domain.Customer, error)
	DeleteCustomer(ctx context.Context, localID string) error

	PutSupplier(ctx context.Context, s domain.Supplier) error
	GetSupplier(ctx context.Context, localID string) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	ListPendingSuppliers(ctx context.Context) ([]domain.Supplier, error)
	DeleteSupplier(ctx context.Context, localID string) error

	PutProduct(ctx context.Context, p domain.Product) error
	GetProduct(ctx context.Context, localID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListPendingProducts(ctx context.Context) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, localID string) error

	PutIMEI(ctx context.Context, rec domain.IMEIRecord) error
	GetIMEI(ctx context.Context, localID string) (*domain.IMEIRecord, error)
	// GetLiveIMEIBySerial returns the record holding the serial whose status
	// is not terminal-returned; ErrNotFound when no live record exists.
	GetLiveIMEIBySerial(ctx context.Context, serial string) (*domain.IMEIRecord, error)
	ListIMEIs(ctx context.Context) ([]domain.IMEIRecord, error)
	ListIMEIsByProduct(ctx context.Context, productID string) ([]domain.IMEIRecord, error)
	ListPendingIMEIs(ctx context.Context) ([]domain.IMEIRecord, error)
	DeleteIMEI(ctx context.Context, localID string) error

	PutSale(ctx context.Context, s domain.Sale) error
	GetSale(ctx context.Context, localID string) (*domain.Sale, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	ListPendingSales(ctx context.Context) ([]domain.Sale, error)
	DeleteSale(ctx context.Context, localID string) error

	PutPurchase(ctx context.Context, p domain.Purchase) error
	GetPurchase(ctx context.Context, localID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context) ([]domain.Purchase, error)
	ListPendingPurchases(ctx context.Context) ([]domain.Purchase, error)
	DeletePurchase(ctx context.Context, localID string) error

	PutSaleReturn(ctx context.Context, r domain.SaleReturn) error
	GetSaleReturn(ctx context.Context, localID string) (*domain.SaleReturn, error)
	ListSaleReturns(ctx context.Context) ([]domain.SaleReturn, error)
	ListSaleReturnsBySale(ctx context.Context, saleID string) ([]domain.SaleReturn, error)
	ListPendingSaleReturns(ctx context.Context) ([]domain.SaleReturn, error)
	DeleteSaleReturn(ctx context.Context, localID string) error

	PutPurchaseReturn(ctx context.Context, r domain.PurchaseReturn) error
	GetPurchaseReturn(ctx context.Context, localID string) (*domain.PurchaseReturn, error)
	ListPurchaseReturns(ctx context.Context) ([]domain.PurchaseReturn, error)
	ListPurchaseReturnsByPurchase(ctx context.Context, purchaseID string) ([]domain.PurchaseReturn, error)
	ListPendingPurchaseReturns(ctx context.Context) ([]domain.PurchaseReturn, error)
	DeletePurchaseReturn(ctx context.Context, localID string) error

	PutCustomerLedger(ctx context.Context, e domain.CustomerLedgerEntry) error
	GetCustomerLedger(ctx context.Context, localID string) (*domain.CustomerLedgerEntry, error)
	ListCustomerLedgers(ctx context.Context) ([]domain.CustomerLedgerEntry, error)
	// ListCustomerLedgerByCustomer returns entries in date order, the order
	// the balance fold consumes them in.
	ListCustomerLedgerByCustomer(ctx context.Context, customerID string) ([]domain.CustomerLedgerEntry, error)
	ListPendingCustomerLedgers(ctx context.Context) ([]domain.CustomerLedgerEntry, error)
	DeleteCustomerLedger(ctx context.Context, localID string) error

	PutSupplierLedger(ctx context.Context, e domain.SupplierLedgerEntry) error
	GetSupplierLedger(ctx context.Context, localID string) (*domain.SupplierLedgerEntry, error)
	ListSupplierLedgers(ctx context.Context) ([]domain.SupplierLedgerEntry, error)
	ListSupplierLedgerBySupplier(ctx context.Context, supplierID string) ([]domain.SupplierLedgerEntry, error)
	ListPendingSupplierLedgers(ctx context.Context) ([]domain.SupplierLedgerEntry, error)
	DeleteSupplierLedger(ctx context.Context, localID string) error

	PutExpense(ctx context.Context, e domain.Expense) error
	GetExpense(ctx context.Context, localID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	ListPendingExpenses(ctx context.Context) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, localID string) error

	PutTombstone(ctx context.Context, t domain.Tombstone) error
	ListTombstones(ctx context.Context) ([]domain.Tombstone, error)
	DeleteTombstone(ctx context.Context, id string) error
}
