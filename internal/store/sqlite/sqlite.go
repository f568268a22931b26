// Package sqlite is the durable local store behind the counter terminal.
// One file on disk, WAL mode, schema migrated on open. Line items and
// variations are serialized into JSON columns; the local store never
// joins across entities, the service layer walks references itself.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = sqlDB.Exec("PRAGMA busy_timeout = 5000;")

	if err := db.AutoMigrate(
		&domain.Customer{},
		&domain.Supplier{},
		&domain.Product{},
		&domain.IMEIRecord{},
		&domain.Sale{},
		&domain.Purchase{},
		&domain.SaleReturn{},
		&domain.PurchaseReturn{},
		&domain.CustomerLedgerEntry{},
		&domain.SupplierLedgerEntry{},
		&domain.Expense{},
		&domain.Tombstone{},
	); err != nil {
		return nil, fmt.Errorf("migrate local db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func put[T any](ctx context.Context, db *gorm.DB, localID string, v T) error {
	if localID == "" {
		return store.ErrValidation
	}
	return db.WithContext(ctx).Save(&v).Error
}

func get[T any](ctx context.Context, db *gorm.DB, localID string) (*T, error) {
	var v T
	err := db.WithContext(ctx).First(&v, "local_id = ?", localID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, db *gorm.DB, order string, query string, args ...any) ([]T, error) {
	out := make([]T, 0, 32)
	tx := db.WithContext(ctx).Order(order)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func del[T any](ctx context.Context, db *gorm.DB, localID string) error {
	var v T
	res := db.WithContext(ctx).Delete(&v, "local_id = ?", localID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const creationOrder = "created_at, local_id"

// --- customers ---

func (s *Store) PutCustomer(ctx context.Context, c domain.Customer) error {
	return put(ctx, s.db, c.LocalID, c)
}

func (s *Store) GetCustomer(ctx context.Context, localID string) (*domain.Customer, error) {
	return get[domain.Customer](ctx, s.db, localID)
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return list[domain.Customer](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingCustomers(ctx context.Context) ([]domain.Customer, error) {
	return list[domain.Customer](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteCustomer(ctx context.Context, localID string) error {
	return del[domain.Customer](ctx, s.db, localID)
}

// --- suppliers ---

func (s *Store) PutSupplier(ctx context.Context, sup domain.Supplier) error {
	return put(ctx, s.db, sup.LocalID, sup)
}

func (s *Store) GetSupplier(ctx context.Context, localID string) (*domain.Supplier, error) {
	return get[domain.Supplier](ctx, s.db, localID)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return list[domain.Supplier](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return list[domain.Supplier](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteSupplier(ctx context.Context, localID string) error {
	return del[domain.Supplier](ctx, s.db, localID)
}

// --- products ---

func (s *Store) PutProduct(ctx context.Context, p domain.Product) error {
	return put(ctx, s.db, p.LocalID, p)
}

func (s *Store) GetProduct(ctx context.Context, localID string) (*domain.Product, error) {
	return get[domain.Product](ctx, s.db, localID)
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return list[domain.Product](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingProducts(ctx context.Context) ([]domain.Product, error) {
	return list[domain.Product](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteProduct(ctx context.Context, localID string) error {
	return del[domain.Product](ctx, s.db, localID)
}

// --- imeis ---

func (s *Store) PutIMEI(ctx context.Context, rec domain.IMEIRecord) error {
	if rec.Serial == "" {
		return store.ErrValidation
	}
	return put(ctx, s.db, rec.LocalID, rec)
}

func (s *Store) GetIMEI(ctx context.Context, localID string) (*domain.IMEIRecord, error) {
	return get[domain.IMEIRecord](ctx, s.db, localID)
}

func (s *Store) GetLiveIMEIBySerial(ctx context.Context, serial string) (*domain.IMEIRecord, error) {
	var rec domain.IMEIRecord
	err := s.db.WithContext(ctx).
		Where("serial = ? AND status <> ?", serial, domain.IMEIReturned).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListIMEIs(ctx context.Context) ([]domain.IMEIRecord, error) {
	return list[domain.IMEIRecord](ctx, s.db, creationOrder, "")
}

func (s *Store) ListIMEIsByProduct(ctx context.Context, productID string) ([]domain.IMEIRecord, error) {
	return list[domain.IMEIRecord](ctx, s.db, creationOrder, "product_id = ?", productID)
}

func (s *Store) ListPendingIMEIs(ctx context.Context) ([]domain.IMEIRecord, error) {
	return list[domain.IMEIRecord](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteIMEI(ctx context.Context, localID string) error {
	return del[domain.IMEIRecord](ctx, s.db, localID)
}

// --- sales ---

func (s *Store) PutSale(ctx context.Context, sale domain.Sale) error {
	return put(ctx, s.db, sale.LocalID, sale)
}

func (s *Store) GetSale(ctx context.Context, localID string) (*domain.Sale, error) {
	return get[domain.Sale](ctx, s.db, localID)
}

func (s *Store) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return list[domain.Sale](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingSales(ctx context.Context) ([]domain.Sale, error) {
	return list[domain.Sale](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteSale(ctx context.Context, localID string) error {
	return del[domain.Sale](ctx, s.db, localID)
}

// --- purchases ---

func (s *Store) PutPurchase(ctx context.Context, p domain.Purchase) error {
	return put(ctx, s.db, p.LocalID, p)
}

func (s *Store) GetPurchase(ctx context.Context, localID string) (*domain.Purchase, error) {
	return get[domain.Purchase](ctx, s.db, localID)
}

func (s *Store) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return list[domain.Purchase](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return list[domain.Purchase](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeletePurchase(ctx context.Context, localID string) error {
	return del[domain.Purchase](ctx, s.db, localID)
}

// --- sale returns ---

func (s *Store) PutSaleReturn(ctx context.Context, r domain.SaleReturn) error {
	return put(ctx, s.db, r.LocalID, r)
}

func (s *Store) GetSaleReturn(ctx context.Context, localID string) (*domain.SaleReturn, error) {
	return get[domain.SaleReturn](ctx, s.db, localID)
}

func (s *Store) ListSaleReturns(ctx context.Context) ([]domain.SaleReturn, error) {
	return list[domain.SaleReturn](ctx, s.db, creationOrder, "")
}

func (s *Store) ListSaleReturnsBySale(ctx context.Context, saleID string) ([]domain.SaleReturn, error) {
	return list[domain.SaleReturn](ctx, s.db, creationOrder, "sale_id = ?", saleID)
}

func (s *Store) ListPendingSaleReturns(ctx context.Context) ([]domain.SaleReturn, error) {
	return list[domain.SaleReturn](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteSaleReturn(ctx context.Context, localID string) error {
	return del[domain.SaleReturn](ctx, s.db, localID)
}

// --- purchase returns ---

func (s *Store) PutPurchaseReturn(ctx context.Context, r domain.PurchaseReturn) error {
	return put(ctx, s.db, r.LocalID, r)
}

func (s *Store) GetPurchaseReturn(ctx context.Context, localID string) (*domain.PurchaseReturn, error) {
	return get[domain.PurchaseReturn](ctx, s.db, localID)
}

func (s *Store) ListPurchaseReturns(ctx context.Context) ([]domain.PurchaseReturn, error) {
	return list[domain.PurchaseReturn](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPurchaseReturnsByPurchase(ctx context.Context, purchaseID string) ([]domain.PurchaseReturn, error) {
	return list[domain.PurchaseReturn](ctx, s.db, creationOrder, "purchase_id = ?", purchaseID)
}

func (s *Store) ListPendingPurchaseReturns(ctx context.Context) ([]domain.PurchaseReturn, error) {
	return list[domain.PurchaseReturn](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeletePurchaseReturn(ctx context.Context, localID string) error {
	return del[domain.PurchaseReturn](ctx, s.db, localID)
}

// --- customer ledger ---

func (s *Store) PutCustomerLedger(ctx context.Context, e domain.CustomerLedgerEntry) error {
	if e.CustomerID == "" {
		return store.ErrValidation
	}
	return put(ctx, s.db, e.LocalID, e)
}

func (s *Store) GetCustomerLedger(ctx context.Context, localID string) (*domain.CustomerLedgerEntry, error) {
	return get[domain.CustomerLedgerEntry](ctx, s.db, localID)
}

func (s *Store) ListCustomerLedgers(ctx context.Context) ([]domain.CustomerLedgerEntry, error) {
	return list[domain.CustomerLedgerEntry](ctx, s.db, creationOrder, "")
}

func (s *Store) ListCustomerLedgerByCustomer(ctx context.Context, customerID string) ([]domain.CustomerLedgerEntry, error) {
	return list[domain.CustomerLedgerEntry](ctx, s.db, "date, created_at, local_id", "customer_id = ?", customerID)
}

func (s *Store) ListPendingCustomerLedgers(ctx context.Context) ([]domain.CustomerLedgerEntry, error) {
	return list[domain.CustomerLedgerEntry](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteCustomerLedger(ctx context.Context, localID string) error {
	return del[domain.CustomerLedgerEntry](ctx, s.db, localID)
}

// --- supplier ledger ---

func (s *Store) PutSupplierLedger(ctx context.Context, e domain.SupplierLedgerEntry) error {
	if e.SupplierID == "" {
		return store.ErrValidation
	}
	return put(ctx, s.db, e.LocalID, e)
}

func (s *Store) GetSupplierLedger(ctx context.Context, localID string) (*domain.SupplierLedgerEntry, error) {
	return get[domain.SupplierLedgerEntry](ctx, s.db, localID)
}

func (s *Store) ListSupplierLedgers(ctx context.Context) ([]domain.SupplierLedgerEntry, error) {
	return list[domain.SupplierLedgerEntry](ctx, s.db, creationOrder, "")
}

func (s *Store) ListSupplierLedgerBySupplier(ctx context.Context, supplierID string) ([]domain.SupplierLedgerEntry, error) {
	return list[domain.SupplierLedgerEntry](ctx, s.db, "date, created_at, local_id", "supplier_id = ?", supplierID)
}

func (s *Store) ListPendingSupplierLedgers(ctx context.Context) ([]domain.SupplierLedgerEntry, error) {
	return list[domain.SupplierLedgerEntry](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteSupplierLedger(ctx context.Context, localID string) error {
	return del[domain.SupplierLedgerEntry](ctx, s.db, localID)
}

// --- expenses ---

func (s *Store) PutExpense(ctx context.Context, e domain.Expense) error {
	return put(ctx, s.db, e.LocalID, e)
}

func (s *Store) GetExpense(ctx context.Context, localID string) (*domain.Expense, error) {
	return get[domain.Expense](ctx, s.db, localID)
}

func (s *Store) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return list[domain.Expense](ctx, s.db, creationOrder, "")
}

func (s *Store) ListPendingExpenses(ctx context.Context) ([]domain.Expense, error) {
	return list[domain.Expense](ctx, s.db, creationOrder, "sync_status = ?", domain.SyncPending)
}

func (s *Store) DeleteExpense(ctx context.Context, localID string) error {
	return del[domain.Expense](ctx, s.db, localID)
}

// --- tombstones ---

func (s *Store) PutTombstone(ctx context.Context, t domain.Tombstone) error {
	if t.ID == "" || t.RemoteID == "" || t.EntityType == "" {
		return store.ErrValidation
	}
	return s.db.WithContext(ctx).Save(&t).Error
}

func (s *Store) ListTombstones(ctx context.Context) ([]domain.Tombstone, error) {
	out := make([]domain.Tombstone, 0, 16)
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteTombstone(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Tombstone{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
