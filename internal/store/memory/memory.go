package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
)

// Store is the in-memory local record store. It backs tests and dev mode;
// production runs on the SQLite store. All methods clone on the way in and
// out so callers never share slices with the store.
type Store struct {
	mu              sync.RWMutex
	customers       map[string]domain.Customer
	suppliers       map[string]domain.Supplier
	products        map[string]domain.Product
	imeis           map[string]domain.IMEIRecord
	sales           map[string]domain.Sale
	purchases       map[string]domain.Purchase
	saleReturns     map[string]domain.SaleReturn
	purchaseReturns map[string]domain.PurchaseReturn
	customerLedger  map[string]domain.CustomerLedgerEntry
	supplierLedger  map[string]domain.SupplierLedgerEntry
	expenses        map[string]domain.Expense
	tombstones      map[string]domain.Tombstone
}

func New() *Store {
	return &Store{
		customers:       make(map[string]domain.Customer),
		suppliers:       make(map[string]domain.Supplier),
		products:        make(map[string]domain.Product),
		imeis:           make(map[string]domain.IMEIRecord),
		sales:           make(map[string]domain.Sale),
		purchases:       make(map[string]domain.Purchase),
		saleReturns:     make(map[string]domain.SaleReturn),
		purchaseReturns: make(map[string]domain.PurchaseReturn),
		customerLedger:  make(map[string]domain.CustomerLedgerEntry),
		supplierLedger:  make(map[string]domain.SupplierLedgerEntry),
		expenses:        make(map[string]domain.Expense),
		tombstones:      make(map[string]domain.Tombstone),
	}
}

func touch(meta *domain.SyncMeta) {
	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
}

func byCreation(a, b domain.SyncMeta) int {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return strings.Compare(a.LocalID, b.LocalID)
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	return 1
}

// --- customers ---

func (s *Store) PutCustomer(_ context.Context, c domain.Customer) error {
	if c.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&c.SyncMeta)
	s.customers[c.LocalID] = c
	return nil
}

func (s *Store) GetCustomer(_ context.Context, localID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := c
	return &dup, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Customer) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, 0, 8)
	for _, c := range s.customers {
		if c.SyncStatus == domain.SyncPending {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Customer) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteCustomer(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.customers, localID)
	return nil
}

// --- suppliers ---

func (s *Store) PutSupplier(_ context.Context, sup domain.Supplier) error {
	if sup.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&sup.SyncMeta)
	s.suppliers[sup.LocalID] = sup
	return nil
}

func (s *Store) GetSupplier(_ context.Context, localID string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sup, ok := s.suppliers[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := sup
	return &dup, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	slices.SortFunc(out, func(a, b domain.Supplier) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Supplier, 0, 8)
	for _, sup := range s.suppliers {
		if sup.SyncStatus == domain.SyncPending {
			out = append(out, sup)
		}
	}
	slices.SortFunc(out, func(a, b domain.Supplier) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteSupplier(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.suppliers, localID)
	return nil
}

// --- products ---

func (s *Store) PutProduct(_ context.Context, p domain.Product) error {
	if p.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&p.SyncMeta)
	s.products[p.LocalID] = cloneProduct(p)
	return nil
}

func (s *Store) GetProduct(_ context.Context, localID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := cloneProduct(p)
	return &dup, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, cloneProduct(p))
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, 8)
	for _, p := range s.products {
		if p.SyncStatus == domain.SyncPending {
			out = append(out, cloneProduct(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteProduct(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, localID)
	return nil
}

// --- imeis ---

func (s *Store) PutIMEI(_ context.Context, rec domain.IMEIRecord) error {
	if rec.LocalID == "" || rec.Serial == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&rec.SyncMeta)
	s.imeis[rec.LocalID] = rec
	return nil
}

func (s *Store) GetIMEI(_ context.Context, localID string) (*domain.IMEIRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.imeis[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := rec
	return &dup, nil
}

func (s *Store) GetLiveIMEIBySerial(_ context.Context, serial string) (*domain.IMEIRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.imeis {
		if rec.Serial == serial && rec.Status != domain.IMEIReturned {
			dup := rec
			return &dup, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListIMEIs(_ context.Context) ([]domain.IMEIRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IMEIRecord, 0, len(s.imeis))
	for _, rec := range s.imeis {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b domain.IMEIRecord) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListIMEIsByProduct(_ context.Context, productID string) ([]domain.IMEIRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IMEIRecord, 0, 8)
	for _, rec := range s.imeis {
		if rec.ProductID == productID {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b domain.IMEIRecord) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingIMEIs(_ context.Context) ([]domain.IMEIRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IMEIRecord, 0, 8)
	for _, rec := range s.imeis {
		if rec.SyncStatus == domain.SyncPending {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b domain.IMEIRecord) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteIMEI(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.imeis[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.imeis, localID)
	return nil
}

// --- sales ---

func (s *Store) PutSale(_ context.Context, sale domain.Sale) error {
	if sale.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&sale.SyncMeta)
	s.sales[sale.LocalID] = cloneSale(sale)
	return nil
}

func (s *Store) GetSale(_ context.Context, localID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := cloneSale(sale)
	return &dup, nil
}

func (s *Store) ListSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, cloneSale(sale))
	}
	slices.SortFunc(out, func(a, b domain.Sale) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingSales(_ context.Context) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sale, 0, 8)
	for _, sale := range s.sales {
		if sale.SyncStatus == domain.SyncPending {
			out = append(out, cloneSale(sale))
		}
	}
	slices.SortFunc(out, func(a, b domain.Sale) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteSale(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.sales, localID)
	return nil
}

// --- purchases ---

func (s *Store) PutPurchase(_ context.Context, p domain.Purchase) error {
	if p.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&p.SyncMeta)
	s.purchases[p.LocalID] = clonePurchase(p)
	return nil
}

func (s *Store) GetPurchase(_ context.Context, localID string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := clonePurchase(p)
	return &dup, nil
}

func (s *Store) ListPurchases(_ context.Context) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, clonePurchase(p))
	}
	slices.SortFunc(out, func(a, b domain.Purchase) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingPurchases(_ context.Context) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Purchase, 0, 8)
	for _, p := range s.purchases {
		if p.SyncStatus == domain.SyncPending {
			out = append(out, clonePurchase(p))
		}
	}
	slices.SortFunc(out, func(a, b domain.Purchase) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeletePurchase(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.purchases, localID)
	return nil
}

// --- sale returns ---

func (s *Store) PutSaleReturn(_ context.Context, r domain.SaleReturn) error {
	if r.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&r.SyncMeta)
	s.saleReturns[r.LocalID] = cloneSaleReturn(r)
	return nil
}

func (s *Store) GetSaleReturn(_ context.Context, localID string) (*domain.SaleReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.saleReturns[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := cloneSaleReturn(r)
	return &dup, nil
}

func (s *Store) ListSaleReturns(_ context.Context) ([]domain.SaleReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SaleReturn, 0, len(s.saleReturns))
	for _, r := range s.saleReturns {
		out = append(out, cloneSaleReturn(r))
	}
	slices.SortFunc(out, func(a, b domain.SaleReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListSaleReturnsBySale(_ context.Context, saleID string) ([]domain.SaleReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SaleReturn, 0, 4)
	for _, r := range s.saleReturns {
		if r.SaleID == saleID {
			out = append(out, cloneSaleReturn(r))
		}
	}
	slices.SortFunc(out, func(a, b domain.SaleReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingSaleReturns(_ context.Context) ([]domain.SaleReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SaleReturn, 0, 4)
	for _, r := range s.saleReturns {
		if r.SyncStatus == domain.SyncPending {
			out = append(out, cloneSaleReturn(r))
		}
	}
	slices.SortFunc(out, func(a, b domain.SaleReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteSaleReturn(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saleReturns[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.saleReturns, localID)
	return nil
}

// --- purchase returns ---

func (s *Store) PutPurchaseReturn(_ context.Context, r domain.PurchaseReturn) error {
	if r.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&r.SyncMeta)
	s.purchaseReturns[r.LocalID] = clonePurchaseReturn(r)
	return nil
}

func (s *Store) GetPurchaseReturn(_ context.Context, localID string) (*domain.PurchaseReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.purchaseReturns[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := clonePurchaseReturn(r)
	return &dup, nil
}

func (s *Store) ListPurchaseReturns(_ context.Context) ([]domain.PurchaseReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PurchaseReturn, 0, len(s.purchaseReturns))
	for _, r := range s.purchaseReturns {
		out = append(out, clonePurchaseReturn(r))
	}
	slices.SortFunc(out, func(a, b domain.PurchaseReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPurchaseReturnsByPurchase(_ context.Context, purchaseID string) ([]domain.PurchaseReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PurchaseReturn, 0, 4)
	for _, r := range s.purchaseReturns {
		if r.PurchaseID == purchaseID {
			out = append(out, clonePurchaseReturn(r))
		}
	}
	slices.SortFunc(out, func(a, b domain.PurchaseReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingPurchaseReturns(_ context.Context) ([]domain.PurchaseReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PurchaseReturn, 0, 4)
	for _, r := range s.purchaseReturns {
		if r.SyncStatus == domain.SyncPending {
			out = append(out, clonePurchaseReturn(r))
		}
	}
	slices.SortFunc(out, func(a, b domain.PurchaseReturn) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeletePurchaseReturn(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchaseReturns[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.purchaseReturns, localID)
	return nil
}

// --- customer ledger ---

func (s *Store) PutCustomerLedger(_ context.Context, e domain.CustomerLedgerEntry) error {
	if e.LocalID == "" || e.CustomerID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&e.SyncMeta)
	s.customerLedger[e.LocalID] = e
	return nil
}

func (s *Store) GetCustomerLedger(_ context.Context, localID string) (*domain.CustomerLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.customerLedger[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := e
	return &dup, nil
}

func (s *Store) ListCustomerLedgers(_ context.Context) ([]domain.CustomerLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CustomerLedgerEntry, 0, len(s.customerLedger))
	for _, e := range s.customerLedger {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.CustomerLedgerEntry) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListCustomerLedgerByCustomer(_ context.Context, customerID string) ([]domain.CustomerLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CustomerLedgerEntry, 0, 16)
	for _, e := range s.customerLedger {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.CustomerLedgerEntry) int {
		if a.Date != b.Date {
			return strings.Compare(a.Date, b.Date)
		}
		return byCreation(a.SyncMeta, b.SyncMeta)
	})
	return out, nil
}

func (s *Store) ListPendingCustomerLedgers(_ context.Context) ([]domain.CustomerLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CustomerLedgerEntry, 0, 8)
	for _, e := range s.customerLedger {
		if e.SyncStatus == domain.SyncPending {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.CustomerLedgerEntry) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteCustomerLedger(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customerLedger[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.customerLedger, localID)
	return nil
}

// --- supplier ledger ---

func (s *Store) PutSupplierLedger(_ context.Context, e domain.SupplierLedgerEntry) error {
	if e.LocalID == "" || e.SupplierID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&e.SyncMeta)
	s.supplierLedger[e.LocalID] = e
	return nil
}

func (s *Store) GetSupplierLedger(_ context.Context, localID string) (*domain.SupplierLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.supplierLedger[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := e
	return &dup, nil
}

func (s *Store) ListSupplierLedgers(_ context.Context) ([]domain.SupplierLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SupplierLedgerEntry, 0, len(s.supplierLedger))
	for _, e := range s.supplierLedger {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.SupplierLedgerEntry) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListSupplierLedgerBySupplier(_ context.Context, supplierID string) ([]domain.SupplierLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SupplierLedgerEntry, 0, 16)
	for _, e := range s.supplierLedger {
		if e.SupplierID == supplierID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.SupplierLedgerEntry) int {
		if a.Date != b.Date {
			return strings.Compare(a.Date, b.Date)
		}
		return byCreation(a.SyncMeta, b.SyncMeta)
	})
	return out, nil
}

func (s *Store) ListPendingSupplierLedgers(_ context.Context) ([]domain.SupplierLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SupplierLedgerEntry, 0, 8)
	for _, e := range s.supplierLedger {
		if e.SyncStatus == domain.SyncPending {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.SupplierLedgerEntry) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteSupplierLedger(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.supplierLedger[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.supplierLedger, localID)
	return nil
}

// --- expenses ---

func (s *Store) PutExpense(_ context.Context, e domain.Expense) error {
	if e.LocalID == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	touch(&e.SyncMeta)
	s.expenses[e.LocalID] = e
	return nil
}

func (s *Store) GetExpense(_ context.Context, localID string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	dup := e
	return &dup, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b domain.Expense) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) ListPendingExpenses(_ context.Context) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Expense, 0, 8)
	for _, e := range s.expenses {
		if e.SyncStatus == domain.SyncPending {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.Expense) int { return byCreation(a.SyncMeta, b.SyncMeta) })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, localID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[localID]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, localID)
	return nil
}

// --- tombstones ---

func (s *Store) PutTombstone(_ context.Context, t domain.Tombstone) error {
	if t.ID == "" || t.RemoteID == "" || t.EntityType == "" {
		return store.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.tombstones[t.ID] = t
	return nil
}

func (s *Store) ListTombstones(_ context.Context) ([]domain.Tombstone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Tombstone, 0, len(s.tombstones))
	for _, t := range s.tombstones {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Tombstone) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return out, nil
}

func (s *Store) DeleteTombstone(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tombstones[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tombstones, id)
	return nil
}

// --- clone helpers ---

func cloneProduct(src domain.Product) domain.Product {
	dup := src
	dup.Variations = append([]domain.Variation(nil), src.Variations...)
	return dup
}

func cloneSale(src domain.Sale) domain.Sale {
	dup := src
	items := make([]domain.SaleItem, len(src.Items))
	copy(items, src.Items)
	for i := range items {
		items[i].IMEIs = append([]string(nil), src.Items[i].IMEIs...)
	}
	dup.Items = items
	return dup
}

func clonePurchase(src domain.Purchase) domain.Purchase {
	dup := src
	items := make([]domain.PurchaseItem, len(src.Items))
	copy(items, src.Items)
	for i := range items {
		items[i].IMEIs = append([]string(nil), src.Items[i].IMEIs...)
	}
	dup.Items = items
	return dup
}

func cloneSaleReturn(src domain.SaleReturn) domain.SaleReturn {
	dup := src
	dup.IMEIs = append([]string(nil), src.IMEIs...)
	return dup
}

func clonePurchaseReturn(src domain.PurchaseReturn) domain.PurchaseReturn {
	dup := src
	dup.IMEIs = append([]string(nil), src.IMEIs...)
	return dup
}
