// Package service orchestrates business transactions over the local
// store. A transaction is a cascade of plain writes, not a database
// transaction: validation runs up front, the primary record lands first,
// and the follow-up steps run best-effort with failures logged. Every
// write goes out sync-pending; the sync manager is poked after each
// completed cascade and reconciliation happens in the background.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ponselpos/backend/internal/cache"
	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/imei"
	"ponselpos/backend/internal/ledger"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/xid"
)

const ledgerCacheTTL = 5 * time.Minute

// Notifier is poked after every completed cascade. The sync manager
// satisfies it; tests pass nil.
type Notifier interface {
	Kick()
}

type Service struct {
	local    store.Local
	imeis    *imei.Tracker
	ledgers  cache.LedgerCache
	notifier Notifier
	shopName string

	locks keyedLocks
}

func New(local store.Local, ledgers cache.LedgerCache, notifier Notifier, shopName string) *Service {
	if ledgers == nil {
		ledgers = cache.NoopLedgerCache{}
	}
	if shopName == "" {
		shopName = "PonselPOS"
	}
	return &Service{
		local:    local,
		imeis:    imei.NewTracker(local),
		ledgers:  ledgers,
		notifier: notifier,
		shopName: shopName,
	}
}

// keyedLocks serializes cascades per entity key. Two sales against the
// same customer queue up; sales against different customers proceed in
// parallel.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*entityLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &entityLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (s *Service) kick() {
	if s.notifier != nil {
		s.notifier.Kick()
	}
}

// tombstone records a pending remote delete. Records never pushed have
// nothing to delete remotely and need no tombstone.
func (s *Service) tombstone(ctx context.Context, collection, remoteID string) {
	if remoteID == "" {
		return
	}
	err := s.local.PutTombstone(ctx, domain.Tombstone{
		ID:         xid.New("tomb"),
		EntityType: collection,
		RemoteID:   remoteID,
	})
	if err != nil {
		log.Printf("[service] WARN: failed to write tombstone %s/%s: %v", collection, remoteID, err)
	}
}

func normalizeDate(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now().Format(domain.DateLayout), nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		// Date-only input is common from the UI.
		d, derr := time.Parse("2006-01-02", raw)
		if derr != nil {
			return "", fmt.Errorf("%w: bad date %q", store.ErrValidation, raw)
		}
		t = d
	}
	return t.Format(domain.DateLayout), nil
}

func normalizeBalanceType(raw string) (string, error) {
	switch raw {
	case "", domain.BalancePayable:
		return domain.BalancePayable, nil
	case domain.BalanceReceivable:
		return domain.BalanceReceivable, nil
	default:
		return "", fmt.Errorf("%w: bad balance type %q", store.ErrValidation, raw)
	}
}

// --- customers ---

func (s *Service) AddCustomer(ctx context.Context, req domain.CustomerRequest) (*domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", store.ErrValidation)
	}
	if req.OpeningBalanceCents < 0 {
		return nil, fmt.Errorf("%w: opening balance must not be negative", store.ErrValidation)
	}
	balType, err := normalizeBalanceType(req.BalanceType)
	if err != nil {
		return nil, err
	}

	cust := domain.Customer{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("cus"),
			SyncStatus: domain.SyncPending,
		},
		Name:                req.Name,
		Phone:               strings.TrimSpace(req.Phone),
		Address:             strings.TrimSpace(req.Address),
		OpeningBalanceCents: req.OpeningBalanceCents,
		BalanceType:         balType,
	}
	bal := ledger.RecomputeCustomer(cust.OpeningBalanceCents, cust.BalanceType, nil)
	cust.CurrentBalanceCents = bal.AmountCents

	if err := s.local.PutCustomer(ctx, cust); err != nil {
		return nil, err
	}
	s.kick()
	return &cust, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, localID string, req domain.CustomerRequest) (*domain.Customer, error) {
	unlock := s.locks.lock(localID)
	defer unlock()

	cust, err := s.local.GetCustomer(ctx, localID)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", store.ErrValidation)
	}
	balType, err := normalizeBalanceType(req.BalanceType)
	if err != nil {
		return nil, err
	}

	cust.Name = req.Name
	cust.Phone = strings.TrimSpace(req.Phone)
	cust.Address = strings.TrimSpace(req.Address)
	cust.OpeningBalanceCents = req.OpeningBalanceCents
	cust.BalanceType = balType
	cust.SyncStatus = domain.SyncPending

	if err := s.recomputeCustomerBalance(ctx, cust); err != nil {
		return nil, err
	}
	if err := s.local.PutCustomer(ctx, *cust); err != nil {
		return nil, err
	}
	s.invalidateLedger(ctx, localID)
	s.kick()
	return cust, nil
}

// DeleteCustomer removes the customer and every ledger entry hanging off
// it. Sales the customer made are kept; they carry the name snapshot.
func (s *Service) DeleteCustomer(ctx context.Context, localID string) error {
	unlock := s.locks.lock(localID)
	defer unlock()

	cust, err := s.local.GetCustomer(ctx, localID)
	if err != nil {
		return err
	}

	entries, err := s.local.ListCustomerLedgerByCustomer(ctx, localID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.local.DeleteCustomerLedger(ctx, e.LocalID); err != nil {
			log.Printf("[service] WARN: delete ledger entry %s: %v", e.LocalID, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionCustomerLedger, e.RemoteID)
	}

	if err := s.local.DeleteCustomer(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionCustomers, cust.RemoteID)
	s.invalidateLedger(ctx, localID)
	s.kick()
	return nil
}

func (s *Service) GetCustomer(ctx context.Context, localID string) (*domain.Customer, error) {
	return s.local.GetCustomer(ctx, localID)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.local.ListCustomers(ctx)
}

// --- suppliers ---

func (s *Service) AddSupplier(ctx context.Context, req domain.SupplierRequest) (*domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", store.ErrValidation)
	}
	if req.OpeningBalanceCents < 0 {
		return nil, fmt.Errorf("%w: opening balance must not be negative", store.ErrValidation)
	}
	balType, err := normalizeBalanceType(req.BalanceType)
	if err != nil {
		return nil, err
	}

	sup := domain.Supplier{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("sup"),
			SyncStatus: domain.SyncPending,
		},
		Name:                req.Name,
		Phone:               strings.TrimSpace(req.Phone),
		Address:             strings.TrimSpace(req.Address),
		OpeningBalanceCents: req.OpeningBalanceCents,
		BalanceType:         balType,
	}
	bal := ledger.RecomputeSupplier(sup.OpeningBalanceCents, sup.BalanceType, nil)
	sup.CurrentBalanceCents = bal.AmountCents
	sup.CurrentBalanceType = bal.Type

	if err := s.local.PutSupplier(ctx, sup); err != nil {
		return nil, err
	}
	s.kick()
	return &sup, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, localID string, req domain.SupplierRequest) (*domain.Supplier, error) {
	unlock := s.locks.lock(localID)
	defer unlock()

	sup, err := s.local.GetSupplier(ctx, localID)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: supplier name is required", store.ErrValidation)
	}
	balType, err := normalizeBalanceType(req.BalanceType)
	if err != nil {
		return nil, err
	}

	sup.Name = req.Name
	sup.Phone = strings.TrimSpace(req.Phone)
	sup.Address = strings.TrimSpace(req.Address)
	sup.OpeningBalanceCents = req.OpeningBalanceCents
	sup.BalanceType = balType
	sup.SyncStatus = domain.SyncPending

	if err := s.recomputeSupplierBalance(ctx, sup); err != nil {
		return nil, err
	}
	if err := s.local.PutSupplier(ctx, *sup); err != nil {
		return nil, err
	}
	s.invalidateLedger(ctx, localID)
	s.kick()
	return sup, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, localID string) error {
	unlock := s.locks.lock(localID)
	defer unlock()

	sup, err := s.local.GetSupplier(ctx, localID)
	if err != nil {
		return err
	}

	entries, err := s.local.ListSupplierLedgerBySupplier(ctx, localID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.local.DeleteSupplierLedger(ctx, e.LocalID); err != nil {
			log.Printf("[service] WARN: delete ledger entry %s: %v", e.LocalID, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionSupplierLedger, e.RemoteID)
	}

	if err := s.local.DeleteSupplier(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionSuppliers, sup.RemoteID)
	s.invalidateLedger(ctx, localID)
	s.kick()
	return nil
}

func (s *Service) GetSupplier(ctx context.Context, localID string) (*domain.Supplier, error) {
	return s.local.GetSupplier(ctx, localID)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.local.ListSuppliers(ctx)
}

// --- products ---

func (s *Service) AddProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", store.ErrValidation)
	}
	if req.SalePriceCents < 0 || req.CostCents < 0 || req.OpeningStock < 0 {
		return nil, fmt.Errorf("%w: prices and stock must not be negative", store.ErrValidation)
	}

	prod := domain.Product{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("prod"),
			SyncStatus: domain.SyncPending,
		},
		Name:              req.Name,
		Category:          strings.TrimSpace(req.Category),
		CostCents:         req.CostCents,
		SalePriceCents:    req.SalePriceCents,
		CurrentStock:      req.OpeningStock,
		LowStockThreshold: req.LowStockThreshold,
		Serialized:        req.Serialized,
		Variations:        req.Variations,
	}
	if err := s.local.PutProduct(ctx, prod); err != nil {
		return nil, err
	}
	s.kick()
	return &prod, nil
}

func (s *Service) UpdateProduct(ctx context.Context, localID string, req domain.ProductRequest) (*domain.Product, error) {
	unlock := s.locks.lock(localID)
	defer unlock()

	prod, err := s.local.GetProduct(ctx, localID)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", store.ErrValidation)
	}
	if req.SalePriceCents < 0 || req.CostCents < 0 {
		return nil, fmt.Errorf("%w: prices must not be negative", store.ErrValidation)
	}

	// Editing a product never touches stock; only transactions move it.
	prod.Name = req.Name
	prod.Category = strings.TrimSpace(req.Category)
	prod.CostCents = req.CostCents
	prod.SalePriceCents = req.SalePriceCents
	prod.LowStockThreshold = req.LowStockThreshold
	prod.Serialized = req.Serialized
	prod.Variations = req.Variations
	prod.SyncStatus = domain.SyncPending

	if err := s.local.PutProduct(ctx, *prod); err != nil {
		return nil, err
	}
	s.kick()
	return prod, nil
}

// DeleteProduct removes the product and its tracked serials. History
// records keep their item snapshots and survive.
func (s *Service) DeleteProduct(ctx context.Context, localID string) error {
	unlock := s.locks.lock(localID)
	defer unlock()

	prod, err := s.local.GetProduct(ctx, localID)
	if err != nil {
		return err
	}

	recs, err := s.local.ListIMEIsByProduct(ctx, localID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := s.local.DeleteIMEI(ctx, rec.LocalID); err != nil {
			log.Printf("[service] WARN: delete imei %s: %v", rec.LocalID, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionIMEIs, rec.RemoteID)
	}

	if err := s.local.DeleteProduct(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionProducts, prod.RemoteID)
	s.kick()
	return nil
}

func (s *Service) GetProduct(ctx context.Context, localID string) (*domain.Product, error) {
	return s.local.GetProduct(ctx, localID)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.local.ListProducts(ctx)
}

func (s *Service) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := s.local.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]domain.Product, 0, 8)
	for _, p := range products {
		if p.CurrentStock <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *Service) ListIMEIsByProduct(ctx context.Context, productID string) ([]domain.IMEIRecord, error) {
	return s.local.ListIMEIsByProduct(ctx, productID)
}

// --- expenses ---

func (s *Service) AddExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Expense, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("%w: expense title is required", store.ErrValidation)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive", store.ErrValidation)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	exp := domain.Expense{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("exp"),
			SyncStatus: domain.SyncPending,
		},
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		AmountCents: req.AmountCents,
		Date:        date,
	}
	if err := s.local.PutExpense(ctx, exp); err != nil {
		return nil, err
	}
	s.kick()
	return &exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, localID string) error {
	exp, err := s.local.GetExpense(ctx, localID)
	if err != nil {
		return err
	}
	if err := s.local.DeleteExpense(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionExpenses, exp.RemoteID)
	s.kick()
	return nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return s.local.ListExpenses(ctx)
}

// --- balances and reports ---

func ledgerCacheKey(counterpartyID string) string {
	return "ledger:" + counterpartyID
}

func (s *Service) invalidateLedger(ctx context.Context, counterpartyID string) {
	if err := s.ledgers.Invalidate(ctx, ledgerCacheKey(counterpartyID)); err != nil {
		log.Printf("[service] WARN: invalidate ledger cache %s: %v", counterpartyID, err)
	}
}

func (s *Service) recomputeCustomerBalance(ctx context.Context, cust *domain.Customer) error {
	entries, err := s.local.ListCustomerLedgerByCustomer(ctx, cust.LocalID)
	if err != nil {
		return err
	}
	bal := ledger.RecomputeCustomer(cust.OpeningBalanceCents, cust.BalanceType, entries)
	cust.CurrentBalanceCents = bal.AmountCents
	return nil
}

func (s *Service) recomputeSupplierBalance(ctx context.Context, sup *domain.Supplier) error {
	entries, err := s.local.ListSupplierLedgerBySupplier(ctx, sup.LocalID)
	if err != nil {
		return err
	}
	bal := ledger.RecomputeSupplier(sup.OpeningBalanceCents, sup.BalanceType, entries)
	sup.CurrentBalanceCents = bal.AmountCents
	// The fold can flip a supplier's direction; the customer side cannot.
	sup.CurrentBalanceType = bal.Type
	return nil
}

// GetLedger renders a counterparty statement: opening balance, entries in
// date order and the current folded balance. The id may belong to a
// customer or a supplier.
func (s *Service) GetLedger(ctx context.Context, counterpartyID string) (*domain.LedgerResponse, error) {
	key := ledgerCacheKey(counterpartyID)
	if cached, ok, err := s.ledgers.Get(ctx, key); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: ledger cache read %s: %v", counterpartyID, err)
	}

	var resp *domain.LedgerResponse
	if cust, err := s.local.GetCustomer(ctx, counterpartyID); err == nil {
		entries, err := s.local.ListCustomerLedgerByCustomer(ctx, counterpartyID)
		if err != nil {
			return nil, err
		}
		bal := ledger.RecomputeCustomer(cust.OpeningBalanceCents, cust.BalanceType, entries)
		resp = &domain.LedgerResponse{
			CounterpartyID:      counterpartyID,
			OpeningBalanceCents: cust.OpeningBalanceCents,
			CurrentBalanceCents: bal.AmountCents,
			BalanceType:         bal.Type,
			CustomerEntries:     entries,
		}
	} else if sup, err := s.local.GetSupplier(ctx, counterpartyID); err == nil {
		entries, err := s.local.ListSupplierLedgerBySupplier(ctx, counterpartyID)
		if err != nil {
			return nil, err
		}
		bal := ledger.RecomputeSupplier(sup.OpeningBalanceCents, sup.BalanceType, entries)
		resp = &domain.LedgerResponse{
			CounterpartyID:      counterpartyID,
			OpeningBalanceCents: sup.OpeningBalanceCents,
			CurrentBalanceCents: bal.AmountCents,
			BalanceType:         bal.Type,
			SupplierEntries:     entries,
		}
	} else {
		return nil, store.ErrNotFound
	}

	if err := s.ledgers.Set(ctx, key, resp, ledgerCacheTTL); err != nil {
		log.Printf("[service] WARN: ledger cache write %s: %v", counterpartyID, err)
	}
	return resp, nil
}

// RecalculateBalance refolds one counterparty from history and stores the
// result, the repair entry point for a balance that drifted.
func (s *Service) RecalculateBalance(ctx context.Context, counterpartyID string) error {
	unlock := s.locks.lock(counterpartyID)
	defer unlock()

	if cust, err := s.local.GetCustomer(ctx, counterpartyID); err == nil {
		if err := s.recomputeCustomerBalance(ctx, cust); err != nil {
			return err
		}
		cust.SyncStatus = domain.SyncPending
		if err := s.local.PutCustomer(ctx, *cust); err != nil {
			return err
		}
	} else if sup, err := s.local.GetSupplier(ctx, counterpartyID); err == nil {
		if err := s.recomputeSupplierBalance(ctx, sup); err != nil {
			return err
		}
		sup.SyncStatus = domain.SyncPending
		if err := s.local.PutSupplier(ctx, *sup); err != nil {
			return err
		}
	} else {
		return store.ErrNotFound
	}
	s.invalidateLedger(ctx, counterpartyID)
	s.kick()
	return nil
}

// DayBook summarizes one calendar day across transaction types.
func (s *Service) DayBook(ctx context.Context, day string) (*domain.DayBook, error) {
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("%w: bad day %q", store.ErrValidation, day)
	}
	book := &domain.DayBook{Date: day}

	sales, err := s.local.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		if strings.HasPrefix(sale.Date, day) {
			book.SalesCount++
			book.SalesTotalCents += sale.TotalCents
		}
	}

	purchases, err := s.local.ListPurchases(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range purchases {
		if strings.HasPrefix(p.Date, day) {
			book.PurchaseCount++
			book.PurchaseTotalCents += p.TotalCents
		}
	}

	expenses, err := s.local.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, day) {
			book.ExpenseCount++
			book.ExpenseTotalCents += e.AmountCents
		}
	}

	custEntries, err := s.local.ListCustomerLedgers(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range custEntries {
		if e.Type == domain.LedgerPayment && strings.HasPrefix(e.Date, day) {
			book.CustomerPaymentsCents += e.AmountCents
		}
	}

	supEntries, err := s.local.ListSupplierLedgers(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range supEntries {
		if e.Type == domain.LedgerPayment && strings.HasPrefix(e.Date, day) {
			book.SupplierPaymentsCents += e.AmountCents
		}
	}

	return book, nil
}
