package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/store/memory"
)

func newTestService() (*Service, store.Local) {
	local := memory.New()
	return New(local, nil, nil, "Toko Ponsel Jaya"), local
}

func mustCustomer(t *testing.T, s *Service, name string, opening int64) *domain.Customer {
	t.Helper()
	cust, err := s.AddCustomer(context.Background(), domain.CustomerRequest{
		Name:                name,
		OpeningBalanceCents: opening,
		BalanceType:         domain.BalancePayable,
	})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	return cust
}

func mustSupplier(t *testing.T, s *Service, name string) *domain.Supplier {
	t.Helper()
	sup, err := s.AddSupplier(context.Background(), domain.SupplierRequest{Name: name})
	if err != nil {
		t.Fatalf("add supplier: %v", err)
	}
	return sup
}

func mustProduct(t *testing.T, s *Service, name string, stock int, price int64, serialized bool) *domain.Product {
	t.Helper()
	prod, err := s.AddProduct(context.Background(), domain.ProductRequest{
		Name:           name,
		Category:       "handphone",
		CostCents:      price / 2,
		SalePriceCents: price,
		OpeningStock:   stock,
		Serialized:     serialized,
	})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	return prod
}

func TestAddSaleCascade(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 0)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)

	sale, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		PaidCents:  300_000,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}

	if sale.TotalCents != 1_000_000 {
		t.Fatalf("expected total 1000000, got %d", sale.TotalCents)
	}
	if sale.PaymentStatus != domain.PaymentPartial {
		t.Fatalf("expected partial, got %s", sale.PaymentStatus)
	}
	if sale.InvoiceNo == "" || sale.SyncStatus != domain.SyncPending {
		t.Fatalf("sale must carry invoice no and go out pending: %+v", sale)
	}

	got, _ := local.GetProduct(ctx, prod.LocalID)
	if got.CurrentStock != 8 {
		t.Fatalf("expected stock 8, got %d", got.CurrentStock)
	}

	entries, _ := local.ListCustomerLedgerByCustomer(ctx, cust.LocalID)
	if len(entries) != 2 {
		t.Fatalf("expected sale + payment entries, got %d", len(entries))
	}

	after, _ := local.GetCustomer(ctx, cust.LocalID)
	if after.CurrentBalanceCents != 700_000 {
		t.Fatalf("expected balance 700000, got %d", after.CurrentBalanceCents)
	}
}

func TestAddSaleInsufficientStock(t *testing.T) {
	s, _ := newTestService()
	prod := mustProduct(t, s, "Charger", 1, 10_000, false)

	_, err := s.AddSale(context.Background(), domain.SaleRequest{
		Items: []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 2}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestWalkInSaleSkipsLedger(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()
	prod := mustProduct(t, s, "Casing", 5, 5_000, false)

	sale, err := s.AddSale(ctx, domain.SaleRequest{
		PaidCents: 5_000,
		Items:     []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("walk-in sale: %v", err)
	}
	if sale.CustomerID != "" {
		t.Fatalf("walk-in sale must carry no customer")
	}
	entries, _ := local.ListCustomerLedgers(ctx)
	if len(entries) != 0 {
		t.Fatalf("walk-in sale must write no ledger entries, got %d", len(entries))
	}
}

func TestSerializedSaleConsumesIMEIs(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	sup := mustSupplier(t, s, "PT Grosir")
	prod := mustProduct(t, s, "Samsung A54", 0, 400_000, true)

	_, err := s.AddPurchase(ctx, domain.PurchaseRequest{
		SupplierID: sup.LocalID,
		Items: []domain.PurchaseItemRequest{{
			ProductID: prod.LocalID,
			Qty:       2,
			CostCents: 300_000,
			IMEIs:     []string{"111111111111111", "222222222222222"},
		}},
	})
	if err != nil {
		t.Fatalf("add purchase: %v", err)
	}

	sale, err := s.AddSale(ctx, domain.SaleRequest{
		Items: []domain.SaleItemRequest{{
			ProductID: prod.LocalID,
			Qty:       1,
			IMEIs:     []string{"111111111111111"},
		}},
	})
	if err != nil {
		t.Fatalf("serialized sale: %v", err)
	}

	rec, err := local.GetLiveIMEIBySerial(ctx, "111111111111111")
	if err != nil {
		t.Fatalf("lookup serial: %v", err)
	}
	if rec.Status != domain.IMEISold || rec.SaleID != sale.LocalID {
		t.Fatalf("serial not consumed: %+v", rec)
	}

	// The same serial cannot be sold twice.
	_, err = s.AddSale(ctx, domain.SaleRequest{
		Items: []domain.SaleItemRequest{{
			ProductID: prod.LocalID,
			Qty:       1,
			IMEIs:     []string{"111111111111111"},
		}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation on double sell, got %v", err)
	}
}

func TestDeleteSaleReversesCascade(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 0)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)

	sale, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}

	if err := s.DeleteSale(ctx, sale.LocalID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}

	got, _ := local.GetProduct(ctx, prod.LocalID)
	if got.CurrentStock != 10 {
		t.Fatalf("expected stock back at 10, got %d", got.CurrentStock)
	}
	entries, _ := local.ListCustomerLedgerByCustomer(ctx, cust.LocalID)
	if len(entries) != 0 {
		t.Fatalf("ledger entries must be dropped, got %d", len(entries))
	}
	after, _ := local.GetCustomer(ctx, cust.LocalID)
	if after.CurrentBalanceCents != 0 {
		t.Fatalf("balance must refold to 0, got %d", after.CurrentBalanceCents)
	}
	if _, err := local.GetSale(ctx, sale.LocalID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("sale record still present")
	}
}

func TestDeletePurchaseDrivesStockNegative(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	prod := mustProduct(t, s, "Xiaomi Poco", 0, 200_000, false)

	purchase, err := s.AddPurchase(ctx, domain.PurchaseRequest{
		Items: []domain.PurchaseItemRequest{{ProductID: prod.LocalID, Qty: 10, CostCents: 150_000}},
	})
	if err != nil {
		t.Fatalf("add purchase: %v", err)
	}
	if _, err := s.AddSale(ctx, domain.SaleRequest{
		Items: []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 3}},
	}); err != nil {
		t.Fatalf("add sale: %v", err)
	}

	if err := s.DeletePurchase(ctx, purchase.LocalID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}

	// 0 +10 -3 -10: the reversal is unconditional and the honest figure
	// is negative.
	got, _ := local.GetProduct(ctx, prod.LocalID)
	if got.CurrentStock != -3 {
		t.Fatalf("expected stock -3, got %d", got.CurrentStock)
	}
}

func TestSaleReturnRestocksAndCredits(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 0)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)

	sale, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}

	ret, err := s.AddSaleReturn(ctx, domain.SaleReturnRequest{
		SaleID:    sale.LocalID,
		ProductID: prod.LocalID,
		Qty:       1,
		Reason:    "dead pixel",
	})
	if err != nil {
		t.Fatalf("add sale return: %v", err)
	}
	if ret.AmountCents != 500_000 {
		t.Fatalf("expected return amount 500000, got %d", ret.AmountCents)
	}

	got, _ := local.GetProduct(ctx, prod.LocalID)
	if got.CurrentStock != 8 {
		t.Fatalf("expected stock 8 after return, got %d", got.CurrentStock)
	}
	after, _ := local.GetCustomer(ctx, cust.LocalID)
	if after.CurrentBalanceCents != 1_000_000 {
		t.Fatalf("expected balance 1000000 after return, got %d", after.CurrentBalanceCents)
	}

	// Over-returning is rejected.
	if _, err := s.AddSaleReturn(ctx, domain.SaleReturnRequest{
		SaleID:    sale.LocalID,
		ProductID: prod.LocalID,
		Qty:       3,
	}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation on over-return, got %v", err)
	}

	// And the sale can no longer be deleted outright.
	if err := s.DeleteSale(ctx, sale.LocalID); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation deleting sale with returns, got %v", err)
	}
}

func TestCustomerPaymentClampsAtZero(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 100_000)
	if _, err := s.AddCustomerPayment(ctx, domain.PaymentRequest{
		CounterpartyID: cust.LocalID,
		AmountCents:    150_000,
	}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	after, _ := local.GetCustomer(ctx, cust.LocalID)
	if after.CurrentBalanceCents != 0 {
		t.Fatalf("overpayment must clamp to 0, got %d", after.CurrentBalanceCents)
	}
	if after.SyncStatus != domain.SyncPending {
		t.Fatalf("balance refresh must mark the customer pending")
	}
}

func TestSupplierOverpaymentFlipsDirection(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	sup := mustSupplier(t, s, "PT Grosir")
	prod := mustProduct(t, s, "Casing", 0, 5_000, false)

	if _, err := s.AddPurchase(ctx, domain.PurchaseRequest{
		SupplierID: sup.LocalID,
		Items:      []domain.PurchaseItemRequest{{ProductID: prod.LocalID, Qty: 10, CostCents: 2_000}},
	}); err != nil {
		t.Fatalf("add purchase: %v", err)
	}
	if _, err := s.AddSupplierPayment(ctx, domain.PaymentRequest{
		CounterpartyID: sup.LocalID,
		AmountCents:    30_000,
	}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	after, _ := local.GetSupplier(ctx, sup.LocalID)
	if after.CurrentBalanceCents != 10_000 || after.CurrentBalanceType != domain.BalanceReceivable {
		t.Fatalf("expected 10000 receivable, got %d %s", after.CurrentBalanceCents, after.CurrentBalanceType)
	}
}

func TestPurchaseReturnRetiresSerial(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	sup := mustSupplier(t, s, "PT Grosir")
	prod := mustProduct(t, s, "Samsung A54", 0, 400_000, true)

	purchase, err := s.AddPurchase(ctx, domain.PurchaseRequest{
		SupplierID: sup.LocalID,
		Items: []domain.PurchaseItemRequest{{
			ProductID: prod.LocalID,
			Qty:       2,
			CostCents: 300_000,
			IMEIs:     []string{"111111111111111", "222222222222222"},
		}},
	})
	if err != nil {
		t.Fatalf("add purchase: %v", err)
	}

	if _, err := s.AddPurchaseReturn(ctx, domain.PurchaseReturnRequest{
		PurchaseID: purchase.LocalID,
		ProductID:  prod.LocalID,
		Qty:        1,
		IMEIs:      []string{"222222222222222"},
		Reason:     "doa",
	}); err != nil {
		t.Fatalf("add purchase return: %v", err)
	}

	got, _ := local.GetProduct(ctx, prod.LocalID)
	if got.CurrentStock != 1 {
		t.Fatalf("expected stock 1, got %d", got.CurrentStock)
	}
	// Returned is terminal: no live record holds the serial anymore.
	if _, err := local.GetLiveIMEIBySerial(ctx, "222222222222222"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("retired serial must have no live record, got %v", err)
	}

	after, _ := local.GetSupplier(ctx, sup.LocalID)
	if after.CurrentBalanceCents != 300_000 || after.CurrentBalanceType != domain.BalancePayable {
		t.Fatalf("expected 300000 payable after return, got %d %s", after.CurrentBalanceCents, after.CurrentBalanceType)
	}
}

func TestDeleteCustomerDropsLedger(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 0)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)
	sale, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}

	if err := s.DeleteCustomer(ctx, cust.LocalID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	if _, err := local.GetCustomer(ctx, cust.LocalID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("customer still present")
	}
	entries, _ := local.ListCustomerLedgers(ctx)
	if len(entries) != 0 {
		t.Fatalf("ledger entries must go with the customer, got %d", len(entries))
	}

	// The sale survives with its name snapshot.
	kept, err := local.GetSale(ctx, sale.LocalID)
	if err != nil {
		t.Fatalf("sale must survive customer delete: %v", err)
	}
	if kept.CustomerName != "Budi" {
		t.Fatalf("sale lost its customer snapshot: %q", kept.CustomerName)
	}
}

func TestDeleteSyncedRecordWritesTombstone(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	exp, err := s.AddExpense(ctx, domain.ExpenseRequest{Title: "listrik", AmountCents: 50_000})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	// Simulate a completed push.
	synced := *exp
	synced.RemoteID = "42"
	synced.SyncStatus = domain.SyncSynced
	if err := local.PutExpense(ctx, synced); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	if err := s.DeleteExpense(ctx, exp.LocalID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	tombs, _ := local.ListTombstones(ctx)
	if len(tombs) != 1 || tombs[0].RemoteID != "42" || tombs[0].EntityType != domain.CollectionExpenses {
		t.Fatalf("expected one expense tombstone, got %+v", tombs)
	}
}

func TestDeleteNeverSyncedRecordSkipsTombstone(t *testing.T) {
	s, local := newTestService()
	ctx := context.Background()

	exp, err := s.AddExpense(ctx, domain.ExpenseRequest{Title: "bensin", AmountCents: 20_000})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if err := s.DeleteExpense(ctx, exp.LocalID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	tombs, _ := local.ListTombstones(ctx)
	if len(tombs) != 0 {
		t.Fatalf("never-pushed record needs no tombstone, got %+v", tombs)
	}
}

func TestGetLedgerStatement(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 100_000)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)
	if _, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		PaidCents:  200_000,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 1}},
	}); err != nil {
		t.Fatalf("add sale: %v", err)
	}

	resp, err := s.GetLedger(ctx, cust.LocalID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if resp.OpeningBalanceCents != 100_000 {
		t.Fatalf("expected opening 100000, got %d", resp.OpeningBalanceCents)
	}
	// 100000 + 500000 - 200000
	if resp.CurrentBalanceCents != 400_000 {
		t.Fatalf("expected balance 400000, got %d", resp.CurrentBalanceCents)
	}
	if len(resp.CustomerEntries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.CustomerEntries))
	}

	if _, err := s.GetLedger(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown counterparty, got %v", err)
	}
}

func TestDayBook(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	cust := mustCustomer(t, s, "Budi", 0)
	prod := mustProduct(t, s, "iPhone 13", 10, 500_000, false)
	day := "2026-08-30"

	if _, err := s.AddSale(ctx, domain.SaleRequest{
		CustomerID: cust.LocalID,
		Date:       day + " 09:00:00",
		PaidCents:  100_000,
		Items:      []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 1}},
	}); err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if _, err := s.AddExpense(ctx, domain.ExpenseRequest{
		Title: "listrik", AmountCents: 50_000, Date: day + " 10:00:00",
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	book, err := s.DayBook(ctx, day)
	if err != nil {
		t.Fatalf("day book: %v", err)
	}
	if book.SalesCount != 1 || book.SalesTotalCents != 500_000 {
		t.Fatalf("bad sales summary: %+v", book)
	}
	if book.ExpenseCount != 1 || book.ExpenseTotalCents != 50_000 {
		t.Fatalf("bad expense summary: %+v", book)
	}
	if book.CustomerPaymentsCents != 100_000 {
		t.Fatalf("expected 100000 customer payments, got %d", book.CustomerPaymentsCents)
	}
}

func TestLowStockReport(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	if _, err := s.AddProduct(ctx, domain.ProductRequest{
		Name: "Kabel Data", SalePriceCents: 3_000, OpeningStock: 2, LowStockThreshold: 5,
	}); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := s.AddProduct(ctx, domain.ProductRequest{
		Name: "Powerbank", SalePriceCents: 80_000, OpeningStock: 20, LowStockThreshold: 5,
	}); err != nil {
		t.Fatalf("add product: %v", err)
	}

	low, err := s.ListLowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Kabel Data" {
		t.Fatalf("unexpected low stock report: %+v", low)
	}
}

// faultyLocal lets a test fail a single store call while everything else
// runs against the real in-memory store.
type faultyLocal struct {
	store.Local
	listSalesErr  error
	serialLookErr error
}

func (f *faultyLocal) ListSales(ctx context.Context) ([]domain.Sale, error) {
	if f.listSalesErr != nil {
		return nil, f.listSalesErr
	}
	return f.Local.ListSales(ctx)
}

func (f *faultyLocal) GetLiveIMEIBySerial(ctx context.Context, serial string) (*domain.IMEIRecord, error) {
	if f.serialLookErr != nil {
		return nil, f.serialLookErr
	}
	return f.Local.GetLiveIMEIBySerial(ctx, serial)
}

func TestConcurrentSalesGetDistinctInvoiceNos(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	const n = 8
	prods := make([]*domain.Product, n)
	for i := range prods {
		prods[i] = mustProduct(t, s, fmt.Sprintf("Casing %d", i), 5, 25_000, false)
	}

	var wg sync.WaitGroup
	invoices := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sale, err := s.AddSale(ctx, domain.SaleRequest{
				Items: []domain.SaleItemRequest{{ProductID: prods[i].LocalID, Qty: 1}},
			})
			if err != nil {
				errs[i] = err
				return
			}
			invoices[i] = sale.InvoiceNo
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("sale %d: %v", i, errs[i])
		}
		if seen[invoices[i]] {
			t.Fatalf("invoice number %s minted twice", invoices[i])
		}
		seen[invoices[i]] = true
	}
}

func TestAddSaleFailsWhenInvoiceCountFails(t *testing.T) {
	boom := errors.New("walk failed")
	local := &faultyLocal{Local: memory.New()}
	s := New(local, nil, nil, "Toko Ponsel Jaya")
	ctx := context.Background()

	prod := mustProduct(t, s, "Charger", 3, 50_000, false)

	local.listSalesErr = boom
	_, err := s.AddSale(ctx, domain.SaleRequest{
		Items: []domain.SaleItemRequest{{ProductID: prod.LocalID, Qty: 1}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the list failure back, got %v", err)
	}
}

func TestAddPurchaseSurfacesSerialLookupFailure(t *testing.T) {
	boom := errors.New("db locked")
	local := &faultyLocal{Local: memory.New()}
	s := New(local, nil, nil, "Toko Ponsel Jaya")
	ctx := context.Background()

	sup := mustSupplier(t, s, "PT Grosir")
	prod := mustProduct(t, s, "iPhone 13", 0, 9_000_000, true)

	local.serialLookErr = boom
	_, err := s.AddPurchase(ctx, domain.PurchaseRequest{
		SupplierID: sup.LocalID,
		Items: []domain.PurchaseItemRequest{{
			ProductID: prod.LocalID,
			Qty:       1,
			CostCents: 7_000_000,
			IMEIs:     []string{"353915103456789"},
		}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the lookup failure back, got %v", err)
	}
}
