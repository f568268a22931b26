package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/xid"
)

// lockKeys takes every per-entity lock a cascade touches, in sorted order
// so two overlapping cascades cannot deadlock.
func (s *Service) lockKeys(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" && !slices.Contains(uniq, k) {
			uniq = append(uniq, k)
		}
	}
	slices.Sort(uniq)

	unlocks := make([]func(), 0, len(uniq))
	for _, k := range uniq {
		unlocks = append(unlocks, s.locks.lock(k))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// invoiceLockKey serializes invoice numbering across sales that otherwise
// share no lock keys, so the count-then-persist cannot race.
const invoiceLockKey = "invoice-no"

func (s *Service) nextInvoiceNo(ctx context.Context, date string) (string, error) {
	day := strings.ReplaceAll(date[:10], "-", "")
	sales, err := s.local.ListSales(ctx)
	if err != nil {
		return "", fmt.Errorf("number invoice: %w", err)
	}
	n := 1
	for _, sale := range sales {
		if strings.HasPrefix(sale.Date, date[:10]) {
			n++
		}
	}
	return fmt.Sprintf("INV-%s-%04d", day, n), nil
}

// --- sales ---

// AddSale runs the sale cascade: validate everything, persist the sale,
// then move stock, consume serials and write ledger entries. Post-persist
// steps are best-effort; a failed step is logged and the rest continue,
// with RecalculateBalance as the repair path.
func (s *Service) AddSale(ctx context.Context, req domain.SaleRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: sale needs at least one item", store.ErrValidation)
	}
	if req.PaidCents < 0 {
		return nil, fmt.Errorf("%w: paid amount must not be negative", store.ErrValidation)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(req.Items)+2)
	keys = append(keys, invoiceLockKey, req.CustomerID)
	for _, it := range req.Items {
		keys = append(keys, it.ProductID)
	}
	unlock := s.lockKeys(keys...)
	defer unlock()

	var cust *domain.Customer
	if req.CustomerID != "" {
		cust, err = s.local.GetCustomer(ctx, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", req.CustomerID, err)
		}
	}

	// Validation pass: nothing is written until every item checks out.
	var total int64
	items := make([]domain.SaleItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", store.ErrValidation)
		}
		prod, err := s.local.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
		}
		if prod.CurrentStock < it.Qty {
			return nil, fmt.Errorf("%w: %s has %d in stock, need %d",
				store.ErrInsufficientStock, prod.Name, prod.CurrentStock, it.Qty)
		}
		if prod.Serialized {
			if len(it.IMEIs) != it.Qty {
				return nil, fmt.Errorf("%w: %s needs %d serials, got %d",
					store.ErrValidation, prod.Name, it.Qty, len(it.IMEIs))
			}
			for _, serial := range it.IMEIs {
				rec, err := s.local.GetLiveIMEIBySerial(ctx, serial)
				if err != nil {
					return nil, fmt.Errorf("imei %s: %w", serial, err)
				}
				if rec.Status != domain.IMEIInStock {
					return nil, fmt.Errorf("%w: imei %s is %s", store.ErrValidation, serial, rec.Status)
				}
			}
		}

		price := it.SalePriceCents
		if price <= 0 {
			price = prod.SalePriceCents
		}
		total += int64(it.Qty) * price
		items = append(items, domain.SaleItem{
			ProductID:      prod.LocalID,
			ProductName:    prod.Name,
			Qty:            it.Qty,
			CostCents:      prod.CostCents,
			SalePriceCents: price,
			Condition:      it.Condition,
			Variation:      it.Variation,
			IMEIs:          it.IMEIs,
		})
	}

	invoiceNo, err := s.nextInvoiceNo(ctx, date)
	if err != nil {
		return nil, err
	}

	sale := domain.Sale{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("sale"),
			SyncStatus: domain.SyncPending,
		},
		InvoiceNo:     invoiceNo,
		Date:          date,
		TotalCents:    total,
		PaidCents:     req.PaidCents,
		PaymentStatus: domain.PaymentStatusFor(total, req.PaidCents),
		Items:         items,
	}
	if cust != nil {
		sale.CustomerID = cust.LocalID
		sale.CustomerName = cust.Name
	}

	// The sale record lands first; everything after is derived state.
	if err := s.local.PutSale(ctx, sale); err != nil {
		return nil, err
	}

	for _, it := range items {
		if err := s.adjustStock(ctx, it.ProductID, -it.Qty); err != nil {
			log.Printf("[service] WARN: sale %s: stock -%d on %s: %v", sale.LocalID, it.Qty, it.ProductID, err)
		}
		for _, serial := range it.IMEIs {
			if _, err := s.imeis.Consume(ctx, serial, sale.LocalID); err != nil {
				log.Printf("[service] WARN: sale %s: consume imei %s: %v", sale.LocalID, serial, err)
			}
		}
	}

	// Walk-in sales carry no counterparty and no ledger trail.
	if cust != nil {
		s.writeCustomerEntry(ctx, cust.LocalID, domain.LedgerSale, total, sale.LocalID, date,
			"sale "+sale.InvoiceNo)
		if req.PaidCents > 0 {
			s.writeCustomerEntry(ctx, cust.LocalID, domain.LedgerPayment, req.PaidCents, sale.LocalID, date,
				"payment on "+sale.InvoiceNo)
		}
		s.refreshCustomer(ctx, cust.LocalID)
	}

	s.kick()
	return &sale, nil
}

// DeleteSale reverses the sale cascade step by step: restock every item,
// release its serials and drop the ledger entries. Stock reversal is
// unconditional; the delete always fully undoes the quantities the sale
// moved, whatever happened to the product since.
func (s *Service) DeleteSale(ctx context.Context, localID string) error {
	sale, err := s.local.GetSale(ctx, localID)
	if err != nil {
		return err
	}
	returns, err := s.local.ListSaleReturnsBySale(ctx, localID)
	if err != nil {
		return err
	}
	if len(returns) > 0 {
		return fmt.Errorf("%w: sale %s has returns, delete those first", store.ErrValidation, sale.InvoiceNo)
	}

	keys := make([]string, 0, len(sale.Items)+1)
	keys = append(keys, sale.CustomerID)
	for _, it := range sale.Items {
		keys = append(keys, it.ProductID)
	}
	unlock := s.lockKeys(keys...)
	defer unlock()

	for _, it := range sale.Items {
		if err := s.adjustStock(ctx, it.ProductID, it.Qty); err != nil {
			log.Printf("[service] WARN: delete sale %s: stock +%d on %s: %v", localID, it.Qty, it.ProductID, err)
		}
		for _, serial := range it.IMEIs {
			if _, err := s.imeis.Release(ctx, serial); err != nil {
				log.Printf("[service] WARN: delete sale %s: release imei %s: %v", localID, serial, err)
			}
		}
	}

	if sale.CustomerID != "" {
		s.dropCustomerEntries(ctx, sale.CustomerID, localID)
		s.refreshCustomer(ctx, sale.CustomerID)
	}

	if err := s.local.DeleteSale(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionSales, sale.RemoteID)
	s.kick()
	return nil
}

func (s *Service) GetSale(ctx context.Context, localID string) (*domain.Sale, error) {
	return s.local.GetSale(ctx, localID)
}

func (s *Service) ListSales(ctx context.Context) ([]domain.Sale, error) {
	return s.local.ListSales(ctx)
}

// --- purchases ---

func (s *Service) AddPurchase(ctx context.Context, req domain.PurchaseRequest) (*domain.Purchase, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: purchase needs at least one item", store.ErrValidation)
	}
	if req.PaidCents < 0 {
		return nil, fmt.Errorf("%w: paid amount must not be negative", store.ErrValidation)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(req.Items)+1)
	keys = append(keys, req.SupplierID)
	for _, it := range req.Items {
		keys = append(keys, it.ProductID)
	}
	unlock := s.lockKeys(keys...)
	defer unlock()

	var sup *domain.Supplier
	if req.SupplierID != "" {
		sup, err = s.local.GetSupplier(ctx, req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("supplier %s: %w", req.SupplierID, err)
		}
	}

	var total int64
	items := make([]domain.PurchaseItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", store.ErrValidation)
		}
		if it.CostCents < 0 {
			return nil, fmt.Errorf("%w: cost must not be negative", store.ErrValidation)
		}
		prod, err := s.local.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
		}
		if prod.Serialized {
			if len(it.IMEIs) != it.Qty {
				return nil, fmt.Errorf("%w: %s needs %d serials, got %d",
					store.ErrValidation, prod.Name, it.Qty, len(it.IMEIs))
			}
			for _, serial := range it.IMEIs {
				live, err := s.local.GetLiveIMEIBySerial(ctx, serial)
				if err == nil {
					return nil, fmt.Errorf("%w: serial %s already tracked as %s",
						store.ErrDuplicateIMEI, serial, live.Status)
				}
				if !errors.Is(err, store.ErrNotFound) {
					return nil, fmt.Errorf("imei %s: %w", serial, err)
				}
			}
		}
		total += int64(it.Qty) * it.CostCents
		items = append(items, domain.PurchaseItem{
			ProductID:      prod.LocalID,
			ProductName:    prod.Name,
			Qty:            it.Qty,
			CostCents:      it.CostCents,
			SalePriceCents: it.SalePriceCents,
			Condition:      it.Condition,
			Variation:      it.Variation,
			IMEIs:          it.IMEIs,
		})
	}

	purchase := domain.Purchase{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("pur"),
			SyncStatus: domain.SyncPending,
		},
		RefNo:         strings.TrimSpace(req.RefNo),
		Date:          date,
		TotalCents:    total,
		PaidCents:     req.PaidCents,
		PaymentStatus: domain.PaymentStatusFor(total, req.PaidCents),
		Items:         items,
	}
	if sup != nil {
		purchase.SupplierID = sup.LocalID
		purchase.SupplierName = sup.Name
	}

	if err := s.local.PutPurchase(ctx, purchase); err != nil {
		return nil, err
	}

	for _, it := range items {
		if err := s.restockFromPurchase(ctx, it); err != nil {
			log.Printf("[service] WARN: purchase %s: stock +%d on %s: %v", purchase.LocalID, it.Qty, it.ProductID, err)
		}
		for _, serial := range it.IMEIs {
			if _, err := s.imeis.Acquire(ctx, serial, it.ProductID, purchase.LocalID); err != nil {
				log.Printf("[service] WARN: purchase %s: acquire imei %s: %v", purchase.LocalID, serial, err)
			}
		}
	}

	if sup != nil {
		s.writeSupplierEntry(ctx, sup.LocalID, domain.LedgerPurchase, total, purchase.LocalID, date,
			"purchase "+purchase.RefNo)
		if req.PaidCents > 0 {
			s.writeSupplierEntry(ctx, sup.LocalID, domain.LedgerPayment, req.PaidCents, purchase.LocalID, date,
				"payment on purchase")
		}
		s.refreshSupplier(ctx, sup.LocalID)
	}

	s.kick()
	return &purchase, nil
}

// restockFromPurchase raises stock and refreshes the product's cost and
// price snapshots to the latest intake.
func (s *Service) restockFromPurchase(ctx context.Context, it domain.PurchaseItem) error {
	prod, err := s.local.GetProduct(ctx, it.ProductID)
	if err != nil {
		return err
	}
	prod.CurrentStock += it.Qty
	prod.CostCents = it.CostCents
	if it.SalePriceCents > 0 {
		prod.SalePriceCents = it.SalePriceCents
	}
	prod.SyncStatus = domain.SyncPending
	return s.local.PutProduct(ctx, *prod)
}

// DeletePurchase unwinds the intake. Stock reversal is unconditional and
// may drive stock negative when the received units were already sold;
// the negative figure is the honest inventory position.
func (s *Service) DeletePurchase(ctx context.Context, localID string) error {
	purchase, err := s.local.GetPurchase(ctx, localID)
	if err != nil {
		return err
	}
	returns, err := s.local.ListPurchaseReturnsByPurchase(ctx, localID)
	if err != nil {
		return err
	}
	if len(returns) > 0 {
		return fmt.Errorf("%w: purchase %s has returns, delete those first", store.ErrValidation, localID)
	}

	keys := make([]string, 0, len(purchase.Items)+1)
	keys = append(keys, purchase.SupplierID)
	for _, it := range purchase.Items {
		keys = append(keys, it.ProductID)
	}
	unlock := s.lockKeys(keys...)
	defer unlock()

	for _, it := range purchase.Items {
		if err := s.adjustStock(ctx, it.ProductID, -it.Qty); err != nil {
			log.Printf("[service] WARN: delete purchase %s: stock -%d on %s: %v", localID, it.Qty, it.ProductID, err)
		}
	}

	// Serials this purchase brought in: drop the ones still on the shelf,
	// keep sold ones, their sale record is the owner now.
	recs, err := s.local.ListIMEIs(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.PurchaseID != localID {
			continue
		}
		if rec.Status != domain.IMEIInStock {
			log.Printf("[service] WARN: delete purchase %s: imei %s is %s, keeping record", localID, rec.Serial, rec.Status)
			continue
		}
		if err := s.local.DeleteIMEI(ctx, rec.LocalID); err != nil {
			log.Printf("[service] WARN: delete purchase %s: drop imei %s: %v", localID, rec.Serial, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionIMEIs, rec.RemoteID)
	}

	if purchase.SupplierID != "" {
		s.dropSupplierEntries(ctx, purchase.SupplierID, localID)
		s.refreshSupplier(ctx, purchase.SupplierID)
	}

	if err := s.local.DeletePurchase(ctx, localID); err != nil {
		return err
	}
	s.tombstone(ctx, domain.CollectionPurchases, purchase.RemoteID)
	s.kick()
	return nil
}

func (s *Service) GetPurchase(ctx context.Context, localID string) (*domain.Purchase, error) {
	return s.local.GetPurchase(ctx, localID)
}

func (s *Service) ListPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return s.local.ListPurchases(ctx)
}

// --- returns ---

func (s *Service) AddSaleReturn(ctx context.Context, req domain.SaleReturnRequest) (*domain.SaleReturn, error) {
	if req.Qty <= 0 {
		return nil, fmt.Errorf("%w: return quantity must be positive", store.ErrValidation)
	}
	sale, err := s.local.GetSale(ctx, req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", req.SaleID, err)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.lockKeys(sale.CustomerID, req.ProductID)
	defer unlock()

	var item *domain.SaleItem
	for i := range sale.Items {
		if sale.Items[i].ProductID == req.ProductID {
			item = &sale.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: product %s is not on sale %s", store.ErrValidation, req.ProductID, sale.InvoiceNo)
	}

	prior, err := s.local.ListSaleReturnsBySale(ctx, req.SaleID)
	if err != nil {
		return nil, err
	}
	returned := 0
	for _, r := range prior {
		if r.ProductID == req.ProductID {
			returned += r.Qty
		}
	}
	if req.Qty > item.Qty-returned {
		return nil, fmt.Errorf("%w: only %d of %s left to return", store.ErrValidation, item.Qty-returned, item.ProductName)
	}

	if len(req.IMEIs) > 0 {
		if len(req.IMEIs) != req.Qty {
			return nil, fmt.Errorf("%w: serial count must match quantity", store.ErrValidation)
		}
		for _, serial := range req.IMEIs {
			if !slices.Contains(item.IMEIs, serial) {
				return nil, fmt.Errorf("%w: serial %s was not sold on %s", store.ErrValidation, serial, sale.InvoiceNo)
			}
		}
	}

	ret := domain.SaleReturn{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("sret"),
			SyncStatus: domain.SyncPending,
		},
		SaleID:      sale.LocalID,
		CustomerID:  sale.CustomerID,
		ProductID:   req.ProductID,
		Qty:         req.Qty,
		IMEIs:       req.IMEIs,
		Reason:      strings.TrimSpace(req.Reason),
		AmountCents: int64(req.Qty) * item.SalePriceCents,
		Date:        date,
	}
	if err := s.local.PutSaleReturn(ctx, ret); err != nil {
		return nil, err
	}

	if err := s.adjustStock(ctx, req.ProductID, req.Qty); err != nil {
		log.Printf("[service] WARN: sale return %s: stock +%d on %s: %v", ret.LocalID, req.Qty, req.ProductID, err)
	}
	for _, serial := range req.IMEIs {
		if _, err := s.imeis.Release(ctx, serial); err != nil {
			log.Printf("[service] WARN: sale return %s: release imei %s: %v", ret.LocalID, serial, err)
		}
	}

	if sale.CustomerID != "" {
		s.writeCustomerEntry(ctx, sale.CustomerID, domain.LedgerSaleReturn, ret.AmountCents, ret.LocalID, date,
			"return on "+sale.InvoiceNo)
		s.refreshCustomer(ctx, sale.CustomerID)
	}

	s.kick()
	return &ret, nil
}

func (s *Service) AddPurchaseReturn(ctx context.Context, req domain.PurchaseReturnRequest) (*domain.PurchaseReturn, error) {
	if req.Qty <= 0 {
		return nil, fmt.Errorf("%w: return quantity must be positive", store.ErrValidation)
	}
	purchase, err := s.local.GetPurchase(ctx, req.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("purchase %s: %w", req.PurchaseID, err)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.lockKeys(purchase.SupplierID, req.ProductID)
	defer unlock()

	var item *domain.PurchaseItem
	for i := range purchase.Items {
		if purchase.Items[i].ProductID == req.ProductID {
			item = &purchase.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: product %s is not on purchase %s", store.ErrValidation, req.ProductID, req.PurchaseID)
	}

	prior, err := s.local.ListPurchaseReturnsByPurchase(ctx, req.PurchaseID)
	if err != nil {
		return nil, err
	}
	returned := 0
	for _, r := range prior {
		if r.ProductID == req.ProductID {
			returned += r.Qty
		}
	}
	if req.Qty > item.Qty-returned {
		return nil, fmt.Errorf("%w: only %d of %s left to return", store.ErrValidation, item.Qty-returned, item.ProductName)
	}

	prod, err := s.local.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", req.ProductID, err)
	}
	if prod.CurrentStock < req.Qty {
		return nil, fmt.Errorf("%w: %s has %d in stock, cannot return %d to supplier",
			store.ErrInsufficientStock, prod.Name, prod.CurrentStock, req.Qty)
	}
	if len(req.IMEIs) > 0 {
		if len(req.IMEIs) != req.Qty {
			return nil, fmt.Errorf("%w: serial count must match quantity", store.ErrValidation)
		}
		for _, serial := range req.IMEIs {
			rec, err := s.local.GetLiveIMEIBySerial(ctx, serial)
			if err != nil {
				return nil, fmt.Errorf("imei %s: %w", serial, err)
			}
			if rec.Status != domain.IMEIInStock {
				return nil, fmt.Errorf("%w: imei %s is %s, only stock can go back", store.ErrValidation, serial, rec.Status)
			}
		}
	}

	ret := domain.PurchaseReturn{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("pret"),
			SyncStatus: domain.SyncPending,
		},
		PurchaseID:  purchase.LocalID,
		SupplierID:  purchase.SupplierID,
		ProductID:   req.ProductID,
		Qty:         req.Qty,
		IMEIs:       req.IMEIs,
		Reason:      strings.TrimSpace(req.Reason),
		AmountCents: int64(req.Qty) * item.CostCents,
		Date:        date,
	}
	if err := s.local.PutPurchaseReturn(ctx, ret); err != nil {
		return nil, err
	}

	if err := s.adjustStock(ctx, req.ProductID, -req.Qty); err != nil {
		log.Printf("[service] WARN: purchase return %s: stock -%d on %s: %v", ret.LocalID, req.Qty, req.ProductID, err)
	}
	for _, serial := range req.IMEIs {
		if _, err := s.imeis.Retire(ctx, serial); err != nil {
			log.Printf("[service] WARN: purchase return %s: retire imei %s: %v", ret.LocalID, serial, err)
		}
	}

	if purchase.SupplierID != "" {
		s.writeSupplierEntry(ctx, purchase.SupplierID, domain.LedgerPurchaseReturn, ret.AmountCents, ret.LocalID, date,
			"return to supplier")
		s.refreshSupplier(ctx, purchase.SupplierID)
	}

	s.kick()
	return &ret, nil
}

func (s *Service) ListSaleReturns(ctx context.Context) ([]domain.SaleReturn, error) {
	return s.local.ListSaleReturns(ctx)
}

func (s *Service) ListPurchaseReturns(ctx context.Context) ([]domain.PurchaseReturn, error) {
	return s.local.ListPurchaseReturns(ctx)
}

// --- payments ---

func (s *Service) AddCustomerPayment(ctx context.Context, req domain.PaymentRequest) (*domain.CustomerLedgerEntry, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", store.ErrValidation)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.CounterpartyID)
	defer unlock()

	if _, err := s.local.GetCustomer(ctx, req.CounterpartyID); err != nil {
		return nil, fmt.Errorf("customer %s: %w", req.CounterpartyID, err)
	}

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "payment received"
	}
	entry := domain.CustomerLedgerEntry{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("cled"),
			SyncStatus: domain.SyncPending,
		},
		CustomerID:  req.CounterpartyID,
		Date:        date,
		Type:        domain.LedgerPayment,
		Description: desc,
		AmountCents: req.AmountCents,
	}
	if err := s.local.PutCustomerLedger(ctx, entry); err != nil {
		return nil, err
	}
	s.refreshCustomer(ctx, req.CounterpartyID)
	s.kick()
	return &entry, nil
}

func (s *Service) AddSupplierPayment(ctx context.Context, req domain.PaymentRequest) (*domain.SupplierLedgerEntry, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", store.ErrValidation)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.CounterpartyID)
	defer unlock()

	if _, err := s.local.GetSupplier(ctx, req.CounterpartyID); err != nil {
		return nil, fmt.Errorf("supplier %s: %w", req.CounterpartyID, err)
	}

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "payment sent"
	}
	entry := domain.SupplierLedgerEntry{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("sled"),
			SyncStatus: domain.SyncPending,
		},
		SupplierID:  req.CounterpartyID,
		Date:        date,
		Type:        domain.LedgerPayment,
		Description: desc,
		AmountCents: req.AmountCents,
	}
	if err := s.local.PutSupplierLedger(ctx, entry); err != nil {
		return nil, err
	}
	s.refreshSupplier(ctx, req.CounterpartyID)
	s.kick()
	return &entry, nil
}

// --- cascade helpers ---

func (s *Service) adjustStock(ctx context.Context, productID string, delta int) error {
	prod, err := s.local.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	prod.CurrentStock += delta
	prod.SyncStatus = domain.SyncPending
	return s.local.PutProduct(ctx, *prod)
}

func (s *Service) writeCustomerEntry(ctx context.Context, customerID, typ string, amount int64, refID, date, desc string) {
	entry := domain.CustomerLedgerEntry{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("cled"),
			SyncStatus: domain.SyncPending,
		},
		CustomerID:  customerID,
		Date:        date,
		Type:        typ,
		Description: desc,
		AmountCents: amount,
		RefID:       refID,
	}
	if err := s.local.PutCustomerLedger(ctx, entry); err != nil {
		log.Printf("[service] WARN: write %s entry for customer %s: %v", typ, customerID, err)
	}
}

func (s *Service) writeSupplierEntry(ctx context.Context, supplierID, typ string, amount int64, refID, date, desc string) {
	entry := domain.SupplierLedgerEntry{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("sled"),
			SyncStatus: domain.SyncPending,
		},
		SupplierID:  supplierID,
		Date:        date,
		Type:        typ,
		Description: desc,
		AmountCents: amount,
		RefID:       refID,
	}
	if err := s.local.PutSupplierLedger(ctx, entry); err != nil {
		log.Printf("[service] WARN: write %s entry for supplier %s: %v", typ, supplierID, err)
	}
}

func (s *Service) dropCustomerEntries(ctx context.Context, customerID, refID string) {
	entries, err := s.local.ListCustomerLedgerByCustomer(ctx, customerID)
	if err != nil {
		log.Printf("[service] WARN: list ledger for customer %s: %v", customerID, err)
		return
	}
	for _, e := range entries {
		if e.RefID != refID {
			continue
		}
		if err := s.local.DeleteCustomerLedger(ctx, e.LocalID); err != nil {
			log.Printf("[service] WARN: delete ledger entry %s: %v", e.LocalID, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionCustomerLedger, e.RemoteID)
	}
}

func (s *Service) dropSupplierEntries(ctx context.Context, supplierID, refID string) {
	entries, err := s.local.ListSupplierLedgerBySupplier(ctx, supplierID)
	if err != nil {
		log.Printf("[service] WARN: list ledger for supplier %s: %v", supplierID, err)
		return
	}
	for _, e := range entries {
		if e.RefID != refID {
			continue
		}
		if err := s.local.DeleteSupplierLedger(ctx, e.LocalID); err != nil {
			log.Printf("[service] WARN: delete ledger entry %s: %v", e.LocalID, err)
			continue
		}
		s.tombstone(ctx, domain.CollectionSupplierLedger, e.RemoteID)
	}
}

// refreshCustomer refolds the cached balance after a ledger mutation.
func (s *Service) refreshCustomer(ctx context.Context, customerID string) {
	cust, err := s.local.GetCustomer(ctx, customerID)
	if err != nil {
		log.Printf("[service] WARN: refresh customer %s: %v", customerID, err)
		return
	}
	if err := s.recomputeCustomerBalance(ctx, cust); err != nil {
		log.Printf("[service] WARN: refold customer %s: %v", customerID, err)
		return
	}
	cust.SyncStatus = domain.SyncPending
	if err := s.local.PutCustomer(ctx, *cust); err != nil {
		log.Printf("[service] WARN: store customer %s balance: %v", customerID, err)
	}
	s.invalidateLedger(ctx, customerID)
}

func (s *Service) refreshSupplier(ctx context.Context, supplierID string) {
	sup, err := s.local.GetSupplier(ctx, supplierID)
	if err != nil {
		log.Printf("[service] WARN: refresh supplier %s: %v", supplierID, err)
		return
	}
	if err := s.recomputeSupplierBalance(ctx, sup); err != nil {
		log.Printf("[service] WARN: refold supplier %s: %v", supplierID, err)
		return
	}
	sup.SyncStatus = domain.SyncPending
	if err := s.local.PutSupplier(ctx, *sup); err != nil {
		log.Printf("[service] WARN: store supplier %s balance: %v", supplierID, err)
	}
	s.invalidateLedger(ctx, supplierID)
}
