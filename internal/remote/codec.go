package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"ponselpos/backend/internal/domain"
)

// The codecs below are the adapter boundary: one document type per
// entity, translated explicitly in both directions. Device-side sync
// state (sync status, the replica's own id) stays behind; date strings
// become native timestamps on the way up and come back as strings on the
// way down. The local id rides along so a restored device can rebuild
// its keyspace and cross-record references from the replica alone.

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(domain.DateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(domain.DateLayout)
}

func docMeta(localID string, created, updated time.Time) domain.SyncMeta {
	return domain.SyncMeta{LocalID: localID, CreatedAt: created, UpdatedAt: updated}
}

type customerDoc struct {
	LocalID             string    `json:"local_id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone,omitempty"`
	Address             string    `json:"address,omitempty"`
	OpeningBalanceCents int64     `json:"opening_balance_cents"`
	BalanceType         string    `json:"balance_type"`
	CurrentBalanceCents int64     `json:"current_balance_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func EncodeCustomer(c domain.Customer) (json.RawMessage, error) {
	return json.Marshal(customerDoc{
		LocalID:             c.LocalID,
		Name:                c.Name,
		Phone:               c.Phone,
		Address:             c.Address,
		OpeningBalanceCents: c.OpeningBalanceCents,
		BalanceType:         c.BalanceType,
		CurrentBalanceCents: c.CurrentBalanceCents,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	})
}

func DecodeCustomer(d Document) (domain.Customer, error) {
	var doc customerDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		SyncMeta:            docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		Name:                doc.Name,
		Phone:               doc.Phone,
		Address:             doc.Address,
		OpeningBalanceCents: doc.OpeningBalanceCents,
		BalanceType:         doc.BalanceType,
		CurrentBalanceCents: doc.CurrentBalanceCents,
	}, nil
}

type supplierDoc struct {
	LocalID             string    `json:"local_id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone,omitempty"`
	Address             string    `json:"address,omitempty"`
	OpeningBalanceCents int64     `json:"opening_balance_cents"`
	BalanceType         string    `json:"balance_type"`
	CurrentBalanceCents int64     `json:"current_balance_cents"`
	CurrentBalanceType  string    `json:"current_balance_type"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func EncodeSupplier(s domain.Supplier) (json.RawMessage, error) {
	return json.Marshal(supplierDoc{
		LocalID:             s.LocalID,
		Name:                s.Name,
		Phone:               s.Phone,
		Address:             s.Address,
		OpeningBalanceCents: s.OpeningBalanceCents,
		BalanceType:         s.BalanceType,
		CurrentBalanceCents: s.CurrentBalanceCents,
		CurrentBalanceType:  s.CurrentBalanceType,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	})
}

func DecodeSupplier(d Document) (domain.Supplier, error) {
	var doc supplierDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Supplier{}, err
	}
	return domain.Supplier{
		SyncMeta:            docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		Name:                doc.Name,
		Phone:               doc.Phone,
		Address:             doc.Address,
		OpeningBalanceCents: doc.OpeningBalanceCents,
		BalanceType:         doc.BalanceType,
		CurrentBalanceCents: doc.CurrentBalanceCents,
		CurrentBalanceType:  doc.CurrentBalanceType,
	}, nil
}

type productDoc struct {
	LocalID           string             `json:"local_id"`
	Name              string             `json:"name"`
	Category          string             `json:"category,omitempty"`
	CostCents         int64              `json:"cost_cents"`
	SalePriceCents    int64              `json:"sale_price_cents"`
	CurrentStock      int                `json:"current_stock"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	Serialized        bool               `json:"serialized"`
	Variations        []domain.Variation `json:"variations,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func EncodeProduct(p domain.Product) (json.RawMessage, error) {
	return json.Marshal(productDoc{
		LocalID:           p.LocalID,
		Name:              p.Name,
		Category:          p.Category,
		CostCents:         p.CostCents,
		SalePriceCents:    p.SalePriceCents,
		CurrentStock:      p.CurrentStock,
		LowStockThreshold: p.LowStockThreshold,
		Serialized:        p.Serialized,
		Variations:        p.Variations,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	})
}

func DecodeProduct(d Document) (domain.Product, error) {
	var doc productDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		SyncMeta:          docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		Name:              doc.Name,
		Category:          doc.Category,
		CostCents:         doc.CostCents,
		SalePriceCents:    doc.SalePriceCents,
		CurrentStock:      doc.CurrentStock,
		LowStockThreshold: doc.LowStockThreshold,
		Serialized:        doc.Serialized,
		Variations:        doc.Variations,
	}, nil
}

type imeiDoc struct {
	LocalID    string    `json:"local_id"`
	Serial     string    `json:"serial"`
	ProductID  string    `json:"product_id"`
	Status     string    `json:"status"`
	PurchaseID string    `json:"purchase_id,omitempty"`
	SaleID     string    `json:"sale_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func EncodeIMEI(r domain.IMEIRecord) (json.RawMessage, error) {
	return json.Marshal(imeiDoc{
		LocalID:    r.LocalID,
		Serial:     r.Serial,
		ProductID:  r.ProductID,
		Status:     r.Status,
		PurchaseID: r.PurchaseID,
		SaleID:     r.SaleID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	})
}

func DecodeIMEI(d Document) (domain.IMEIRecord, error) {
	var doc imeiDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.IMEIRecord{}, err
	}
	return domain.IMEIRecord{
		SyncMeta:   docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		Serial:     doc.Serial,
		ProductID:  doc.ProductID,
		Status:     doc.Status,
		PurchaseID: doc.PurchaseID,
		SaleID:     doc.SaleID,
	}, nil
}

type saleDoc struct {
	LocalID          string            `json:"local_id"`
	InvoiceNo        string            `json:"invoice_no"`
	CustomerID       string            `json:"customer_id,omitempty"`
	CustomerName     string            `json:"customer_name,omitempty"`
	CustomerRemoteID string            `json:"customer_remote_id,omitempty"`
	Date             time.Time         `json:"date"`
	TotalCents       int64             `json:"total_cents"`
	PaidCents        int64             `json:"paid_cents"`
	PaymentStatus    string            `json:"payment_status"`
	Items            []domain.SaleItem `json:"items"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func EncodeSale(s domain.Sale) (json.RawMessage, error) {
	date, err := parseDate(s.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(saleDoc{
		LocalID:          s.LocalID,
		InvoiceNo:        s.InvoiceNo,
		CustomerID:       s.CustomerID,
		CustomerName:     s.CustomerName,
		CustomerRemoteID: s.CustomerRemoteID,
		Date:             date,
		TotalCents:       s.TotalCents,
		PaidCents:        s.PaidCents,
		PaymentStatus:    s.PaymentStatus,
		Items:            s.Items,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	})
}

func DecodeSale(d Document) (domain.Sale, error) {
	var doc saleDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Sale{}, err
	}
	return domain.Sale{
		SyncMeta:         docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		InvoiceNo:        doc.InvoiceNo,
		CustomerID:       doc.CustomerID,
		CustomerName:     doc.CustomerName,
		CustomerRemoteID: doc.CustomerRemoteID,
		Date:             formatDate(doc.Date),
		TotalCents:       doc.TotalCents,
		PaidCents:        doc.PaidCents,
		PaymentStatus:    doc.PaymentStatus,
		Items:            doc.Items,
	}, nil
}

type purchaseDoc struct {
	LocalID          string                `json:"local_id"`
	RefNo            string                `json:"ref_no,omitempty"`
	SupplierID       string                `json:"supplier_id,omitempty"`
	SupplierName     string                `json:"supplier_name,omitempty"`
	SupplierRemoteID string                `json:"supplier_remote_id,omitempty"`
	Date             time.Time             `json:"date"`
	TotalCents       int64                 `json:"total_cents"`
	PaidCents        int64                 `json:"paid_cents"`
	PaymentStatus    string                `json:"payment_status"`
	Items            []domain.PurchaseItem `json:"items"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func EncodePurchase(p domain.Purchase) (json.RawMessage, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(purchaseDoc{
		LocalID:          p.LocalID,
		RefNo:            p.RefNo,
		SupplierID:       p.SupplierID,
		SupplierName:     p.SupplierName,
		SupplierRemoteID: p.SupplierRemoteID,
		Date:             date,
		TotalCents:       p.TotalCents,
		PaidCents:        p.PaidCents,
		PaymentStatus:    p.PaymentStatus,
		Items:            p.Items,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	})
}

func DecodePurchase(d Document) (domain.Purchase, error) {
	var doc purchaseDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Purchase{}, err
	}
	return domain.Purchase{
		SyncMeta:         docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		RefNo:            doc.RefNo,
		SupplierID:       doc.SupplierID,
		SupplierName:     doc.SupplierName,
		SupplierRemoteID: doc.SupplierRemoteID,
		Date:             formatDate(doc.Date),
		TotalCents:       doc.TotalCents,
		PaidCents:        doc.PaidCents,
		PaymentStatus:    doc.PaymentStatus,
		Items:            doc.Items,
	}, nil
}

type saleReturnDoc struct {
	LocalID     string    `json:"local_id"`
	SaleID      string    `json:"sale_id"`
	CustomerID  string    `json:"customer_id,omitempty"`
	ProductID   string    `json:"product_id"`
	Qty         int       `json:"qty"`
	IMEIs       []string  `json:"imeis,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func EncodeSaleReturn(r domain.SaleReturn) (json.RawMessage, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(saleReturnDoc{
		LocalID:     r.LocalID,
		SaleID:      r.SaleID,
		CustomerID:  r.CustomerID,
		ProductID:   r.ProductID,
		Qty:         r.Qty,
		IMEIs:       r.IMEIs,
		Reason:      r.Reason,
		AmountCents: r.AmountCents,
		Date:        date,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

func DecodeSaleReturn(d Document) (domain.SaleReturn, error) {
	var doc saleReturnDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.SaleReturn{}, err
	}
	return domain.SaleReturn{
		SyncMeta:    docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		SaleID:      doc.SaleID,
		CustomerID:  doc.CustomerID,
		ProductID:   doc.ProductID,
		Qty:         doc.Qty,
		IMEIs:       doc.IMEIs,
		Reason:      doc.Reason,
		AmountCents: doc.AmountCents,
		Date:        formatDate(doc.Date),
	}, nil
}

type purchaseReturnDoc struct {
	LocalID     string    `json:"local_id"`
	PurchaseID  string    `json:"purchase_id"`
	SupplierID  string    `json:"supplier_id,omitempty"`
	ProductID   string    `json:"product_id"`
	Qty         int       `json:"qty"`
	IMEIs       []string  `json:"imeis,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func EncodePurchaseReturn(r domain.PurchaseReturn) (json.RawMessage, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(purchaseReturnDoc{
		LocalID:     r.LocalID,
		PurchaseID:  r.PurchaseID,
		SupplierID:  r.SupplierID,
		ProductID:   r.ProductID,
		Qty:         r.Qty,
		IMEIs:       r.IMEIs,
		Reason:      r.Reason,
		AmountCents: r.AmountCents,
		Date:        date,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	})
}

func DecodePurchaseReturn(d Document) (domain.PurchaseReturn, error) {
	var doc purchaseReturnDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.PurchaseReturn{}, err
	}
	return domain.PurchaseReturn{
		SyncMeta:    docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		PurchaseID:  doc.PurchaseID,
		SupplierID:  doc.SupplierID,
		ProductID:   doc.ProductID,
		Qty:         doc.Qty,
		IMEIs:       doc.IMEIs,
		Reason:      doc.Reason,
		AmountCents: doc.AmountCents,
		Date:        formatDate(doc.Date),
	}, nil
}

type ledgerEntryDoc struct {
	LocalID        string    `json:"local_id"`
	CounterpartyID string    `json:"counterparty_id"`
	Date           time.Time `json:"date"`
	Type           string    `json:"type"`
	Description    string    `json:"description,omitempty"`
	AmountCents    int64     `json:"amount_cents"`
	RefID          string    `json:"ref_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func EncodeCustomerLedger(l domain.CustomerLedgerEntry) (json.RawMessage, error) {
	date, err := parseDate(l.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ledgerEntryDoc{
		LocalID:        l.LocalID,
		CounterpartyID: l.CustomerID,
		Date:           date,
		Type:           l.Type,
		Description:    l.Description,
		AmountCents:    l.AmountCents,
		RefID:          l.RefID,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	})
}

func DecodeCustomerLedger(d Document) (domain.CustomerLedgerEntry, error) {
	var doc ledgerEntryDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.CustomerLedgerEntry{}, err
	}
	return domain.CustomerLedgerEntry{
		SyncMeta:    docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		CustomerID:  doc.CounterpartyID,
		Date:        formatDate(doc.Date),
		Type:        doc.Type,
		Description: doc.Description,
		AmountCents: doc.AmountCents,
		RefID:       doc.RefID,
	}, nil
}

func EncodeSupplierLedger(l domain.SupplierLedgerEntry) (json.RawMessage, error) {
	date, err := parseDate(l.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ledgerEntryDoc{
		LocalID:        l.LocalID,
		CounterpartyID: l.SupplierID,
		Date:           date,
		Type:           l.Type,
		Description:    l.Description,
		AmountCents:    l.AmountCents,
		RefID:          l.RefID,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	})
}

func DecodeSupplierLedger(d Document) (domain.SupplierLedgerEntry, error) {
	var doc ledgerEntryDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.SupplierLedgerEntry{}, err
	}
	return domain.SupplierLedgerEntry{
		SyncMeta:    docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		SupplierID:  doc.CounterpartyID,
		Date:        formatDate(doc.Date),
		Type:        doc.Type,
		Description: doc.Description,
		AmountCents: doc.AmountCents,
		RefID:       doc.RefID,
	}, nil
}

type expenseDoc struct {
	LocalID     string    `json:"local_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func EncodeExpense(x domain.Expense) (json.RawMessage, error) {
	date, err := parseDate(x.Date)
	if err != nil {
		return nil, err
	}
	return json.Marshal(expenseDoc{
		LocalID:     x.LocalID,
		Title:       x.Title,
		Description: x.Description,
		AmountCents: x.AmountCents,
		Date:        date,
		CreatedAt:   x.CreatedAt,
		UpdatedAt:   x.UpdatedAt,
	})
}

func DecodeExpense(d Document) (domain.Expense, error) {
	var doc expenseDoc
	if err := json.Unmarshal(d.Doc, &doc); err != nil {
		return domain.Expense{}, err
	}
	return domain.Expense{
		SyncMeta:    docMeta(doc.LocalID, doc.CreatedAt, doc.UpdatedAt),
		Title:       doc.Title,
		Description: doc.Description,
		AmountCents: doc.AmountCents,
		Date:        formatDate(doc.Date),
	}, nil
}
