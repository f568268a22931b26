package domain

import "time"

// DateLayout is the normalized date-time string carried on every dated
// record in the local store. The remote replica stores native timestamps;
// the adapter converts on the way in and out.
const DateLayout = "2006-01-02 15:04:05"

const (
	SyncPending = "pending"
	SyncSynced  = "synced"
)

const (
	IMEIInStock  = "in_stock"
	IMEISold     = "sold"
	IMEIReturned = "returned"
)

const (
	BalancePayable    = "payable"
	BalanceReceivable = "receivable"
)

const (
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// Customer ledger entry types.
const (
	LedgerSale       = "sale"
	LedgerPayment    = "payment"
	LedgerSaleReturn = "sale_return"
)

// Supplier ledger entry types (LedgerPayment is shared).
const (
	LedgerPurchase       = "purchase"
	LedgerPurchaseReturn = "purchase_return"
)

// Entity collection names, one remote collection per entity type. Tombstones
// and sync sweeps key on these.
const (
	CollectionCustomers       = "customers"
	CollectionSuppliers       = "suppliers"
	CollectionProducts        = "products"
	CollectionIMEIs           = "imeis"
	CollectionSales           = "sales"
	CollectionPurchases       = "purchases"
	CollectionSaleReturns     = "sale_returns"
	CollectionPurchaseReturns = "purchase_returns"
	CollectionCustomerLedger  = "customer_ledger"
	CollectionSupplierLedger  = "supplier_ledger"
	CollectionExpenses        = "expenses"
)

// SyncMeta carries the three universal fields every entity shares.
// LocalID is assigned at creation and never reused. RemoteID stays empty
// until the first successful push. SyncStatus flips back to pending on
// every local mutation; RemoteID presence and SyncStatus are independent
// axes.
type SyncMeta struct {
	LocalID    string    `json:"local_id" gorm:"primaryKey;column:local_id"`
	RemoteID   string    `json:"remote_id" gorm:"index;column:remote_id"`
	SyncStatus string    `json:"sync_status" gorm:"index;column:sync_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Variation struct {
	Storage        string `json:"storage"`
	Color          string `json:"color"`
	CostCents      int64  `json:"cost_cents"`
	SalePriceCents int64  `json:"sale_price_cents"`
}

type Product struct {
	SyncMeta
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	CostCents         int64       `json:"cost_cents"`
	SalePriceCents    int64       `json:"sale_price_cents"`
	CurrentStock      int         `json:"current_stock"`
	LowStockThreshold int         `json:"low_stock_threshold"`
	Serialized        bool        `json:"serialized"`
	Variations        []Variation `json:"variations,omitempty" gorm:"serializer:json"`
}

type IMEIRecord struct {
	SyncMeta
	Serial     string `json:"serial" gorm:"index"`
	ProductID  string `json:"product_id" gorm:"index"`
	Status     string `json:"status" gorm:"index"`
	PurchaseID string `json:"purchase_id,omitempty"`
	SaleID     string `json:"sale_id,omitempty"`
}

type SaleItem struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Qty            int      `json:"qty"`
	CostCents      int64    `json:"cost_cents"`
	SalePriceCents int64    `json:"sale_price_cents"`
	Condition      string   `json:"condition,omitempty"`
	Variation      string   `json:"variation,omitempty"`
	IMEIs          []string `json:"imeis,omitempty"`
}

type Sale struct {
	SyncMeta
	InvoiceNo        string     `json:"invoice_no"`
	CustomerID       string     `json:"customer_id,omitempty" gorm:"index"`
	CustomerName     string     `json:"customer_name"`
	CustomerRemoteID string     `json:"customer_remote_id,omitempty"`
	Date             string     `json:"date"`
	TotalCents       int64      `json:"total_cents"`
	PaidCents        int64      `json:"paid_cents"`
	PaymentStatus    string     `json:"payment_status"`
	Items            []SaleItem `json:"items" gorm:"serializer:json"`
}

type PurchaseItem struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Qty            int      `json:"qty"`
	CostCents      int64    `json:"cost_cents"`
	SalePriceCents int64    `json:"sale_price_cents"`
	Condition      string   `json:"condition,omitempty"`
	Variation      string   `json:"variation,omitempty"`
	IMEIs          []string `json:"imeis,omitempty"`
}

type Purchase struct {
	SyncMeta
	RefNo            string         `json:"ref_no,omitempty"`
	SupplierID       string         `json:"supplier_id,omitempty" gorm:"index"`
	SupplierName     string         `json:"supplier_name"`
	SupplierRemoteID string         `json:"supplier_remote_id,omitempty"`
	Date             string         `json:"date"`
	TotalCents       int64          `json:"total_cents"`
	PaidCents        int64          `json:"paid_cents"`
	PaymentStatus    string         `json:"payment_status"`
	Items            []PurchaseItem `json:"items" gorm:"serializer:json"`
}

type SaleReturn struct {
	SyncMeta
	SaleID      string   `json:"sale_id" gorm:"index"`
	CustomerID  string   `json:"customer_id,omitempty" gorm:"index"`
	ProductID   string   `json:"product_id"`
	Qty         int      `json:"qty"`
	IMEIs       []string `json:"imeis,omitempty" gorm:"serializer:json"`
	Reason      string   `json:"reason,omitempty"`
	AmountCents int64    `json:"amount_cents"`
	Date        string   `json:"date"`
}

type PurchaseReturn struct {
	SyncMeta
	PurchaseID  string   `json:"purchase_id" gorm:"index"`
	SupplierID  string   `json:"supplier_id,omitempty" gorm:"index"`
	ProductID   string   `json:"product_id"`
	Qty         int      `json:"qty"`
	IMEIs       []string `json:"imeis,omitempty" gorm:"serializer:json"`
	Reason      string   `json:"reason,omitempty"`
	AmountCents int64    `json:"amount_cents"`
	Date        string   `json:"date"`
}

type Customer struct {
	SyncMeta
	Name                string `json:"name"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	BalanceType         string `json:"balance_type"`
	// CurrentBalanceCents is a cached projection of the ledger fold. It is
	// recomputed after every ledger mutation, never hand-patched.
	CurrentBalanceCents int64 `json:"current_balance_cents"`
}

// Supplier.BalanceType qualifies the opening balance and never changes
// after creation; CurrentBalanceType is the direction of the folded
// balance, which payments past zero can flip.
type Supplier struct {
	SyncMeta
	Name                string `json:"name"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	BalanceType         string `json:"balance_type"`
	CurrentBalanceCents int64  `json:"current_balance_cents"`
	CurrentBalanceType  string `json:"current_balance_type"`
}

// CustomerLedgerEntry amounts are stored positive; the sign is inferred
// from Type at read time. RefID points at the sale/return/payment record
// that produced the entry so delete cascades can find it.
type CustomerLedgerEntry struct {
	SyncMeta
	CustomerID  string `json:"customer_id" gorm:"index"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	RefID       string `json:"ref_id,omitempty" gorm:"index"`
}

type SupplierLedgerEntry struct {
	SyncMeta
	SupplierID  string `json:"supplier_id" gorm:"index"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	RefID       string `json:"ref_id,omitempty" gorm:"index"`
}

type Expense struct {
	SyncMeta
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
}

// Tombstone records a remote delete that has not been confirmed yet. It is
// the delete-side outbox: push sweeps retry the remote delete, and pull
// refuses to re-import a tombstoned remote id.
type Tombstone struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	EntityType string    `json:"entity_type" gorm:"index"`
	RemoteID   string    `json:"remote_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

type CustomerRequest struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	BalanceType         string `json:"balance_type"`
}

type SupplierRequest struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	BalanceType         string `json:"balance_type"`
}

type ProductRequest struct {
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	CostCents         int64       `json:"cost_cents"`
	SalePriceCents    int64       `json:"sale_price_cents"`
	OpeningStock      int         `json:"opening_stock"`
	LowStockThreshold int         `json:"low_stock_threshold"`
	Serialized        bool        `json:"serialized"`
	Variations        []Variation `json:"variations,omitempty"`
}

type SaleItemRequest struct {
	ProductID      string   `json:"product_id"`
	Qty            int      `json:"qty"`
	SalePriceCents int64    `json:"sale_price_cents"`
	Condition      string   `json:"condition,omitempty"`
	Variation      string   `json:"variation,omitempty"`
	IMEIs          []string `json:"imeis,omitempty"`
}

type SaleRequest struct {
	CustomerID string            `json:"customer_id,omitempty"`
	Date       string            `json:"date,omitempty"`
	PaidCents  int64             `json:"paid_cents"`
	Items      []SaleItemRequest `json:"items"`
}

type PurchaseItemRequest struct {
	ProductID      string   `json:"product_id"`
	Qty            int      `json:"qty"`
	CostCents      int64    `json:"cost_cents"`
	SalePriceCents int64    `json:"sale_price_cents"`
	Condition      string   `json:"condition,omitempty"`
	Variation      string   `json:"variation,omitempty"`
	IMEIs          []string `json:"imeis,omitempty"`
}

type PurchaseRequest struct {
	SupplierID string                `json:"supplier_id,omitempty"`
	RefNo      string                `json:"ref_no,omitempty"`
	Date       string                `json:"date,omitempty"`
	PaidCents  int64                 `json:"paid_cents"`
	Items      []PurchaseItemRequest `json:"items"`
}

type SaleReturnRequest struct {
	SaleID    string   `json:"sale_id"`
	ProductID string   `json:"product_id"`
	Qty       int      `json:"qty"`
	IMEIs     []string `json:"imeis,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Date      string   `json:"date,omitempty"`
}

type PurchaseReturnRequest struct {
	PurchaseID string   `json:"purchase_id"`
	ProductID  string   `json:"product_id"`
	Qty        int      `json:"qty"`
	IMEIs      []string `json:"imeis,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	Date       string   `json:"date,omitempty"`
}

type PaymentRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	AmountCents    int64  `json:"amount_cents"`
	Description    string `json:"description,omitempty"`
	Date           string `json:"date,omitempty"`
}

type ExpenseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date,omitempty"`
}

type LedgerResponse struct {
	CounterpartyID      string                `json:"counterparty_id"`
	OpeningBalanceCents int64                 `json:"opening_balance_cents"`
	CurrentBalanceCents int64                 `json:"current_balance_cents"`
	BalanceType         string                `json:"balance_type"`
	CustomerEntries     []CustomerLedgerEntry `json:"customer_entries,omitempty"`
	SupplierEntries     []SupplierLedgerEntry `json:"supplier_entries,omitempty"`
}

type DayBook struct {
	Date                  string `json:"date"`
	SalesCount            int    `json:"sales_count"`
	SalesTotalCents       int64  `json:"sales_total_cents"`
	PurchaseCount         int    `json:"purchase_count"`
	PurchaseTotalCents    int64  `json:"purchase_total_cents"`
	ExpenseCount          int    `json:"expense_count"`
	ExpenseTotalCents     int64  `json:"expense_total_cents"`
	CustomerPaymentsCents int64  `json:"customer_payments_cents"`
	SupplierPaymentsCents int64  `json:"supplier_payments_cents"`
}

type PendingCounts struct {
	ByCollection map[string]int `json:"by_collection"`
	Tombstones   int            `json:"tombstones"`
	Total        int            `json:"total"`
}

type SyncReport struct {
	Pushed    int    `json:"pushed"`
	Pulled    int    `json:"pulled"`
	Pruned    int    `json:"pruned"`
	Deleted   int    `json:"deleted"`
	Skipped   int    `json:"skipped"`
	StartedAt string `json:"started_at"`
}

type LoginRequest struct {
	DeviceID  string `json:"device_id"`
	DeviceKey string `json:"device_key"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

// PaymentStatusFor derives the display payment status from totals. Prices
// are snapshots taken at transaction time, so the status never shifts when
// a product is re-priced later.
func PaymentStatusFor(totalCents, paidCents int64) string {
	switch {
	case paidCents <= 0:
		return PaymentUnpaid
	case paidCents < totalCents:
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
