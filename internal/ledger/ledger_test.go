package ledger

import (
	"testing"

	"ponselpos/backend/internal/domain"
)

func centry(typ string, amount int64) domain.CustomerLedgerEntry {
	return domain.CustomerLedgerEntry{Type: typ, AmountCents: amount}
}

func sentry(typ string, amount int64) domain.SupplierLedgerEntry {
	return domain.SupplierLedgerEntry{Type: typ, AmountCents: amount}
}

func TestRecomputeCustomer(t *testing.T) {
	// Opening 1000 owed, then a 500 sale, a 1200 payment and a 100 return.
	entries := []domain.CustomerLedgerEntry{
		centry(domain.LedgerSale, 500),
		centry(domain.LedgerPayment, 1200),
		centry(domain.LedgerSaleReturn, 100),
	}
	got := RecomputeCustomer(1000, domain.BalancePayable, entries)
	if got.AmountCents != 200 {
		t.Fatalf("expected balance 200, got %d", got.AmountCents)
	}
	if got.Type != domain.BalancePayable {
		t.Fatalf("customer balance type must stay payable, got %s", got.Type)
	}
}

func TestRecomputeCustomerClampsAtZero(t *testing.T) {
	entries := []domain.CustomerLedgerEntry{
		centry(domain.LedgerSale, 500),
		centry(domain.LedgerPayment, 2000),
	}
	got := RecomputeCustomer(1000, domain.BalancePayable, entries)
	if got.AmountCents != 0 {
		t.Fatalf("overpayment must clamp to zero, got %d", got.AmountCents)
	}
	if got.Type != domain.BalancePayable {
		t.Fatalf("expected payable, got %s", got.Type)
	}
}

func TestRecomputeCustomerReceivableOpening(t *testing.T) {
	// Shop owed the customer 300; a 500 sale nets out to 200 owed by them.
	got := RecomputeCustomer(300, domain.BalanceReceivable, []domain.CustomerLedgerEntry{
		centry(domain.LedgerSale, 500),
	})
	if got.AmountCents != 200 || got.Type != domain.BalancePayable {
		t.Fatalf("expected 200 payable, got %d %s", got.AmountCents, got.Type)
	}
}

func TestRecomputeCustomerEmptyHistory(t *testing.T) {
	got := RecomputeCustomer(750, domain.BalancePayable, nil)
	if got.AmountCents != 750 {
		t.Fatalf("empty history must yield opening balance, got %d", got.AmountCents)
	}
}

func TestRecomputeSupplier(t *testing.T) {
	entries := []domain.SupplierLedgerEntry{
		sentry(domain.LedgerPurchase, 4000),
		sentry(domain.LedgerPayment, 1500),
		sentry(domain.LedgerPurchaseReturn, 500),
	}
	got := RecomputeSupplier(0, domain.BalancePayable, entries)
	if got.AmountCents != 2000 || got.Type != domain.BalancePayable {
		t.Fatalf("expected 2000 payable, got %d %s", got.AmountCents, got.Type)
	}
}

func TestRecomputeSupplierFlipsToReceivable(t *testing.T) {
	// Paying past zero turns the debt into a claim on the supplier.
	entries := []domain.SupplierLedgerEntry{
		sentry(domain.LedgerPurchase, 1000),
		sentry(domain.LedgerPayment, 1600),
	}
	got := RecomputeSupplier(0, domain.BalancePayable, entries)
	if got.AmountCents != 600 || got.Type != domain.BalanceReceivable {
		t.Fatalf("expected 600 receivable, got %d %s", got.AmountCents, got.Type)
	}
}

func TestRecomputeSupplierPaymentSettlesReceivable(t *testing.T) {
	// The shop is owed 500. A 200 payment from the supplier settles part
	// of that claim; it must not push the claim further out.
	got := RecomputeSupplier(500, domain.BalanceReceivable, []domain.SupplierLedgerEntry{
		sentry(domain.LedgerPayment, 200),
	})
	if got.AmountCents != 300 || got.Type != domain.BalanceReceivable {
		t.Fatalf("expected 300 receivable, got %d %s", got.AmountCents, got.Type)
	}
}

func TestRecomputeSupplierPaymentCanCrossZeroOnce(t *testing.T) {
	// A payment larger than the payable flips direction; a later payment
	// then settles the new receivable instead of growing it.
	entries := []domain.SupplierLedgerEntry{
		sentry(domain.LedgerPurchase, 1000),
		sentry(domain.LedgerPayment, 1600),
		sentry(domain.LedgerPayment, 400),
	}
	got := RecomputeSupplier(0, domain.BalancePayable, entries)
	if got.AmountCents != 200 || got.Type != domain.BalanceReceivable {
		t.Fatalf("expected 200 receivable, got %d %s", got.AmountCents, got.Type)
	}
}

func TestRecomputeSupplierReceivableOpening(t *testing.T) {
	entries := []domain.SupplierLedgerEntry{
		sentry(domain.LedgerPurchase, 300),
	}
	got := RecomputeSupplier(500, domain.BalanceReceivable, entries)
	if got.AmountCents != 200 || got.Type != domain.BalanceReceivable {
		t.Fatalf("expected 200 receivable, got %d %s", got.AmountCents, got.Type)
	}
}
