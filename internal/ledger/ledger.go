// Package ledger derives counterparty balances from ledger entries.
//
// A balance is never stored authoritatively: the cached figure on a
// customer or supplier record is always the result of folding that
// counterparty's full entry history over the opening balance. Deleting a
// transaction deletes its entries, and the next fold lands on the balance
// that history implies.
package ledger

import "ponselpos/backend/internal/domain"

// Balance is one recomputed position. Customers carry a clamped payable
// figure; suppliers carry a signed figure with an explicit direction.
type Balance struct {
	AmountCents int64
	Type        string
}

// RecomputeCustomer folds a customer's entries oldest-first over the
// opening balance. Sales raise what the customer owes, payments and sale
// returns lower it. An opening balance of type receivable means the shop
// owed the customer, so it enters the fold negated. The result clamps at
// zero: customer credit is not tracked, overpayment is forgiven.
func RecomputeCustomer(openingCents int64, openingType string, entries []domain.CustomerLedgerEntry) Balance {
	bal := openingCents
	if openingType == domain.BalanceReceivable {
		bal = -openingCents
	}
	for _, e := range entries {
		switch e.Type {
		case domain.LedgerSale:
			bal += e.AmountCents
		case domain.LedgerPayment, domain.LedgerSaleReturn:
			bal -= e.AmountCents
		}
	}
	if bal < 0 {
		bal = 0
	}
	return Balance{AmountCents: bal, Type: domain.BalancePayable}
}

// RecomputeSupplier folds a supplier's entries oldest-first. Purchases
// raise what the shop owes; purchase returns lower it. A payment settles
// whichever side currently stands: it shrinks a payable, and it shrinks a
// receivable, always moving the figure toward zero rather than in a fixed
// direction. Unlike the customer side there is no clamp: an overpaid
// supplier is a real claim the shop holds.
func RecomputeSupplier(openingCents int64, openingType string, entries []domain.SupplierLedgerEntry) Balance {
	bal := openingCents
	if openingType == domain.BalanceReceivable {
		bal = -openingCents
	}
	for _, e := range entries {
		switch e.Type {
		case domain.LedgerPurchase:
			bal += e.AmountCents
		case domain.LedgerPurchaseReturn:
			bal -= e.AmountCents
		case domain.LedgerPayment:
			if bal >= 0 {
				bal -= e.AmountCents
			} else {
				bal += e.AmountCents
			}
		}
	}
	if bal >= 0 {
		return Balance{AmountCents: bal, Type: domain.BalancePayable}
	}
	return Balance{AmountCents: -bal, Type: domain.BalanceReceivable}
}
