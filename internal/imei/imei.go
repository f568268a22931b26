// Package imei tracks serialized units through their lifecycle.
//
// A serial moves in_stock -> sold on sale, back to in_stock on sale
// return, and to returned (terminal) when the unit goes back to the
// supplier. The same serial string may appear in several records over
// time, but at most one non-returned record is live at any moment; the
// store's live-serial lookup enforces the uniqueness side of that.
package imei

import (
	"context"
	"errors"
	"fmt"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/xid"
)

// Tracker wraps the local store with the transition guards. It never
// flips sync status to synced; every mutation it writes goes out pending.
type Tracker struct {
	local store.Local
}

func NewTracker(local store.Local) *Tracker {
	return &Tracker{local: local}
}

// Acquire registers a serial against a product on intake. The serial must
// not already have a live record.
func (t *Tracker) Acquire(ctx context.Context, serial, productID, purchaseID string) (*domain.IMEIRecord, error) {
	if serial == "" || productID == "" {
		return nil, fmt.Errorf("%w: serial and product are required", store.ErrValidation)
	}
	live, err := t.local.GetLiveIMEIBySerial(ctx, serial)
	if err == nil {
		return nil, fmt.Errorf("%w: serial %s already tracked as %s", store.ErrDuplicateIMEI, serial, live.Status)
	}
	// Only a confirmed miss clears the serial; a failed lookup must not
	// wave a possible duplicate through.
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("imei %s: %w", serial, err)
	}
	rec := domain.IMEIRecord{
		SyncMeta: domain.SyncMeta{
			LocalID:    xid.New("imei"),
			SyncStatus: domain.SyncPending,
		},
		Serial:     serial,
		ProductID:  productID,
		Status:     domain.IMEIInStock,
		PurchaseID: purchaseID,
	}
	if err := t.local.PutIMEI(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Consume marks a serial sold. Only an in-stock unit can be sold.
func (t *Tracker) Consume(ctx context.Context, serial, saleID string) (*domain.IMEIRecord, error) {
	rec, err := t.local.GetLiveIMEIBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("imei %s: %w", serial, err)
	}
	if rec.Status != domain.IMEIInStock {
		return nil, fmt.Errorf("%w: imei %s is %s, not in stock", store.ErrValidation, serial, rec.Status)
	}
	rec.Status = domain.IMEISold
	rec.SaleID = saleID
	rec.SyncStatus = domain.SyncPending
	if err := t.local.PutIMEI(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Release puts a sold serial back in stock, used by sale returns and by
// sale delete compensation.
func (t *Tracker) Release(ctx context.Context, serial string) (*domain.IMEIRecord, error) {
	rec, err := t.local.GetLiveIMEIBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("imei %s: %w", serial, err)
	}
	if rec.Status != domain.IMEISold {
		return nil, fmt.Errorf("%w: imei %s is %s, not sold", store.ErrValidation, serial, rec.Status)
	}
	rec.Status = domain.IMEIInStock
	rec.SaleID = ""
	rec.SyncStatus = domain.SyncPending
	if err := t.local.PutIMEI(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Retire sends an in-stock serial back to the supplier. Returned is
// terminal: the record stays for history and the serial becomes free to
// register again on a future intake.
func (t *Tracker) Retire(ctx context.Context, serial string) (*domain.IMEIRecord, error) {
	rec, err := t.local.GetLiveIMEIBySerial(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("imei %s: %w", serial, err)
	}
	if rec.Status != domain.IMEIInStock {
		return nil, fmt.Errorf("%w: imei %s is %s, only stock can go back to supplier", store.ErrValidation, serial, rec.Status)
	}
	rec.Status = domain.IMEIReturned
	rec.SyncStatus = domain.SyncPending
	if err := t.local.PutIMEI(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}
