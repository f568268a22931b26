package imei

import (
	"context"
	"errors"
	"testing"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/store"
	"ponselpos/backend/internal/store/memory"
)

const serial = "356938035643809"

func newTestTracker() (*Tracker, store.Local) {
	local := memory.New()
	return NewTracker(local), local
}

func TestAcquireRejectsDuplicateLiveSerial(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	if _, err := tr.Acquire(ctx, serial, "prod-1", "pur-1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := tr.Acquire(ctx, serial, "prod-1", "pur-2"); !errors.Is(err, store.ErrDuplicateIMEI) {
		t.Fatalf("expected ErrDuplicateIMEI, got %v", err)
	}
}

func TestSellReturnSellAgain(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	if _, err := tr.Acquire(ctx, serial, "prod-1", "pur-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	rec, err := tr.Consume(ctx, serial, "sale-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if rec.Status != domain.IMEISold || rec.SaleID != "sale-1" {
		t.Fatalf("expected sold/sale-1, got %s/%s", rec.Status, rec.SaleID)
	}

	// Selling a sold unit must fail.
	if _, err := tr.Consume(ctx, serial, "sale-2"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation on double sell, got %v", err)
	}

	rec, err = tr.Release(ctx, serial)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if rec.Status != domain.IMEIInStock || rec.SaleID != "" {
		t.Fatalf("expected in_stock with cleared sale, got %s/%s", rec.Status, rec.SaleID)
	}

	if _, err := tr.Consume(ctx, serial, "sale-2"); err != nil {
		t.Fatalf("resell after return: %v", err)
	}
}

func TestReleaseRequiresSold(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	if _, err := tr.Acquire(ctx, serial, "prod-1", "pur-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := tr.Release(ctx, serial); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation releasing in-stock unit, got %v", err)
	}
}

func TestRetireIsTerminalAndFreesSerial(t *testing.T) {
	tr, local := newTestTracker()
	ctx := context.Background()

	first, err := tr.Acquire(ctx, serial, "prod-1", "pur-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := tr.Retire(ctx, serial); err != nil {
		t.Fatalf("retire: %v", err)
	}

	// The retired record survives for history.
	old, err := local.GetIMEI(ctx, first.LocalID)
	if err != nil {
		t.Fatalf("get retired record: %v", err)
	}
	if old.Status != domain.IMEIReturned {
		t.Fatalf("expected returned, got %s", old.Status)
	}

	// No live record left: no further transitions, but re-intake is legal.
	if _, err := tr.Consume(ctx, serial, "sale-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound consuming retired serial, got %v", err)
	}
	second, err := tr.Acquire(ctx, serial, "prod-1", "pur-2")
	if err != nil {
		t.Fatalf("re-acquire after retire: %v", err)
	}
	if second.LocalID == first.LocalID {
		t.Fatalf("re-intake must mint a fresh record")
	}
}

func TestRetireRequiresStock(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	if _, err := tr.Acquire(ctx, serial, "prod-1", "pur-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := tr.Consume(ctx, serial, "sale-1"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if _, err := tr.Retire(ctx, serial); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation retiring sold unit, got %v", err)
	}
}

func TestMutationsGoOutPending(t *testing.T) {
	tr, local := newTestTracker()
	ctx := context.Background()

	rec, err := tr.Acquire(ctx, serial, "prod-1", "pur-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// Simulate a completed sync, then mutate.
	rec.SyncStatus = domain.SyncSynced
	rec.RemoteID = "77"
	if err := local.PutIMEI(ctx, *rec); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	sold, err := tr.Consume(ctx, serial, "sale-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if sold.SyncStatus != domain.SyncPending {
		t.Fatalf("mutation must flip status to pending, got %s", sold.SyncStatus)
	}
	if sold.RemoteID != "77" {
		t.Fatalf("remote id must survive the mutation, got %q", sold.RemoteID)
	}
}

// brokenSerialLookup fails every duplicate check so tests can prove the
// failure surfaces instead of being read as "serial is free".
type brokenSerialLookup struct {
	store.Local
	err error
}

func (b *brokenSerialLookup) GetLiveIMEIBySerial(ctx context.Context, serial string) (*domain.IMEIRecord, error) {
	return nil, b.err
}

func TestAcquireSurfacesLookupFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	tr := NewTracker(&brokenSerialLookup{Local: memory.New(), err: boom})

	_, err := tr.Acquire(context.Background(), serial, "prod-1", "pur-1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected the lookup failure back, got %v", err)
	}
}
