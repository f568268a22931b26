package sync

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/remote"
	remotemem "ponselpos/backend/internal/remote/memory"
	"ponselpos/backend/internal/store"
	storemem "ponselpos/backend/internal/store/memory"
)

func newTestEngine() (*Engine, store.Local, *remotemem.Replica) {
	local := storemem.New()
	replica := remotemem.New()
	logger := log.New(os.Stderr, "", 0)
	return NewEngine(local, replica, logger), local, replica
}

func pendingCustomer(id, name string) domain.Customer {
	return domain.Customer{
		SyncMeta: domain.SyncMeta{LocalID: id, SyncStatus: domain.SyncPending},
		Name:     name,
	}
}

func TestPushAssignsRemoteIDs(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := local.PutProduct(ctx, domain.Product{
		SyncMeta: domain.SyncMeta{LocalID: "prod-1", SyncStatus: domain.SyncPending},
		Name:     "iPhone 13", CurrentStock: 5,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Pushed != 2 {
		t.Fatalf("expected 2 pushed, got %d", rep.Pushed)
	}

	cust, err := local.GetCustomer(ctx, "cus-1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if cust.RemoteID == "" || cust.SyncStatus != domain.SyncSynced {
		t.Fatalf("customer not marked synced: %+v", cust.SyncMeta)
	}
	if replica.Count(domain.CollectionCustomers) != 1 || replica.Count(domain.CollectionProducts) != 1 {
		t.Fatalf("replica missing pushed documents")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if rep.Pushed != 0 || rep.Pulled != 0 || rep.Pruned != 0 || rep.Deleted != 0 {
		t.Fatalf("second sweep must be a no-op, got %+v", rep)
	}
	if replica.Count(domain.CollectionCustomers) != 1 {
		t.Fatalf("duplicate document on replica")
	}
}

func TestPushRetriesAfterOffline(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	replica.SetOffline(true)
	if _, err := e.SyncAll(ctx); !errors.Is(err, remote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	cust, _ := local.GetCustomer(ctx, "cus-1")
	if cust.SyncStatus != domain.SyncPending {
		t.Fatalf("record must stay pending across a failed sweep")
	}

	replica.SetOffline(false)
	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync after reconnect: %v", err)
	}
	if rep.Pushed != 1 {
		t.Fatalf("expected 1 pushed, got %d", rep.Pushed)
	}
}

func TestPruneRemovesVanishedRecords(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	cust, _ := local.GetCustomer(ctx, "cus-1")

	// Another actor deletes the document on the replica.
	if err := replica.Delete(ctx, domain.CollectionCustomers, cust.RemoteID); err != nil {
		t.Fatalf("remote delete: %v", err)
	}

	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", rep.Pruned)
	}
	if _, err := local.GetCustomer(ctx, "cus-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("pruned record still present: %v", err)
	}
}

func TestPruneCascadesToLedgerEntries(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := local.PutCustomerLedger(ctx, domain.CustomerLedgerEntry{
		SyncMeta:    domain.SyncMeta{LocalID: "cled-1", SyncStatus: domain.SyncPending},
		CustomerID:  "cus-1",
		Type:        domain.LedgerSale,
		AmountCents: 500,
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	cust, _ := local.GetCustomer(ctx, "cus-1")

	// Another actor deletes the customer document; the entry document is
	// still on the replica.
	if err := replica.Delete(ctx, domain.CollectionCustomers, cust.RemoteID); err != nil {
		t.Fatalf("remote delete: %v", err)
	}

	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", rep.Pruned)
	}
	if _, err := local.GetCustomerLedger(ctx, "cled-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("pruning a customer must take its ledger entries: %v", err)
	}
	if replica.Count(domain.CollectionCustomerLedger) != 0 {
		t.Fatal("the cascade must delete the entry's remote document too")
	}
	if rep.Pulled != 0 {
		t.Fatalf("nothing may be re-imported after the cascade, pulled %d", rep.Pulled)
	}
}

func TestPruneSaleReversesCascade(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutProduct(ctx, domain.Product{
		SyncMeta: domain.SyncMeta{LocalID: "prod-1", SyncStatus: domain.SyncPending},
		Name:     "Redmi 13", CurrentStock: 3,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := local.PutSale(ctx, domain.Sale{
		SyncMeta:   domain.SyncMeta{LocalID: "sale-1", SyncStatus: domain.SyncPending},
		Date:       "2026-08-30 10:00:00",
		TotalCents: 1000,
		Items:      []domain.SaleItem{{ProductID: "prod-1", Qty: 2, SalePriceCents: 500}},
	}); err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	sale, _ := local.GetSale(ctx, "sale-1")

	if err := replica.Delete(ctx, domain.CollectionSales, sale.RemoteID); err != nil {
		t.Fatalf("remote delete: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, err := local.GetSale(ctx, "sale-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("pruned sale still present: %v", err)
	}
	prod, err := local.GetProduct(ctx, "prod-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if prod.CurrentStock != 5 {
		t.Fatalf("pruning a sale must restore its stock, got %d want 5", prod.CurrentStock)
	}
	if prod.SyncStatus != domain.SyncPending {
		t.Fatal("the restored product must go back out on the next push")
	}
}

func TestImportRemoteOnlyDocuments(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	doc, err := remote.EncodeCustomer(domain.Customer{
		SyncMeta: domain.SyncMeta{LocalID: "cus-9"},
		Name:     "Siti",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := replica.Create(ctx, domain.CollectionCustomers, doc); err != nil {
		t.Fatalf("seed replica: %v", err)
	}

	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Pulled != 1 {
		t.Fatalf("expected 1 pulled, got %d", rep.Pulled)
	}
	cust, err := local.GetCustomer(ctx, "cus-9")
	if err != nil {
		t.Fatalf("imported record must keep its local id: %v", err)
	}
	if cust.Name != "Siti" || cust.RemoteID == "" || cust.SyncStatus != domain.SyncSynced {
		t.Fatalf("bad import: %+v", cust)
	}
}

func TestPendingGuardBlocksImport(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	doc, err := remote.EncodeCustomer(domain.Customer{
		SyncMeta: domain.SyncMeta{LocalID: "cus-9"},
		Name:     "Siti",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := replica.Create(ctx, domain.CollectionCustomers, doc); err != nil {
		t.Fatalf("seed replica: %v", err)
	}
	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	var report domain.SyncReport
	if err := pullCollection(ctx, e, e.customers(), &report); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if report.Pulled != 0 {
		t.Fatalf("import must wait while the collection has pending records")
	}
	if _, err := local.GetCustomer(ctx, "cus-9"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("guarded document was imported anyway")
	}

	// Once the collection is clean the import goes through.
	report = domain.SyncReport{}
	if err := pushCollection(ctx, e, e.customers(), &report); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := pullCollection(ctx, e, e.customers(), &report); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if report.Pulled != 1 {
		t.Fatalf("expected 1 pulled after outbox drained, got %d", report.Pulled)
	}
}

func TestChildPushWaitsForParentRemoteID(t *testing.T) {
	e, local, _ := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := local.PutSale(ctx, domain.Sale{
		SyncMeta:   domain.SyncMeta{LocalID: "sale-1", SyncStatus: domain.SyncPending},
		CustomerID: "cus-1",
		TotalCents: 1000,
	}); err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	// Pushing sales alone must skip: the customer has no remote id yet.
	var report domain.SyncReport
	if err := pushCollection(ctx, e, e.sales(), &report); err != nil {
		t.Fatalf("push sales: %v", err)
	}
	if report.Pushed != 0 || report.Skipped != 1 {
		t.Fatalf("expected skip, got %+v", report)
	}

	// A full sweep pushes parents first and the sale carries the
	// customer's remote id.
	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Pushed != 2 {
		t.Fatalf("expected 2 pushed, got %d", rep.Pushed)
	}
	sale, err := local.GetSale(ctx, "sale-1")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	cust, _ := local.GetCustomer(ctx, "cus-1")
	if sale.CustomerRemoteID != cust.RemoteID {
		t.Fatalf("sale must carry the customer's remote id, got %q want %q",
			sale.CustomerRemoteID, cust.RemoteID)
	}
}

func TestTombstoneSweepAndImportGuard(t *testing.T) {
	e, local, replica := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if _, err := e.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	cust, _ := local.GetCustomer(ctx, "cus-1")

	// Offline delete: the record goes away locally, the tombstone waits.
	if err := local.DeleteCustomer(ctx, "cus-1"); err != nil {
		t.Fatalf("local delete: %v", err)
	}
	if err := local.PutTombstone(ctx, domain.Tombstone{
		ID:         "tomb-1",
		EntityType: domain.CollectionCustomers,
		RemoteID:   cust.RemoteID,
	}); err != nil {
		t.Fatalf("put tombstone: %v", err)
	}

	replica.SetOffline(true)
	if _, err := e.SyncAll(ctx); !errors.Is(err, remote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	tombs, _ := local.ListTombstones(ctx)
	if len(tombs) != 1 {
		t.Fatalf("tombstone must survive a failed sweep")
	}

	replica.SetOffline(false)
	rep, err := e.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Deleted != 1 {
		t.Fatalf("expected 1 remote delete, got %d", rep.Deleted)
	}
	if rep.Pulled != 0 {
		t.Fatalf("deleted document must not be re-imported")
	}
	if replica.Count(domain.CollectionCustomers) != 0 {
		t.Fatalf("remote copy still present")
	}
	tombs, _ = local.ListTombstones(ctx)
	if len(tombs) != 0 {
		t.Fatalf("tombstone must clear after confirmed delete")
	}
}

func TestPendingCounts(t *testing.T) {
	e, local, _ := newTestEngine()
	ctx := context.Background()

	if err := local.PutCustomer(ctx, pendingCustomer("cus-1", "Budi")); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := local.PutExpense(ctx, domain.Expense{
		SyncMeta: domain.SyncMeta{LocalID: "exp-1", SyncStatus: domain.SyncPending},
		Title:    "listrik", AmountCents: 100,
	}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	if err := local.PutTombstone(ctx, domain.Tombstone{
		ID: "tomb-1", EntityType: domain.CollectionSales, RemoteID: "9",
	}); err != nil {
		t.Fatalf("seed tombstone: %v", err)
	}

	counts, err := e.PendingCounts(ctx)
	if err != nil {
		t.Fatalf("pending counts: %v", err)
	}
	if counts.Total != 3 || counts.Tombstones != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.ByCollection[domain.CollectionCustomers] != 1 ||
		counts.ByCollection[domain.CollectionExpenses] != 1 {
		t.Fatalf("per-collection counts wrong: %+v", counts.ByCollection)
	}
}
