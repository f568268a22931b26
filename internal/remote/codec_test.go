package remote

import (
	"encoding/json"
	"testing"
	"time"

	"ponselpos/backend/internal/domain"
)

func TestEncodeSaleTranslatesAtBoundary(t *testing.T) {
	sale := domain.Sale{
		SyncMeta: domain.SyncMeta{
			LocalID:    "sale-1",
			RemoteID:   "42",
			SyncStatus: domain.SyncPending,
		},
		InvoiceNo:  "INV-20260830-0001",
		Date:       "2026-08-30 14:05:00",
		TotalCents: 2_500_000,
		Items:      []domain.SaleItem{{ProductID: "prod-1", Qty: 1, SalePriceCents: 2_500_000}},
	}

	raw, err := EncodeSale(sale)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["sync_status"]; ok {
		t.Fatal("sync status must stay on the device")
	}
	if _, ok := fields["remote_id"]; ok {
		t.Fatal("the replica assigns its own ids")
	}
	if fields["local_id"] != "sale-1" {
		t.Fatalf("local id must ride along, got %v", fields["local_id"])
	}
	// The date goes up as a native timestamp, not the device's string form.
	dateField, _ := fields["date"].(string)
	if _, err := time.Parse(time.RFC3339, dateField); err != nil {
		t.Fatalf("date %q is not a timestamp: %v", dateField, err)
	}

	back, err := DecodeSale(Document{RemoteID: "42", Doc: raw})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Date != sale.Date {
		t.Fatalf("date came back as %q, want %q", back.Date, sale.Date)
	}
	if back.LocalID != "sale-1" || back.TotalCents != sale.TotalCents || len(back.Items) != 1 {
		t.Fatalf("bad round trip: %+v", back)
	}
}

func TestEncodeSaleRejectsBadDate(t *testing.T) {
	_, err := EncodeSale(domain.Sale{
		SyncMeta: domain.SyncMeta{LocalID: "sale-1"},
		Date:     "30/08/2026",
	})
	if err == nil {
		t.Fatal("a date the adapter cannot translate must not be pushed")
	}
}

func TestSupplierCodecKeepsBothBalanceTypes(t *testing.T) {
	sup := domain.Supplier{
		SyncMeta:            domain.SyncMeta{LocalID: "sup-1"},
		Name:                "PT Aksesoris",
		OpeningBalanceCents: 500,
		BalanceType:         domain.BalanceReceivable,
		CurrentBalanceCents: 300,
		CurrentBalanceType:  domain.BalanceReceivable,
	}
	raw, err := EncodeSupplier(sup)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeSupplier(Document{RemoteID: "1", Doc: raw})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.BalanceType != domain.BalanceReceivable || back.CurrentBalanceType != domain.BalanceReceivable {
		t.Fatalf("balance types lost in translation: %+v", back)
	}
}
