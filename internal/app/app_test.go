package app

import (
	"testing"

	"wds-go/internal/config"
	"wds-go/internal/wds"
)

func newTestApp(t *testing.T) *WDSApp {
	t.Helper()

	cfg := config.NewConfig(t.TempDir())
	cfg.Index.Type = "memory"
	cfg.Content.Type = "memory"

	a, err := NewWDSApp(cfg)
	if err != nil {
		t.Fatalf("NewWDSApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewWDSApp_WiresEndToEnd(t *testing.T) {
	a := newTestApp(t)

	owner := wds.DID("did:key:z6MkAlice")
	view, err := a.Store().ViewForUser(owner)
	if err != nil {
		t.Fatalf("ViewForUser() error = %v", err)
	}

	g := wds.Genesis{Creator: owner, Created: 1770000000, Schema: "notes/v1"}
	id, err := view.CreateRecord(g)
	if err != nil {
		t.Fatalf("CreateRecord() error = %v", err)
	}
	if _, err := view.PinRecord(id, nil); err != nil {
		t.Fatalf("PinRecord() error = %v", err)
	}

	q, err := a.Usage(string(owner))
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if q.BytesUsed == 0 {
		t.Error("pin did not charge quota through the app layer")
	}
	if q.QuotaBytes != config.DefaultQuotaBytes {
		t.Errorf("QuotaBytes = %d, want default %d", q.QuotaBytes, config.DefaultQuotaBytes)
	}

	if err := a.SetQuotaLimit(string(owner), 42); err != nil {
		t.Fatalf("SetQuotaLimit() error = %v", err)
	}
	q, _ = a.Usage(string(owner))
	if q.QuotaBytes != 42 {
		t.Errorf("QuotaBytes = %d, want 42", q.QuotaBytes)
	}

	stats, err := a.GarbageCollect()
	if err != nil {
		t.Fatalf("GarbageCollect() error = %v", err)
	}
	if stats.RecordsRemoved != 0 {
		t.Errorf("pinned record collected: %+v", stats)
	}
}

func TestNewWDSApp_RejectsBadConfig(t *testing.T) {
	cfg := config.NewConfig(t.TempDir())
	cfg.Content.Type = "carrier-pigeon"

	if _, err := NewWDSApp(cfg); err == nil {
		t.Error("expected error for unknown content store type")
	}
}
