package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SYNC_INTERVAL_SECONDS", "")
	t.Setenv("LOCAL_DB_PATH", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.SyncIntervalSeconds != 30 {
		t.Fatalf("expected default sync interval 30, got %d", cfg.SyncIntervalSeconds)
	}
	if cfg.LocalDBPath != "ponselpos.db" {
		t.Fatalf("expected default local db path, got %q", cfg.LocalDBPath)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected address :8080, got %q", cfg.Address())
	}
}

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("DEVICE_KEY_HASH", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.DeviceKeyHash != "" {
		t.Fatalf("expected empty DEVICE_KEY_HASH when unset, got %q", cfg.DeviceKeyHash)
	}
}

func TestLoadRejectsBadSyncInterval(t *testing.T) {
	t.Setenv("SYNC_INTERVAL_SECONDS", "banana")

	cfg := Load()
	if cfg.SyncIntervalSeconds != 30 {
		t.Fatalf("expected fallback sync interval 30, got %d", cfg.SyncIntervalSeconds)
	}
}
