package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing access token fails", func(t *testing.T) {
		t.Setenv("FIELDBOOK_ACCESS_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatal("expected error without FIELDBOOK_ACCESS_TOKEN")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("FIELDBOOK_ACCESS_TOKEN", "tok")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Server.Port != "8080" {
			t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
		}
		if cfg.Fieldbook.PageSize != 1000 {
			t.Errorf("expected default page size 1000, got %d", cfg.Fieldbook.PageSize)
		}
		want := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		if !cfg.Data.LegacyCutoff.Equal(want) {
			t.Errorf("expected default cutoff %v, got %v", want, cfg.Data.LegacyCutoff)
		}
	})

	t.Run("overrides from environment", func(t *testing.T) {
		t.Setenv("FIELDBOOK_ACCESS_TOKEN", "tok")
		t.Setenv("FIELDBOOK_PAGE_SIZE", "250")
		t.Setenv("CACHE_TTL", "10m")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Fieldbook.PageSize != 250 {
			t.Errorf("expected page size 250, got %d", cfg.Fieldbook.PageSize)
		}
		if cfg.Data.CacheTTL != 10*time.Minute {
			t.Errorf("expected cache TTL 10m, got %v", cfg.Data.CacheTTL)
		}
	})

	t.Run("unparseable page size keeps default", func(t *testing.T) {
		t.Setenv("FIELDBOOK_ACCESS_TOKEN", "tok")
		t.Setenv("FIELDBOOK_PAGE_SIZE", "many")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Fieldbook.PageSize != 1000 {
			t.Errorf("expected default page size on bad value, got %d", cfg.Fieldbook.PageSize)
		}
	})

	t.Run("malformed cutoff date fails", func(t *testing.T) {
		t.Setenv("FIELDBOOK_ACCESS_TOKEN", "tok")
		t.Setenv("LEGACY_CUTOFF_DATE", "July 1st")
		if _, err := Load(); err == nil {
			t.Fatal("expected error on malformed LEGACY_CUTOFF_DATE")
		}
	})
}
