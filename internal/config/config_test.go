package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mode: PAPER\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DataSource != "STATIC" {
		t.Errorf("data_source default = %q, want STATIC", cfg.DataSource)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("listen_addr default = %q", cfg.Server.ListenAddr)
	}
	if cfg.Paper.InitialBalance != 100000 {
		t.Errorf("initial_balance default = %v", cfg.Paper.InitialBalance)
	}
	if cfg.Scanner.MinScore != 60 {
		t.Errorf("min_score default = %d", cfg.Scanner.MinScore)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("storage backend default = %q", cfg.Storage.Backend)
	}
	if cfg.Exits.TargetPct != 2.0 || cfg.Exits.StopLossPct != 1.0 {
		t.Errorf("exit bands default = %v / %v", cfg.Exits.TargetPct, cfg.Exits.StopLossPct)
	}
	if cfg.Risk.StopATR != 1.5 || cfg.Risk.TargetATR != 3.0 {
		t.Errorf("risk multiples default = %v / %v", cfg.Risk.StopATR, cfg.Risk.TargetATR)
	}
	if len(cfg.Sectors) == 0 {
		t.Error("sectors default is empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
mode: LIVE
data_source: YAHOO
scanner:
  min_score: 75
sectors:
  NIFTY_IT: [TCS.NS, INFY.NS]
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != "LIVE" || cfg.DataSource != "YAHOO" {
		t.Errorf("mode/source = %q/%q", cfg.Mode, cfg.DataSource)
	}
	if cfg.Scanner.MinScore != 75 {
		t.Errorf("min_score = %d, want 75", cfg.Scanner.MinScore)
	}
	if len(cfg.Sectors) != 1 {
		t.Errorf("expected configured sectors to replace defaults, got %d", len(cfg.Sectors))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var c Config
		c.applyDefaults()
		return &c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Mode = "DRY_RUN" }, "invalid mode"},
		{"bad data source", func(c *Config) { c.DataSource = "CSV" }, "invalid data_source"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"negative balance", func(c *Config) { c.Paper.InitialBalance = -1 }, "initial_balance"},
		{"score out of range", func(c *Config) { c.Scanner.MinScore = 150 }, "min_score"},
		{"zero exit band", func(c *Config) { c.Exits.TargetPct = -2 }, "target_pct"},
		{"no sectors", func(c *Config) { c.Sectors = nil }, "sectors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestStocksBySector(t *testing.T) {
	c := &Config{Sectors: map[string][]string{
		"B_SECTOR": {"TCS.NS", "SHARED.NS"},
		"A_SECTOR": {"SHARED.NS", "SBIN.NS"},
	}}

	got := c.StocksBySector("A_SECTOR")
	if len(got) != 2 || got[0] != "SHARED.NS" {
		t.Errorf("A_SECTOR = %v", got)
	}

	all := c.StocksBySector("All")
	if len(all) != 3 {
		t.Fatalf("All should dedupe across sectors, got %v", all)
	}
	// Sectors iterate in sorted key order, so A_SECTOR symbols come first.
	if all[0] != "SHARED.NS" || all[1] != "SBIN.NS" || all[2] != "TCS.NS" {
		t.Errorf("All order = %v", all)
	}

	if got := c.StocksBySector("UNKNOWN"); got != nil {
		t.Errorf("unknown sector = %v, want nil", got)
	}
}

func TestSectorNames(t *testing.T) {
	c := &Config{Sectors: DefaultSectors()}
	names := c.SectorNames()
	if !sort.StringsAreSorted(names) {
		t.Errorf("sector names not sorted: %v", names)
	}
	if len(names) != len(c.Sectors) {
		t.Errorf("got %d names for %d sectors", len(names), len(c.Sectors))
	}
}
