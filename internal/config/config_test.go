package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/contactkeval/option-surface/internal/pricing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := ContractConfig{Spot: 100, Strike: 130, Rate: 0.05, Expiry: 1, Volatility: 0.2, Kind: "call"}
	if cfg.Contract != want {
		t.Fatalf("expected contract %+v, got %+v", want, cfg.Contract)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.SelectedGreeks(), pricing.Greeks) {
		t.Fatalf("expected all greeks, got %v", cfg.SelectedGreeks())
	}
	if _, err := pricing.NewContract(cfg.Contract.Params()); err != nil {
		t.Fatalf("default contract should be valid: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "surface.yaml", `
contract:
  spot: 42
  strike: 40
  rate: 0.03
  expiry: 0.5
  volatility: 0.3
  kind: PUT
greeks: [gamma, Delta, gamma]
report:
  dir: surfaces
  formats: [json, csv]
server:
  cache_ttl: 30s
log:
  verbosity: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Contract.Spot != 42 || cfg.Contract.Kind != "PUT" {
		t.Fatalf("unexpected contract %+v", cfg.Contract)
	}
	if got := cfg.SelectedGreeks(); !reflect.DeepEqual(got, []pricing.Greek{pricing.GreekGamma, pricing.GreekDelta}) {
		t.Fatalf("unexpected greeks %v", got)
	}
	if cfg.Report.Dir != "surfaces" || !reflect.DeepEqual(cfg.Report.Formats, []string{"json", "csv"}) {
		t.Fatalf("unexpected report section %+v", cfg.Report)
	}
	if cfg.Server.CacheTTL != 30*time.Second || cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Log.Verbosity != 2 {
		t.Fatalf("expected verbosity 2, got %d", cfg.Log.Verbosity)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OPTSURF_CONTRACT_SPOT", "105.5")
	t.Setenv("OPTSURF_SERVER_ADDR", ":9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Contract.Spot != 105.5 {
		t.Fatalf("expected env spot 105.5, got %f", cfg.Contract.Spot)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected env addr :9090, got %s", cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		match   string
	}{
		{"unknown format", "report:\n  formats: [svg]\n", "Formats"},
		{"unknown greek", "greeks: [vanna]\n", "unknown greek"},
		{"verbosity", "log:\n  verbosity: 9\n", "Verbosity"},
	}

	for _, test := range tests {
		path := writeFile(t, "bad.yaml", test.content)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), test.match) {
			t.Fatalf("%s: expected error containing %q, got %v", test.name, test.match, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
