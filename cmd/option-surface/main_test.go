package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/contactkeval/option-surface/internal/pricing"
)

func TestRunWritesSelectedSurfaces(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"-v", "0",
		"-out", dir,
		"-format", "json,csv",
		"-greeks", "price,delta",
		"-expr", "delta * spot",
		"100", "130", "0.05", "1", "0.2", "call",
	}
	if err := run(context.Background(), args, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"price.json", "price.csv", "delta.json", "delta.csv", "expression.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "gamma.json")); err == nil {
		t.Fatalf("gamma was not requested")
	}
}

func TestRunUsesConfigContract(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "surface.yaml")
	body := "contract:\n  spot: 50\n  strike: 50\n  rate: 0.01\n  expiry: 0.5\n  volatility: 0.3\n  kind: put\n" +
		"greeks: [all]\nreport:\n  dir: " + dir + "\n  formats: [json]\n"
	if err := os.WriteFile(cfg, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	if err := run(context.Background(), []string{"-v", "0", "-config", cfg}, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, g := range pricing.Greeks {
		if _, err := os.Stat(filepath.Join(dir, string(g)+".json")); err != nil {
			t.Fatalf("expected %s surface: %v", g, err)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want error
	}{
		{"arity", []string{"100", "130", "0.05"}, pricing.ErrInvalidArity},
		{"zero spot", []string{"0", "130", "0.05", "1", "0.2", "call"}, pricing.ErrInvalidParameter},
		{"kind", []string{"100", "130", "0.05", "1", "0.2", "straddle"}, pricing.ErrInvalidOptionKind},
		{"expression", []string{"-greeks", "price", "-expr", "vanna"}, pricing.ErrInvalidExpression},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"-v", "0", "-out", t.TempDir()}, tc.args...)
			err := run(context.Background(), args, io.Discard)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRunRejectsUnknownGreekFlag(t *testing.T) {
	err := run(context.Background(), []string{"-v", "0", "-out", t.TempDir(), "-greeks", "vanna"}, io.Discard)
	if err == nil {
		t.Fatalf("expected error for unknown greek")
	}
}
