package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/schema"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fedcore.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `service_name: fedcore
subgraphs:
  products:
    endpoint: http://localhost:4001/graphql
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want default 8080", cfg.Port)
	}
	if cfg.Timeout().String() != "5s" {
		t.Fatalf("Timeout() = %s, want default 5s", cfg.Timeout())
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	path := writeConfig(t, `service_name: fedcore
timeout_duration: "not-a-duration"
`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("Load() = nil error, want invalid timeout_duration rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() = nil error, want file-not-found rejected")
	}
}

func TestHeaderRulesForOrdersDefaultsBeforeSubgraphOverrides(t *testing.T) {
	path := writeConfig(t, `service_name: fedcore
default_headers:
  - name: x-request-id
    forward: true
subgraphs:
  products:
    endpoint: http://localhost:4001/graphql
    headers:
      - name: x-request-id
        value: pinned
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rules := cfg.HeaderRulesFor("products")
	want := []schema.HeaderRule{
		{Name: "x-request-id", Kind: schema.HeaderForward},
		{Name: "x-request-id", Kind: schema.HeaderInject, Value: "pinned"},
	}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Fatalf("HeaderRulesFor(\"products\") mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderRulesForUnknownSubgraphReturnsDefaultsOnly(t *testing.T) {
	path := writeConfig(t, `service_name: fedcore
default_headers:
  - name: x-request-id
    forward: true
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rules := cfg.HeaderRulesFor("nonexistent")
	if len(rules) != 1 {
		t.Fatalf("HeaderRulesFor(nonexistent) returned %d rules, want 1", len(rules))
	}
}

func TestOperationLimitsToOperation(t *testing.T) {
	l := config.OperationLimits{MaxDepth: 5, MaxAliases: 3, MaxRootFields: 10, MaxComplexity: 100}
	want := operation.Limits{MaxDepth: 5, MaxAliases: 3, MaxRootFields: 10, MaxComplexity: 100}
	if diff := cmp.Diff(want, l.ToOperation()); diff != "" {
		t.Fatalf("ToOperation() mismatch (-want +got):\n%s", diff)
	}
}
