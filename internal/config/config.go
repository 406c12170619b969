// Package config loads the YAML settings surface recognized by cmd/fedcore
// (spec §6): the HTTP front door's endpoint/port, per-operation limits,
// introspection gating, default and per-subgraph header rules, and the
// subgraph registry itself. Mirrors the teacher's gateway.GatewayOption
// loading pattern in server/gateway.go.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/schema"
)

// Config is the root of fedcore.yaml.
type Config struct {
	ServiceName     string `yaml:"service_name"`
	Port            int    `yaml:"port" default:"8080"`
	TimeoutDuration string `yaml:"timeout_duration" default:"5s"`

	EnableIntrospection bool            `yaml:"enable_introspection" default:"false"`
	OperationLimits     OperationLimits `yaml:"operation_limits"`
	TrustedDocuments    TrustedDocumentsConfig `yaml:"trusted_documents"`

	DefaultHeaders []HeaderRule              `yaml:"default_headers"`
	Subgraphs      map[string]SubgraphConfig `yaml:"subgraphs"`

	Opentelemetry OpentelemetrySetting `yaml:"opentelemetry"`
}

// OperationLimits bounds a bound Operation before it reaches the planner
// (spec §6, enforced between C2 and C3). Zero means "no limit" for that
// dimension.
type OperationLimits struct {
	MaxDepth      int `yaml:"max_depth" default:"0"`
	MaxAliases    int `yaml:"max_aliases" default:"0"`
	MaxRootFields int `yaml:"max_root_fields" default:"0"`
	MaxComplexity int `yaml:"max_complexity" default:"0"`
}

// ToOperation converts the YAML surface into the operation.Limits shape C2
// enforces, the same toSchema conversion pattern HeaderRule uses.
func (l OperationLimits) ToOperation() operation.Limits {
	return operation.Limits{
		MaxDepth:      l.MaxDepth,
		MaxAliases:    l.MaxAliases,
		MaxRootFields: l.MaxRootFields,
		MaxComplexity: l.MaxComplexity,
	}
}

// HeaderRule is the YAML surface for one schema.HeaderRule: a named header
// either forwarded from the incoming request (Forward: true) or injected
// with a fixed Value.
type HeaderRule struct {
	Name    string `yaml:"name"`
	Forward bool   `yaml:"forward" default:"false"`
	Value   string `yaml:"value"`
}

func (r HeaderRule) toSchema() schema.HeaderRule {
	if r.Forward {
		return schema.HeaderRule{Kind: schema.HeaderForward, Name: r.Name}
	}
	return schema.HeaderRule{Kind: schema.HeaderInject, Name: r.Name, Value: r.Value}
}

// SubgraphConfig is one entry of the `subgraphs` map: its HTTP endpoint (or
// SDL source files to compose from), optional websocket URL for future
// subscription support, and its own header rules layered on top of
// DefaultHeaders.
type SubgraphConfig struct {
	Endpoint     string       `yaml:"endpoint"`
	SchemaFiles  []string     `yaml:"schema_files"`
	WebsocketURL string       `yaml:"websocket_url"`
	Headers      []HeaderRule `yaml:"headers"`
}

type TrustedDocumentsConfig struct {
	Enable bool   `yaml:"enable" default:"false"`
	Store  string `yaml:"store"`
}

type OpentelemetrySetting struct {
	TracingSetting OpentelemetryTracingSetting `yaml:"tracing"`
}

type OpentelemetryTracingSetting struct {
	Enable       bool   `yaml:"enable" default:"false"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Load reads and parses path, applying the documented defaults for any
// field the YAML left zero-valued.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %q: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config %q: %w", path, err)
	}
	cfg.applyDefaults()

	if _, err := time.ParseDuration(cfg.TimeoutDuration); err != nil {
		return nil, fmt.Errorf("config %q: invalid timeout_duration %q: %w", path, cfg.TimeoutDuration, err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.TimeoutDuration == "" {
		c.TimeoutDuration = "5s"
	}
}

// Timeout parses TimeoutDuration; Load already validates it parses.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.TimeoutDuration)
	return d
}

// HeaderRulesFor builds the composed header rule set for one subgraph: the
// config's DefaultHeaders first, then that subgraph's own Headers, matching
// the order schema.Subgraph.Headers is consumed in (internal/executor's
// composeHeaders applies rules in order, so a subgraph-specific rule can
// override a default one naming the same header).
func (c *Config) HeaderRulesFor(name string) []schema.HeaderRule {
	sub, ok := c.Subgraphs[name]
	out := make([]schema.HeaderRule, 0, len(c.DefaultHeaders)+len(sub.Headers))
	for _, r := range c.DefaultHeaders {
		out = append(out, r.toSchema())
	}
	if ok {
		for _, r := range sub.Headers {
			out = append(out, r.toSchema())
		}
	}
	return out
}
