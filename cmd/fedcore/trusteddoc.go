package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/trusteddoc"
)

// loadTrustedDocuments builds a trusteddoc.Store from cfg.TrustedDocuments,
// when enabled. The store file is a flat JSON object of id -> query text;
// nothing in the teacher implements trusted documents (DESIGN.md), so this
// follows the plain map-backed MemoryStore shape documented there rather
// than inventing a bespoke file format.
func loadTrustedDocuments(cfg *config.Config) (trusteddoc.Store, error) {
	if !cfg.TrustedDocuments.Enable {
		return nil, nil
	}
	if cfg.TrustedDocuments.Store == "" {
		return trusteddoc.NewMemoryStore(nil), nil
	}

	b, err := os.ReadFile(cfg.TrustedDocuments.Store)
	if err != nil {
		return nil, fmt.Errorf("reading trusted documents store %q: %w", cfg.TrustedDocuments.Store, err)
	}

	var docs map[string]string
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("parsing trusted documents store %q: %w", cfg.TrustedDocuments.Store, err)
	}
	return trusteddoc.NewMemoryStore(docs), nil
}
