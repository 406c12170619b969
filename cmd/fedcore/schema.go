package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/graphweave/fedcore/federation/graph"
	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/kvcache"
	"github.com/graphweave/fedcore/internal/schema"
)

// composeStatic builds a Schema once from cfg.Subgraphs, grounded on
// gateway/gateway.go's NewGateway subgraph loop: a subgraph entry that
// names schema_files reads them straight off disk, one that names only an
// endpoint instead resolves its SDL over the network via the `{ _service {
// sdl } }` federation introspection query, through an internal/kvcache
// Cache keyed by endpoint. The cache is created anew on every call, so it
// only deduplicates fetches within one composition; a later call fetches
// every endpoint again.
func composeStatic(ctx context.Context, cfg *config.Config) (*schema.Schema, error) {
	sdlFetcher := kvcache.New(kvcache.NewSDLFetcher(&http.Client{Timeout: 10 * time.Second}, kvcache.RetryOption{Attempts: 3, Timeout: "5s"}))

	subGraphs := make([]*graph.SubGraphV2, 0, len(cfg.Subgraphs))
	subgraphConfig := make(map[string]schema.SubgraphConfig, len(cfg.Subgraphs))
	for name, sub := range cfg.Subgraphs {
		sdl, err := loadSDL(ctx, name, sub, sdlFetcher)
		if err != nil {
			return nil, err
		}
		sg, err := graph.NewSubGraphV2(name, sdl, sub.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("building subgraph %q: %w", name, err)
		}
		subGraphs = append(subGraphs, sg)
		subgraphConfig[name] = schema.SubgraphConfig{
			Endpoint: sub.Endpoint,
			Headers:  cfg.HeaderRulesFor(name),
		}
	}

	superGraph, err := graph.NewSuperGraphV2(subGraphs)
	if err != nil {
		return nil, fmt.Errorf("composing supergraph: %w", err)
	}

	return schema.Build(superGraph, subgraphConfig, cfg.EnableIntrospection)
}

func loadSDL(ctx context.Context, name string, sub config.SubgraphConfig, fetcher *kvcache.Cache[string, string]) ([]byte, error) {
	if len(sub.SchemaFiles) > 0 {
		var out []byte
		for _, f := range sub.SchemaFiles {
			src, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading schema file %q for subgraph %q: %w", f, name, err)
			}
			out = append(out, src...)
			out = append(out, '\n')
		}
		return out, nil
	}

	sdl, err := fetcher.Get(ctx, sub.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching SDL for subgraph %q from %q: %w", name, sub.Endpoint, err)
	}
	return []byte(sdl), nil
}

