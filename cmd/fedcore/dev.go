package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/server"
)

// runDev composes cfg.Subgraphs once, up front, and serves /graphql
// immediately — no /schema/registration round-trip (SPEC_FULL.md §6 point
// 5, ported from federated-dev/gateway-local in original_source/).
func runDev(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	sch, err := composeStatic(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("composing schema: %w", err)
	}

	emitter, shutdownTracer, err := buildEmitter(cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	docs, err := loadTrustedDocuments(cfg)
	if err != nil {
		return fmt.Errorf("loading trusted documents: %w", err)
	}

	httpClient := &http.Client{}
	if cfg.Opentelemetry.TracingSetting.Enable {
		httpClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	gqlServer := server.New(server.NewStaticSchemaProvider(sch), httpClient, cfg, emitter, docs)

	mux := http.NewServeMux()
	mux.Handle("/graphql", gqlServer)

	var handler http.Handler = mux
	if cfg.Opentelemetry.TracingSetting.Enable {
		handler = otelhttp.NewHandler(mux, cfg.ServiceName)
	}

	return runHTTPServer(cfg, handler, shutdownTracer)
}
