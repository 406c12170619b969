package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/server"
	"github.com/graphweave/fedcore/internal/telemetry"
	"github.com/graphweave/fedcore/registry"
)

// runServe starts the registry-backed gateway: subgraphs register their
// SDL at POST /schema/registration (registry.Registry.RegisterGateway,
// grounded on gateway/engine.go's buildEngine-on-every-registration shape),
// and GET/POST /graphql is served against whatever schema the registry
// most recently composed.
func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

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

	reg := registry.NewRegistry(cfg.EnableIntrospection)
	reg.HeaderRules = cfg.HeaderRulesFor
	reg.Start()

	gqlServer := server.New(reg, httpClient, cfg, emitter, docs)

	mux := http.NewServeMux()
	mux.HandleFunc("/schema/registration", reg.RegisterGateway)
	mux.Handle("/graphql", gqlServer)

	var handler http.Handler = mux
	if cfg.Opentelemetry.TracingSetting.Enable {
		handler = otelhttp.NewHandler(mux, cfg.ServiceName)
	}

	return runHTTPServer(cfg, handler, shutdownTracer)
}

// buildEmitter wires the telemetry.Emitter(s) the execution core reports
// status events through: a SlogEmitter always, plus an OtelEmitter (and the
// OTLP exporter it depends on) when opentelemetry.tracing.enable is set.
func buildEmitter(cfg *config.Config) (telemetry.Emitter, func(context.Context) error, error) {
	slogEmitter := telemetry.SlogEmitter{Logger: slog.Default()}
	if !cfg.Opentelemetry.TracingSetting.Enable {
		return slogEmitter, func(context.Context) error { return nil }, nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), cfg.ServiceName, fedcoreVersion)
	if err != nil {
		return nil, nil, err
	}
	return telemetry.MultiEmitter{slogEmitter, telemetry.OtelEmitter{}}, shutdown, nil
}

// runHTTPServer runs handler on cfg.Port until an interrupt/SIGTERM,
// draining in-flight requests within cfg.Timeout() and flushing the tracer.
// Grounded on server/gateway.go's Run (deleted, superseded): the same
// signal.NotifyContext + http.Server.Shutdown + tracer-shutdown sequence.
func runHTTPServer(cfg *config.Config, handler http.Handler, shutdownTracer func(context.Context) error) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Printf("fedcore listening on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	timeoutCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer shutdownCancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := shutdownTracer(timeoutCtx); err != nil {
		return fmt.Errorf("shutting down tracer: %w", err)
	}
	log.Println("fedcore stopped")
	return nil
}
