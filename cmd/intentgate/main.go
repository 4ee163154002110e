package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/AltairaLabs/intentgate/internal/concurrency"
	"github.com/AltairaLabs/intentgate/internal/config"
	"github.com/AltairaLabs/intentgate/internal/gateway"
	"github.com/AltairaLabs/intentgate/internal/governance"
	"github.com/AltairaLabs/intentgate/internal/intent"
	"github.com/AltairaLabs/intentgate/internal/ledger"
	"github.com/AltairaLabs/intentgate/internal/orchestration"
	"github.com/AltairaLabs/intentgate/internal/scope"
	"github.com/AltairaLabs/intentgate/internal/session"
	"github.com/AltairaLabs/intentgate/internal/storage/memory"
	"github.com/AltairaLabs/intentgate/internal/workspace"
)

var (
	version       = flag.Bool("version", false, "Print version and exit")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	httpMode      = flag.Bool("http", false, "Enable HTTP/SSE transport instead of stdio")
	workspaceFlag = flag.String("workspace", "", "Workspace root (overrides INTENTGATE_WORKSPACE)")
)

// app holds the wired gateway components
type app struct {
	cfg     config.Config
	engine  *governance.Engine
	mcp     *gateway.MCPServer
	api     *gateway.API
	catalog *intent.Catalog
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// build loads the intent catalog and wires the stores, ledgers and engine
func build(cfg config.Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ws, err := workspace.New(cfg.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	catalog, err := intent.Load(cfg.IntentsPath(), cfg.IgnorePath())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, catalog: catalog}
	trace, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, trace.Close)
	denials, err := ledger.Open(cfg.DenialLedgerPath())
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, denials.Close)

	// Session and fingerprint state live in memory; both stores sit behind
	// interfaces so a shared backend can replace them
	machine := session.NewMachine(memory.NewSessionStore(), catalog, session.WithLogger(logger))
	guard := concurrency.NewGuard(memory.NewFingerprintStore(), ws, logger)
	revisions := ledger.GitRevision{Dir: ws.Root(), Timeout: cfg.RevisionTimeout}

	a.engine = governance.New(governance.Deps{
		Machine:   machine,
		Intents:   catalog,
		Workspace: ws,
		Matcher:   scope.NewMatcher(catalog.Ignore()),
		Guard:     guard,
		Protected: cfg.ProtectedPatterns(),
		Logger:    logger,
	},
		governance.WithRecorder(governance.NewLedgerRecorder(trace, revisions, governance.Attribution{
			ModelIdentifier: cfg.ModelIdentifier,
		})),
		governance.WithRecorder(governance.NewIntentMapRecorder(orchestration.NewIntentMap(cfg.IntentMapPath()))),
		governance.WithDenialRecorder(governance.NewDenialLedgerRecorder(denials, revisions)),
		governance.WithDenialRecorder(governance.NewLessonRecorder(orchestration.NewLessonBook(cfg.LessonsPath()))),
	)

	a.mcp = gateway.NewMCPServer(gateway.Config{
		Name:           cfg.Name,
		Version:        cfg.Version,
		CommandTimeout: cfg.CommandTimeout,
	}, a.engine, ws, logger)
	a.api = gateway.NewAPI(a.engine, catalog, cfg.LedgerPath(), cfg.DenialLedgerPath(), logger)
	return a, nil
}

// cleanupLoop ends idle sessions until ctx is done
func cleanupLoop(ctx context.Context, engine *governance.Engine, interval, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if deleted := engine.CleanupStale(ctx, maxAge); deleted > 0 {
				logger.Info("Cleaned up stale sessions", "count", deleted)
			}
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	flag.Parse()

	cfg, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *workspaceFlag != "" {
		cfg.WorkspaceRoot = *workspaceFlag
	}

	if *version {
		fmt.Printf("IntentGate v%s\n", cfg.Version)
		os.Exit(0)
	}

	// Setup structured logging; stdout is reserved for the stdio transport
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting IntentGate",
		"version", cfg.Version,
		"debug", *debug,
		"workspace", cfg.WorkspaceRoot,
		"grpc_port", cfg.GRPCPort,
		"http_mode", *httpMode,
		"http_port", cfg.HTTPPort,
		"api_port", cfg.APIPort,
	)

	a, err := build(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize gateway: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Failed to close ledgers", "error", err)
		}
	}()

	logger.Info("Gateway initialized",
		"name", cfg.Name,
		"intents", a.catalog.Len(),
		"tools", a.mcp.Tools(),
		"gates", a.engine.Gates(),
		"recorders", a.engine.Recorders(),
	)

	// Setup context for shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// gRPC health service for orchestrators
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	listenConfig := net.ListenConfig{}
	lis, err := listenConfig.Listen(ctx, "tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		cancel()
		log.Fatalf("Failed to listen on port %s: %v", cfg.GRPCPort, err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting gRPC health server", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
			cancel()
		}
	}()

	apiServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           a.api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting inspection API", "port", cfg.APIPort)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
			cancel()
		}
	}()

	go func() {
		if *httpMode {
			if err := a.mcp.ServeHTTPWithLogger(":"+cfg.HTTPPort, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP server error", "error", err)
			}
		} else {
			logger.Info("Starting MCP server on stdio")
			if err := a.mcp.Serve(); err != nil {
				logger.Error("MCP server error", "error", err)
			}
		}
		// the client went away
		cancel()
	}()

	go cleanupLoop(ctx, a.engine, cfg.CleanupInterval, cfg.SessionMaxAge, logger)

	// Wait for shutdown signal
	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("Context canceled")
	}

	logger.Info("Shutting down gracefully")
	cancel()
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer shutdownCancel()
	if err := a.mcp.Shutdown(shutdownCtx); err != nil {
		logger.Warn("MCP transport shutdown error", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API server shutdown error", "error", err)
	}

	shutdownComplete := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(shutdownComplete)
	}()
	select {
	case <-shutdownComplete:
		logger.Info("gRPC server stopped gracefully")
	case <-time.After(config.DefaultShutdownTimeout):
		logger.Warn("Graceful shutdown timeout, forcing stop")
		grpcServer.Stop()
		<-shutdownComplete
	}

	logger.Info("IntentGate shutdown complete")
}
