// Package main implements the ontocache command. It loads an ontology into
// the class cache, prints the class tree below the configured roots and
// optionally keeps serving cache metrics.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/ontocache/config"
	"github.com/c360/ontocache/health"
	"github.com/c360/ontocache/metric"
	"github.com/c360/ontocache/ontology/cache"
	"github.com/c360/ontocache/pkg/tlsutil"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/sparql/httpclient"
	"github.com/c360/ontocache/sparql/memstore"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontocache"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor()
	oc, err := buildCache(ctx, cfg, registry, logger)
	monitor.Update("schema_store", health.FromError("schema_store", err))
	if err != nil {
		return err
	}
	defer func() {
		if err := oc.Close(); err != nil {
			slog.Warn("Failed to close ontology cache", "error", err)
		}
	}()

	roots := cfg.Ontology.RootClasses
	if len(cliCfg.Roots) > 0 {
		roots = cliCfg.Roots
	}
	if len(roots) > 0 {
		if err := oc.Populate(ctx, roots); err != nil {
			return fmt.Errorf("populate cache: %w", err)
		}
		if err := printForest(ctx, os.Stdout, oc, roots, cliCfg.Lang); err != nil {
			return err
		}
	} else {
		slog.Warn("No root classes configured, nothing to print")
	}

	if !cliCfg.Serve {
		return nil
	}
	return serveMetrics(ctx, cfg.Metrics, registry, healthHandler(monitor, oc, roots), cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	slog.Info("Starting ontocache",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// loadConfig loads and validates the configuration. An empty path uses the
// defaults with environment overrides.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	loader.EnableValidation(true)
	if path != "" {
		loader.AddLayer(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildStore returns the schema store selected by the configuration.
func buildStore(cfg config.SPARQLConfig, logger *slog.Logger) (sparql.Service, error) {
	if cfg.Remote() {
		slog.Info("Using remote schema store", "endpoint", cfg.Endpoint)
		var client *http.Client
		if cfg.Secure() {
			c, err := tlsutil.NewHTTPClient(cfg.TLS, cfg.Timeout.Std())
			if err != nil {
				return nil, fmt.Errorf("configure endpoint TLS: %w", err)
			}
			client = c
		}
		return httpclient.New(cfg.ClientConfig(), client, logger)
	}

	st := memstore.New(logger)
	if cfg.NTriplesFile == "" {
		slog.Warn("No schema store configured, using an empty in-memory store")
		return st, nil
	}
	f, err := os.Open(cfg.NTriplesFile)
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer f.Close()

	start := time.Now()
	n, err := st.LoadNTriples(f)
	if err != nil {
		return nil, fmt.Errorf("load ontology %s: %w", cfg.NTriplesFile, err)
	}
	slog.Info("Loaded ontology",
		"file", cfg.NTriplesFile,
		"triples", n,
		"duration_ms", time.Since(start).Milliseconds())
	return st, nil
}

func buildCache(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (cache.OntologyCache, error) {
	svc, err := buildStore(cfg.SPARQL, logger)
	if err != nil {
		return nil, err
	}
	oc, err := cache.NewFromConfig(ctx, svc, cfg.Ontology,
		cache.WithLogger(logger),
		cache.WithMetrics(registry))
	if err != nil {
		return nil, fmt.Errorf("create ontology cache: %w", err)
	}
	return oc, nil
}

// printForest writes the subclass tree of every root.
func printForest(ctx context.Context, w io.Writer, oc cache.OntologyCache, roots []string, lang string) error {
	for _, root := range roots {
		tree, err := oc.GetSubClassesOf(ctx, root, "", lang, false)
		if err != nil {
			return fmt.Errorf("read subclasses of %s: %w", root, err)
		}
		if tree.IsEmpty() {
			_, _ = fmt.Fprintf(w, "%s: unknown class\n", root)
			continue
		}
		if err := writeTree(w, tree); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(ctx context.Context, cfg config.MetricsConfig, registry *metric.MetricsRegistry,
	healthz http.Handler, shutdownTimeout time.Duration) error {
	if !cfg.Enabled {
		slog.Info("Metrics disabled, nothing to serve")
		return nil
	}
	server := metric.NewServer(cfg.Address, cfg.Path, registry)
	server.HandleHealth(healthz)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}
	slog.Info("Serving metrics", "address", cfg.Address, "path", cfg.Path)

	<-ctx.Done()
	slog.Info("Received shutdown signal")

	if err := server.Stop(shutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("ontocache shutdown complete")
	return nil
}

// cacheHealth is degraded when roots are configured but nothing is cached,
// which happens once every entry has expired.
func cacheHealth(oc cache.OntologyCache, roots []string) health.Status {
	n := oc.Length()
	if n == 0 && len(roots) > 0 {
		return health.NewDegraded("class_cache", "no classes cached")
	}
	return health.NewHealthy("class_cache", fmt.Sprintf("%d classes cached", n))
}

// healthHandler refreshes the class cache status on every probe.
func healthHandler(monitor *health.Monitor, oc cache.OntologyCache, roots []string) http.Handler {
	inner := health.Handler(monitor, appName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		monitor.Update("class_cache", cacheHealth(oc, roots))
		inner.ServeHTTP(w, r)
	})
}
