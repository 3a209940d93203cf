package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/nihonto-search/internal/artisan"
	"github.com/dshills/nihonto-search/internal/compile"
	"github.com/dshills/nihonto-search/internal/config"
	"github.com/dshills/nihonto-search/internal/entitlement"
	"github.com/dshills/nihonto-search/internal/facets"
	"github.com/dshills/nihonto-search/internal/httpapi"
	"github.com/dshills/nihonto-search/internal/mcp"
	"github.com/dshills/nihonto-search/internal/search"
	"github.com/dshills/nihonto-search/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Nihonto Search\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	// Log to stderr; in MCP mode stdout is reserved for the protocol
	log.SetOutput(os.Stderr)
	logger := log.Default()

	cfg := config.Load()

	store, registry, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	compiler := compile.New(registry, compile.Config{
		MinPriceJPY:   cfg.MinPriceJPY,
		DealerDomains: cfg.DealerDomains,
		MaxPage:       1000,
		DefaultLimit:  24,
		MaxLimit:      100,
	})
	agg := facets.NewAggregator(store, facets.Config{
		CacheTTL: time.Duration(cfg.FacetCacheTTLSeconds) * time.Second,
	})
	ents := entitlement.NewStatic(cfg.TierTokens())
	svc := search.New(compiler, store, agg, ents, logger)
	svc.SetSecondaryTimeout(time.Duration(cfg.SecondaryTimeoutMillis) * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if len(os.Args) > 1 && os.Args[1] == "--mcp" {
		runMCP(ctx, cancel, svc, sigChan)
		return
	}
	runHTTP(ctx, cfg, svc, logger, sigChan)
}

// openStorage builds the configured backend and the artisan registry that
// shares its database handle.
func openStorage(cfg *config.Config) (storage.Store, artisan.Registry, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		store, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		return store, artisan.NewPostgresRegistry(store.DB()), nil
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, artisan.NewSQLRegistry(store.DB()), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func runMCP(ctx context.Context, cancel context.CancelFunc, svc *search.Service, sigChan chan os.Signal) {
	log.Printf("Nihonto Search MCP server v%s starting...", version)
	server := mcp.NewServer(svc)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
	log.Println("Server stopped")
}

func runHTTP(ctx context.Context, cfg *config.Config, svc *search.Service, logger *log.Logger, sigChan chan os.Signal) {
	log.Printf("Nihonto Search API v%s starting on %s...", version, cfg.ListenAddr)

	api := httpapi.NewServer(svc, logger)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}
	log.Println("Server stopped")
}
