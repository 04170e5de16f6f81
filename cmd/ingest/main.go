package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"power-vol-lab/internal/ingestion"
	"power-vol-lab/internal/storage"
	"power-vol-lab/internal/storage/memory"
	"power-vol-lab/internal/storage/migrations"
	pgstore "power-vol-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "batch", "Ingestion mode: batch or live")
	input := flag.String("input", "", "Observation CSV path (batch mode)")
	targetPath := flag.String("targets", "", "Target CSV path (batch mode, optional)")
	wsEndpoint := flag.String("ws-endpoint", "", "Observation feed WebSocket endpoint (live mode)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (POSTGRES_DSN env)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")

	flag.Parse()

	dsn := *postgresDSN
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_DSN")
	}

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	var err error
	switch *mode {
	case "batch":
		err = runBatch(ctx, logger, *input, *targetPath, dsn, *useMemory)
	case "live":
		err = runLive(ctx, logger, *wsEndpoint, dsn, *useMemory)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores wires Postgres-backed stores unless in-memory storage was
// requested. Postgres runs migrations before returning.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (storage.ObservationStore, storage.TargetStore, func(), error) {
	if useMemory {
		return memory.NewObservationStore(), memory.NewTargetStore(), func() {}, nil
	}
	if postgresDSN == "" {
		return nil, nil, nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewObservationStore(pool), pgstore.NewTargetStore(pool), pool.Close, nil
}

// runBatch ingests observation and target CSV files.
func runBatch(ctx context.Context, logger *log.Logger, input, targetPath, postgresDSN string, useMemory bool) error {
	if input == "" {
		return fmt.Errorf("--input is required for batch mode")
	}

	obsStore, targetStore, closeStores, err := createStores(ctx, postgresDSN, useMemory)
	if err != nil {
		return err
	}
	defer closeStores()

	opts := ingestion.ManagerOptions{
		ObservationSource: ingestion.NewCSVObservationSource(input),
		ObservationStore:  obsStore,
	}
	if targetPath != "" {
		opts.TargetSource = ingestion.NewCSVTargetSource(targetPath)
		opts.TargetStore = targetStore
	}
	mgr := ingestion.NewManager(opts)

	n, err := mgr.IngestObservations(ctx)
	if err != nil {
		return fmt.Errorf("ingest observations: %w", err)
	}
	logger.Printf("Ingested %d observations from %s", n, input)

	if targetPath != "" {
		n, err := mgr.IngestTargets(ctx)
		if err != nil {
			return fmt.Errorf("ingest targets: %w", err)
		}
		logger.Printf("Ingested %d targets from %s", n, targetPath)
	}

	return nil
}

// runLive streams observations from a WebSocket feed until cancelled.
func runLive(ctx context.Context, logger *log.Logger, wsEndpoint, postgresDSN string, useMemory bool) error {
	if wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required for live mode")
	}

	obsStore, _, closeStores, err := createStores(ctx, postgresDSN, useMemory)
	if err != nil {
		return err
	}
	defer closeStores()

	source := ingestion.NewWSObservationSource(wsEndpoint, nil)
	obsCh, err := source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to feed: %w", err)
	}

	mgr := ingestion.NewManager(ingestion.ManagerOptions{ObservationStore: obsStore})

	logger.Println("Starting live ingestion...")
	n, err := mgr.IngestStream(ctx, obsCh)
	logger.Printf("Stored %d observations from feed", n)
	return err
}
