// Package main provides the E2E pipeline entry point.
// Executes: ingestion → feature build → persistence → reporting
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"power-vol-lab/internal/features"
	"power-vol-lab/internal/ingestion"
	"power-vol-lab/internal/pipeline"
	"power-vol-lab/internal/storage"
	"power-vol-lab/internal/storage/clickhouse"
	"power-vol-lab/internal/storage/memory"
	"power-vol-lab/internal/storage/migrations"
	"power-vol-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	input := flag.String("input", "", "Observation CSV path (fixture data when empty)")
	targetPath := flag.String("targets", "", "Target CSV path (fixture targets when empty)")
	addTarget := flag.Bool("add-target", true, "Merge targets and build volatility features")
	eps := flag.Float64("eps", features.DefaultEps, "Denominator guard for stress ratios")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres DSN for observation/target storage (POSTGRES_DSN env, memory when empty)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for feature storage (CLICKHOUSE_DSN env, memory when empty)")
	flag.Parse()

	pgDSN := envDefault(*postgresDSN, "POSTGRES_DSN")
	chDSN := envDefault(*clickhouseDSN, "CLICKHOUSE_DSN")

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	obsStore, targetStore, err := createObservationStores(ctx, pgDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up observation storage: %v\n", err)
		os.Exit(1)
	}

	featureStore, err := createFeatureStore(ctx, chDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up feature storage: %v\n", err)
		os.Exit(1)
	}

	obsSource, targetSource := createSources(*input, *targetPath)

	fmt.Println("=== Feature Pipeline ===")
	p := pipeline.New(pipeline.Options{
		ObservationSource: obsSource,
		TargetSource:      targetSource,
		ObservationStore:  obsStore,
		TargetStore:       targetStore,
		FeatureStore:      featureStore,
		BuildConfig:       features.Config{AddTarget: *addTarget, Eps: *eps},
		OutputDir:         *outputDir,
	})

	// Fixed clock keeps report output deterministic across runs
	fixedTime := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	p = p.WithClock(func() time.Time { return fixedTime })

	if err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGenerated files:")
	for _, name := range []string{pipeline.ReportFileName, pipeline.TableFileName, pipeline.CoverageFileName} {
		fmt.Printf("  %s\n", filepath.Join(*outputDir, name))
	}
}

// createObservationStores wires Postgres-backed stores when a DSN is given,
// running migrations first, and memory stores otherwise.
func createObservationStores(ctx context.Context, dsn string) (storage.ObservationStore, storage.TargetStore, error) {
	if dsn == "" {
		return memory.NewObservationStore(), memory.NewTargetStore(), nil
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	fmt.Println("Connected to Postgres")

	return postgres.NewObservationStore(pool), postgres.NewTargetStore(pool), nil
}

// createFeatureStore wires a ClickHouse-backed feature store when a DSN is
// given, running migrations first, and a memory store otherwise.
func createFeatureStore(ctx context.Context, dsn string) (storage.FeatureStore, error) {
	if dsn == "" {
		return memory.NewFeatureStore(), nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	fmt.Println("Connected to ClickHouse")

	return clickhouse.NewFeatureStore(conn), nil
}

// envDefault returns v, falling back to the named environment variable.
func envDefault(v, key string) string {
	if v != "" {
		return v
	}
	return os.Getenv(key)
}

// createSources picks CSV sources when paths are given, fixtures otherwise.
func createSources(input, targetPath string) (ingestion.ObservationSource, ingestion.TargetSource) {
	obsSource := ingestion.ObservationSource(pipeline.NewFixtureObservationSource())
	if input != "" {
		obsSource = ingestion.NewCSVObservationSource(input)
	}

	targetSource := ingestion.TargetSource(pipeline.NewFixtureTargetSource())
	if targetPath != "" {
		targetSource = ingestion.NewCSVTargetSource(targetPath)
	}

	return obsSource, targetSource
}
