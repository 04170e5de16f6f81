// Package main provides the batch feature-build entry point.
// Reads observation (and optionally target) CSV files and writes the wide
// feature table CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"power-vol-lab/internal/features"
	"power-vol-lab/internal/frame"
	"power-vol-lab/internal/ingestion"
)

func main() {
	input := flag.String("input", "", "Path to observation CSV (required)")
	targets := flag.String("targets", "", "Path to target CSV with ID and TARGET columns")
	addTarget := flag.Bool("add-target", false, "Merge targets and build volatility features")
	eps := flag.Float64("eps", features.DefaultEps, "Denominator guard for stress ratios")
	output := flag.String("output", "feature_table.csv", "Path for the output feature CSV")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		flag.Usage()
		os.Exit(1)
	}
	if *addTarget && *targets == "" {
		fmt.Fprintln(os.Stderr, "Error: --add-target requires --targets")
		os.Exit(1)
	}

	ctx := context.Background()

	df, err := ingestion.NewCSVObservationSource(*input).Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading observations: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d observation rows from %s\n", df.Len(), *input)

	cfg := features.Config{AddTarget: *addTarget, Eps: *eps}

	built, err := buildWithTargets(ctx, df, *targets, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building features: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := frame.WriteCSV(out, built); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d rows x %d columns to %s\n", built.Len(), len(built.Columns()), *output)
}

func buildWithTargets(ctx context.Context, df *frame.Frame, targetPath string, cfg features.Config) (*frame.Frame, error) {
	if targetPath == "" {
		return features.Build(df, nil, cfg)
	}

	targets, err := ingestion.NewCSVTargetSource(targetPath).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	fmt.Printf("Loaded %d target rows from %s\n", len(targets), targetPath)

	return features.Build(df, targets, cfg)
}
