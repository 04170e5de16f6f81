package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"power-vol-lab/internal/domain"
	"power-vol-lab/internal/features"
	"power-vol-lab/internal/frame"
	"power-vol-lab/internal/ingestion"
	"power-vol-lab/internal/reporting"
	"power-vol-lab/internal/storage"
)

// Output file names.
const (
	ReportFileName   = "FEATURE_REPORT.md"
	TableFileName    = "feature_table.csv"
	CoverageFileName = "feature_coverage.csv"
)

// Pipeline orchestrates ingestion, feature building, persistence and
// reporting.
type Pipeline struct {
	obsSource    ingestion.ObservationSource
	targetSource ingestion.TargetSource

	obsStore     storage.ObservationStore
	targetStore  storage.TargetStore
	featureStore storage.FeatureStore

	reportGen *reporting.Generator
	buildCfg  features.Config
	outputDir string
}

// Options contains configuration for creating a Pipeline. Sources are
// preferred over stores when both are set; stores are still populated so a
// later run can start from the database alone.
type Options struct {
	ObservationSource ingestion.ObservationSource
	TargetSource      ingestion.TargetSource

	ObservationStore storage.ObservationStore
	TargetStore      storage.TargetStore
	FeatureStore     storage.FeatureStore

	BuildConfig features.Config
	OutputDir   string
}

// New creates a new pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		obsSource:    opts.ObservationSource,
		targetSource: opts.TargetSource,
		obsStore:     opts.ObservationStore,
		targetStore:  opts.TargetStore,
		featureStore: opts.FeatureStore,
		reportGen:    reporting.NewGenerator(),
		buildCfg:     opts.BuildConfig,
		outputDir:    opts.OutputDir,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// Run executes the full pipeline and writes output files:
// - FEATURE_REPORT.md
// - feature_table.csv
// - feature_coverage.csv
func (p *Pipeline) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	// 1. Load inputs, ingesting into stores when sources are configured
	df, err := p.loadObservations(ctx)
	if err != nil {
		return err
	}

	targets, err := p.loadTargets(ctx)
	if err != nil {
		return err
	}

	// 2. Build the feature table
	built, err := features.Build(df, targets, p.buildCfg)
	if err != nil {
		return fmt.Errorf("build features: %w", err)
	}

	// 3. Persist feature cells
	if p.featureStore != nil {
		if err := p.featureStore.InsertBulk(ctx, featureCells(built)); err != nil {
			return fmt.Errorf("store features: %w", err)
		}
	}

	// 4. Write the wide feature table
	tablePath := filepath.Join(p.outputDir, TableFileName)
	tableFile, err := os.Create(tablePath)
	if err != nil {
		return err
	}
	if err := frame.WriteCSV(tableFile, built); err != nil {
		tableFile.Close()
		return fmt.Errorf("write feature table: %w", err)
	}
	if err := tableFile.Close(); err != nil {
		return err
	}

	// 5. Generate and write the coverage report
	report := p.reportGen.Generate(built)

	reportMD := reporting.RenderMarkdown(report)
	reportPath := filepath.Join(p.outputDir, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(reportMD), 0644); err != nil {
		return err
	}

	coverageCSV := reporting.RenderCSV(report.ColumnCoverage)
	coveragePath := filepath.Join(p.outputDir, CoverageFileName)
	if err := os.WriteFile(coveragePath, []byte(coverageCSV), 0644); err != nil {
		return err
	}

	return nil
}

// loadObservations fetches the observation frame from the source, falling
// back to the observation store. A source-backed run also populates the
// store via the ingestion manager.
func (p *Pipeline) loadObservations(ctx context.Context) (*frame.Frame, error) {
	if p.obsSource != nil {
		df, err := p.obsSource.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch observations: %w", err)
		}

		if p.obsStore != nil {
			mgr := ingestion.NewManager(ingestion.ManagerOptions{
				ObservationSource: staticObservationSource{df: df},
				ObservationStore:  p.obsStore,
			})
			if _, err := mgr.IngestObservations(ctx); err != nil {
				return nil, fmt.Errorf("ingest observations: %w", err)
			}
		}

		return df, nil
	}

	if p.obsStore == nil {
		return nil, fmt.Errorf("pipeline has no observation source or store")
	}

	obs, err := p.obsStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	return frame.FromObservations(obs, nil)
}

// loadTargets fetches targets from the source, falling back to the target
// store. Missing targets are fine unless the build config asks for them.
func (p *Pipeline) loadTargets(ctx context.Context) ([]*domain.Target, error) {
	if p.targetSource != nil {
		targets, err := p.targetSource.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch targets: %w", err)
		}

		if p.targetStore != nil {
			mgr := ingestion.NewManager(ingestion.ManagerOptions{
				TargetSource: staticTargetSource{targets: targets},
				TargetStore:  p.targetStore,
			})
			if _, err := mgr.IngestTargets(ctx); err != nil {
				return nil, fmt.Errorf("ingest targets: %w", err)
			}
		}

		return targets, nil
	}

	if p.targetStore == nil {
		return nil, nil
	}

	targets, err := p.targetStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	return targets, nil
}

// featureCells flattens a built frame into long-format cells for storage.
func featureCells(df *frame.Frame) []*domain.FeatureCell {
	cols := df.Columns()
	cells := make([]*domain.FeatureCell, 0, df.Len()*len(cols))

	for i := 0; i < df.Len(); i++ {
		for _, col := range cols {
			cell := &domain.FeatureCell{
				ID:      df.ID(i),
				DayID:   df.Day(i),
				Country: df.Country(i),
				Feature: col,
			}
			if v := df.Value(col, i); v != nil {
				value := *v
				cell.Value = &value
			}
			cells = append(cells, cell)
		}
	}

	return cells
}

// staticObservationSource adapts an already-fetched frame to the source
// interface so the ingestion manager can do ordering and storage.
type staticObservationSource struct {
	df *frame.Frame
}

func (s staticObservationSource) Fetch(context.Context) (*frame.Frame, error) {
	// Clone so the manager's sort does not reorder the caller's frame.
	return s.df.Clone(), nil
}

type staticTargetSource struct {
	targets []*domain.Target
}

func (s staticTargetSource) Fetch(context.Context) ([]*domain.Target, error) {
	return s.targets, nil
}
