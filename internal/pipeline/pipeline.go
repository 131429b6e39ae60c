// Package pipeline wires the report generation stages together: load →
// clean → analyze → chart → write. One Run per invocation, start to finish,
// no shared state between runs.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trainpulse/internal/analytics"
	"trainpulse/internal/chart"
	"trainpulse/internal/config"
	"trainpulse/internal/dataset"
	apperrors "trainpulse/internal/errors"
	"trainpulse/internal/report"
)

// Options selects the input, outputs, and per-run toggles.
type Options struct {
	InputPath  string   // data file to load
	OutputPath string   // explicit PDF path; empty means dated default
	Formats    []string // pdf, csv, json, xlsx
	DumpCharts bool     // also write chart PNGs to the charts directory
}

// Result reports what a run produced.
type Result struct {
	ReportID   string
	Outputs    []string
	CleanStats dataset.CleanStats
}

// Runner executes the report pipeline.
type Runner struct {
	logger *slog.Logger
	cfg    *config.Config
	paths  *config.Paths
}

// NewRunner creates a pipeline runner bound to loaded configuration.
func NewRunner(logger *slog.Logger, cfg *config.Config, paths *config.Paths) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, cfg: cfg, paths: paths}
}

// Run executes the full pipeline. Nothing is written until every compute
// stage has succeeded; a failure in any stage aborts the run with no partial
// report on disk.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	reportID := uuid.NewString()[:8]
	logger := r.logger.With(slog.String("report_id", reportID))
	started := time.Now()

	logger.InfoContext(ctx, "starting report run",
		slog.String("input", opts.InputPath),
		slog.String("formats", strings.Join(opts.Formats, ",")))

	// Load
	loader := dataset.NewLoader(logger)
	rows, err := loader.Load(ctx, opts.InputPath)
	if err != nil {
		return nil, err
	}

	// Clean
	cleaner := dataset.NewCleaner(logger, dataset.CleanerConfig{
		DateFormat:   r.cfg.Data.DateFormat,
		ImputeScores: r.cfg.Data.ImputeScores,
	})
	records, cleanStats, err := cleaner.Clean(ctx, rows)
	if err != nil {
		return nil, err
	}

	// Aggregate
	analyzer := analytics.NewAnalyzer(logger, analytics.Config{
		TopPerformers:       r.cfg.Report.TopPerformers,
		CompletionThreshold: r.cfg.Report.CompletionThreshold,
	})
	analysis, err := analyzer.Analyze(ctx, records)
	if err != nil {
		return nil, err
	}

	// Chart
	renderer := chart.NewRenderer(logger, chart.Config{
		Width:  r.cfg.Chart.Width,
		Height: r.cfg.Chart.Height,
	})
	charts := report.Charts{}
	if charts.Trend, err = renderer.TrendChart(ctx, analysis.Trend); err != nil {
		return nil, err
	}
	if charts.Completion, err = renderer.CompletionChart(ctx, analysis.ModuleStats); err != nil {
		return nil, err
	}

	// Write
	if err := r.paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to prepare output directory", err)
	}

	result := &Result{ReportID: reportID, CleanStats: cleanStats}
	generator := report.NewGenerator(logger, report.Config{Title: r.cfg.Report.Title})

	for _, format := range opts.Formats {
		switch format {
		case "pdf":
			path := opts.OutputPath
			if path == "" {
				path = r.paths.ReportFile("pdf", started)
			}
			if err := generator.WritePDF(ctx, path, analysis, charts, reportID); err != nil {
				return nil, err
			}
			result.Outputs = append(result.Outputs, path)
		case "csv":
			base := filepath.Join(r.paths.ExportsDir, exportBase(opts, started))
			if err := generator.ExportCSV(ctx, base, analysis); err != nil {
				return nil, err
			}
			result.Outputs = append(result.Outputs, base+"_modules.csv", base+"_participants.csv")
		case "json":
			path := filepath.Join(r.paths.ExportsDir, exportBase(opts, started)+".json")
			if err := generator.ExportJSON(ctx, path, analysis); err != nil {
				return nil, err
			}
			result.Outputs = append(result.Outputs, path)
		case "xlsx":
			path := filepath.Join(r.paths.ExportsDir, exportBase(opts, started)+".xlsx")
			if err := generator.ExportXLSX(ctx, path, analysis); err != nil {
				return nil, err
			}
			result.Outputs = append(result.Outputs, path)
		default:
			return nil, apperrors.NewValidationError("unknown output format: " + format)
		}
	}

	if opts.DumpCharts {
		if err := r.dumpCharts(ctx, charts, &result.Outputs); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "report run complete",
		slog.Int("outputs", len(result.Outputs)),
		slog.Duration("elapsed", time.Since(started)))
	return result, nil
}

// dumpCharts writes the rendered chart PNGs next to the report for users who
// want the images on their own.
func (r *Runner) dumpCharts(ctx context.Context, charts report.Charts, outputs *[]string) error {
	if charts.Trend == nil && charts.Completion == nil {
		return nil
	}
	if err := os.MkdirAll(r.paths.ChartsDir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create charts directory", err)
	}

	write := func(name string, png []byte) error {
		if png == nil {
			return nil
		}
		path := filepath.Join(r.paths.ChartsDir, name)
		if err := os.WriteFile(path, png, 0644); err != nil {
			return apperrors.NewStorageError("failed to write chart PNG", err).
				WithContext("path", path)
		}
		*outputs = append(*outputs, path)
		r.logger.InfoContext(ctx, "wrote chart image", slog.String("path", path))
		return nil
	}

	if err := write("score_trend.png", charts.Trend); err != nil {
		return err
	}
	return write("module_completion.png", charts.Completion)
}

// exportBase derives the extensionless export file name from the input name,
// falling back to the dated default.
func exportBase(opts Options, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(opts.InputPath), filepath.Ext(opts.InputPath))
	if name == "" || name == "." {
		return "training_report_" + now.Format("20060102")
	}
	return name + "_report"
}
