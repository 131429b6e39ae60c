package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"trainpulse/internal/config"
	"trainpulse/internal/dataset"
	apperrors "trainpulse/internal/errors"
	"trainpulse/internal/pipeline"
)

func main() {
	inputPath := flag.String("in", "", "training data file (CSV, delimited text, or XLSX); a directory picks the newest data file in it")
	outputPath := flag.String("out", "", "output PDF path (defaults to <output_dir>/training_report_<date>.pdf)")
	formats := flag.String("format", "", "comma-separated output formats: pdf,csv,json,xlsx (default from config)")
	configFile := flag.String("config", "", "optional YAML config file")
	dumpCharts := flag.Bool("charts", false, "also write chart PNGs next to the report")
	impute := flag.Bool("impute", false, "impute missing scores with the module mean")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	// Environment overrides may live in a local .env during development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *impute {
		cfg.Data.ImputeScores = true
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: reportgen -in <data file> [-out <report.pdf>] [-format pdf,csv,json,xlsx]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	input, err := resolveInput(*inputPath)
	if err != nil {
		slog.Error("Failed to resolve input", "error", err)
		os.Exit(1)
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		slog.Error("Failed to resolve output paths", "error", err)
		os.Exit(1)
	}

	runFormats := cfg.ExportFormats()
	if *formats != "" {
		cfg.Report.Formats = *formats
		runFormats = cfg.ExportFormats()
	}

	runner := pipeline.NewRunner(logger, cfg, paths)
	result, err := runner.Run(context.Background(), pipeline.Options{
		InputPath:  input,
		OutputPath: *outputPath,
		Formats:    runFormats,
		DumpCharts: *dumpCharts,
	})
	if err != nil {
		logFailure(err)
		os.Exit(1)
	}

	slog.Info("Report generated successfully",
		"report_id", result.ReportID,
		"records", result.CleanStats.Kept,
		"outputs", result.Outputs)
}

// resolveInput accepts either a data file or a directory; for a directory the
// newest loadable file wins.
func resolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		// Let the loader produce its regular not-found error.
		return path, nil
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := dataset.FindDataFiles(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", apperrors.NewNotFoundError("training data file").WithContext("dir", path)
	}
	slog.Info("Selected newest data file in directory",
		"dir", path,
		"file", files[0].Name)
	return files[0].Path, nil
}

// logFailure reports a failed run in user-facing terms keyed by error
// category.
func logFailure(err error) {
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeNotFound):
		slog.Error("Input file not found", "error", err)
	case apperrors.IsType(err, apperrors.ErrTypeParsing):
		slog.Error("Input file could not be parsed", "error", err,
			"hint", "Check the file is delimited text or XLSX with a header row")
	case apperrors.IsType(err, apperrors.ErrTypeValidation):
		slog.Error("Input data failed validation", "error", err,
			"hint", "The file must contain Name, Module, Score, Date, and Completed columns with at least one valid row")
	case apperrors.IsType(err, apperrors.ErrTypeStorage):
		slog.Error("Failed to write report output", "error", err)
	default:
		slog.Error("Report generation failed", "error", err)
	}
}
