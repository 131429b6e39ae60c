// Package dataset loads and cleans tabular training data.
//
// The package is organized into two stages:
//
// 1. Loader: reads CSV, delimiter-variant text, or Excel workbooks into raw rows
// 2. Cleaner: coerces raw rows into typed TrainingRecords
//
// Basic usage:
//
//	loader := dataset.NewLoader(logger)
//	rows, err := loader.Load(ctx, "training_data.csv")
//	if err != nil {
//	    return err
//	}
//
//	cleaner := dataset.NewCleaner(logger, dataset.DefaultCleanerConfig())
//	records, stats, err := cleaner.Clean(ctx, rows)
//
// Malformed individual rows are skipped with a warning and counted in
// CleanStats; structural problems (missing file, empty file, missing
// required columns, zero surviving rows) are returned as errors.
package dataset
