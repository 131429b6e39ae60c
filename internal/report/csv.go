package report

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// writeCSV writes data to a CSV file with the given options.
func (g *Generator) writeCSV(ctx context.Context, path string, options WriteOptions) error {
	g.logger.DebugContext(ctx, "writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write CSV header row", err)
		}
	}

	for _, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write CSV data row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV output", err)
	}
	return nil
}

// ExportCSV writes the module and participant aggregate tables as two CSV
// files next to each other: <base>_modules.csv and <base>_participants.csv.
// base is a path without extension.
func (g *Generator) ExportCSV(ctx context.Context, base string, analysis *domain.Analysis) error {
	moduleRecords := make([][]string, len(analysis.ModuleStats))
	for i, m := range analysis.ModuleStats {
		moduleRecords[i] = []string{
			m.Module,
			formatFloat(m.CompletionRate),
			formatFloat(m.AverageScore),
			formatInt(m.Participants),
			formatInt(m.Records),
		}
	}
	modulePath := base + "_modules.csv"
	err := g.writeCSV(ctx, modulePath, WriteOptions{
		Headers:   []string{"Module", "CompletionRate", "AverageScore", "Participants", "Records"},
		Records:   moduleRecords,
		BOMPrefix: true,
	})
	if err != nil {
		return err
	}

	participantRecords := make([][]string, len(analysis.ParticipantStats))
	for i, p := range analysis.ParticipantStats {
		participantRecords[i] = []string{
			p.Name,
			formatFloat(p.CompletionRate),
			formatFloat(p.AverageScore),
			formatInt(p.ModulesCompleted),
			formatFloat(p.MedianScore),
			formatFloat(p.ScoreStdDev),
			formatFloat(p.MinScore),
			formatFloat(p.MaxScore),
		}
	}
	participantPath := base + "_participants.csv"
	err = g.writeCSV(ctx, participantPath, WriteOptions{
		Headers: []string{
			"Name", "CompletionRate", "AverageScore", "ModulesCompleted",
			"MedianScore", "ScoreStdDev", "MinScore", "MaxScore",
		},
		Records:   participantRecords,
		BOMPrefix: true,
	})
	if err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "exported aggregate CSV files",
		slog.String("modules", modulePath),
		slog.String("participants", participantPath))
	return nil
}
