package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// ExportJSON writes the full analysis to a JSON file with a metadata
// envelope, for consumption by other tooling.
func (g *Generator) ExportJSON(ctx context.Context, path string, analysis *domain.Analysis) error {
	g.logger.InfoContext(ctx, "writing analysis to JSON",
		slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for JSON output", err)
	}

	envelope := map[string]interface{}{
		"report":       analysis,
		"modules":      len(analysis.ModuleStats),
		"participants": len(analysis.ParticipantStats),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "training_report_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create JSON file", err).
			WithContext("path", path)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return apperrors.NewStorageError("failed to encode analysis to JSON", err)
	}
	return nil
}

// ExportXLSX writes the aggregate tables to an Excel workbook with one sheet
// per table.
func (g *Generator) ExportXLSX(ctx context.Context, path string, analysis *domain.Analysis) error {
	g.logger.InfoContext(ctx, "writing analysis to XLSX",
		slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for XLSX output", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	moduleSheet := "Modules"
	f.SetSheetName(f.GetSheetName(0), moduleSheet)
	moduleRows := [][]interface{}{
		{"Module", "CompletionRate", "AverageScore", "Participants", "Records"},
	}
	for _, m := range analysis.ModuleStats {
		moduleRows = append(moduleRows, []interface{}{
			m.Module, m.CompletionRate, m.AverageScore, m.Participants, m.Records,
		})
	}
	if err := writeSheet(f, moduleSheet, moduleRows); err != nil {
		return err
	}

	participantSheet := "Participants"
	if _, err := f.NewSheet(participantSheet); err != nil {
		return apperrors.NewStorageError("failed to create participants sheet", err)
	}
	participantRows := [][]interface{}{
		{"Name", "CompletionRate", "AverageScore", "ModulesCompleted", "MedianScore", "ScoreStdDev", "MinScore", "MaxScore"},
	}
	for _, p := range analysis.ParticipantStats {
		participantRows = append(participantRows, []interface{}{
			p.Name, p.CompletionRate, p.AverageScore, p.ModulesCompleted,
			p.MedianScore, p.ScoreStdDev, p.MinScore, p.MaxScore,
		})
	}
	if err := writeSheet(f, participantSheet, participantRows); err != nil {
		return err
	}

	performerSheet := "Top Performers"
	if _, err := f.NewSheet(performerSheet); err != nil {
		return apperrors.NewStorageError("failed to create top performers sheet", err)
	}
	performerRows := [][]interface{}{
		{"Rank", "Name", "AverageScore", "CompletionRate", "ModulesCompleted"},
	}
	for _, p := range analysis.TopPerformers {
		performerRows = append(performerRows, []interface{}{
			p.Rank, p.Stats.Name, p.Stats.AverageScore, p.Stats.CompletionRate, p.Stats.ModulesCompleted,
		})
	}
	if err := writeSheet(f, performerSheet, performerRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save XLSX workbook", err).
			WithContext("path", path)
	}
	return nil
}

// writeSheet fills a sheet row by row starting at A1.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return apperrors.NewStorageError("failed to compute cell coordinates", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return apperrors.NewStorageError("failed to set cell value", err).
					WithContext("sheet", sheet).
					WithContext("cell", cell)
			}
		}
	}
	return nil
}
