// Package report assembles the training progress report. The PDF is the
// primary output; aggregate tables can also be exported as CSV, JSON, and
// XLSX for downstream use.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// Config holds report generation options.
type Config struct {
	Title string
}

// DefaultConfig returns the default report configuration.
func DefaultConfig() Config {
	return Config{Title: "Intern Training Progress Report"}
}

// Charts holds the rendered PNG images to embed in the PDF. Nil slices mean
// the corresponding section is omitted.
type Charts struct {
	Trend      []byte
	Completion []byte
}

// Generator writes reports from a completed analysis.
type Generator struct {
	logger *slog.Logger
	config Config
}

// NewGenerator creates a report generator. A nil logger falls back to
// slog.Default.
func NewGenerator(logger *slog.Logger, config Config) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Title == "" {
		config.Title = DefaultConfig().Title
	}
	return &Generator{logger: logger, config: config}
}

// WritePDF assembles the PDF report and writes it to path. reportID tags the
// run in the footer so a report can be matched to its log lines.
func (g *Generator) WritePDF(ctx context.Context, path string, analysis *domain.Analysis, charts Charts, reportID string) error {
	g.logger.InfoContext(ctx, "writing PDF report",
		slog.String("path", path),
		slog.String("report_id", reportID))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory for PDF output", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Report %s - page %d of {nb}", reportID, pdf.PageNo()),
			"", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	g.writeTitle(pdf, analysis)
	g.writeSummary(pdf, analysis)
	g.writeModuleTable(pdf, analysis.ModuleStats)
	g.writePerformerTable(pdf, analysis.TopPerformers)
	g.embedCharts(pdf, analysis, charts)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return apperrors.NewStorageError("failed to write PDF report", err).
			WithContext("path", path)
	}

	g.logger.InfoContext(ctx, "PDF report written", slog.String("path", path))
	return nil
}

func (g *Generator) writeTitle(pdf *fpdf.Fpdf, analysis *domain.Analysis) {
	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 20, g.config.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(96, 96, 96)
	pdf.CellFormat(0, 6,
		"Generated "+analysis.GeneratedAt.Format("2006-01-02 15:04"),
		"", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(8)
}

func (g *Generator) writeSummary(pdf *fpdf.Fpdf, analysis *domain.Analysis) {
	s := analysis.Summary

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Program Summary", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Modules: %d", s.Modules), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Participants: %d", s.Participants), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Training Records: %d", s.Records), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Completion Rate: %.1f%%", s.OverallCompletionRate), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Average Score: %.1f", s.OverallAverageScore), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, "Score Trend: "+analysis.Trend.Direction(), "", 1, "", false, 0, "")
	pdf.Ln(5)
}

func (g *Generator) writeModuleTable(pdf *fpdf.Fpdf, modules []domain.ModuleStats) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Module Progress", "", 1, "", false, 0, "")
	pdf.Ln(2)

	widths := []float64{80, 40, 35, 35}
	headers := []string{"Module", "Completion Rate", "Avg Score", "Participants"}

	pdf.SetFont("Arial", "B", 12)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 10, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, m := range modules {
		pdf.CellFormat(widths[0], 10, m.Module, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 10, fmt.Sprintf("%.1f%%", m.CompletionRate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 10, fmt.Sprintf("%.1f", m.AverageScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 10, fmt.Sprintf("%d", m.Participants), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)
}

func (g *Generator) writePerformerTable(pdf *fpdf.Fpdf, performers []domain.TopPerformer) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Top Performers", "", 1, "", false, 0, "")
	pdf.Ln(2)

	if len(performers) == 0 {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "No qualified top performers found", "", 1, "", false, 0, "")
		pdf.Ln(5)
		return
	}

	widths := []float64{60, 40, 40, 50}
	headers := []string{"Name", "Avg Score", "Completion", "Modules Completed"}

	pdf.SetFont("Arial", "B", 12)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 10, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, p := range performers {
		pdf.CellFormat(widths[0], 10, p.Stats.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 10, fmt.Sprintf("%.1f", p.Stats.AverageScore), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 10, fmt.Sprintf("%.1f%%", p.Stats.CompletionRate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 10, fmt.Sprintf("%d", p.Stats.ModulesCompleted), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(8)
}

func (g *Generator) embedCharts(pdf *fpdf.Fpdf, analysis *domain.Analysis, charts Charts) {
	if charts.Trend != nil {
		g.embedChart(pdf, "trend", "Score Trend Over Time", charts.Trend)
	}
	if charts.Completion != nil {
		g.embedChart(pdf, "completion", "Completion by Module", charts.Completion)
	}
}

func (g *Generator) embedChart(pdf *fpdf.Fpdf, name, heading string, png []byte) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, heading, "", 1, "", false, 0, "")
	pdf.Ln(2)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, 10, 0, 190, 0, true, opts, 0, "")
}
