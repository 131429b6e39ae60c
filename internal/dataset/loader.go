package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// Row is one raw data row keyed by canonical column name, before type
// coercion. Line is the 1-based position in the source file, for warnings.
type Row struct {
	Line   int
	Values map[string]string
}

// Loader reads tabular training data from CSV, delimited text, or Excel
// workbooks into raw rows. Type coercion is the Cleaner's job.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path, dispatching on extension: .xlsx and .xls go
// through excelize, everything else is treated as delimited text with
// delimiter auto-detection. Malformed rows are skipped with a warning, never
// fatal; structural problems (missing file, empty file, missing required
// columns) are.
func (l *Loader) Load(ctx context.Context, path string) ([]Row, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError("training data file").WithContext("path", path)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to stat training data file", err).
			WithContext("path", path)
	}
	if info.Size() == 0 {
		return nil, apperrors.NewValidationError("training data file is empty").
			WithContext("path", path)
	}

	l.logger.InfoContext(ctx, "loading training data",
		slog.String("path", path),
		slog.Int64("size_bytes", info.Size()))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return l.loadWorkbook(ctx, path)
	default:
		return l.loadDelimited(ctx, path)
	}
}

// loadDelimited reads a CSV or delimiter-variant text file.
func (l *Loader) loadDelimited(ctx context.Context, path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open training data file", err).
			WithContext("path", path)
	}
	defer file.Close()

	firstLine, err := readFirstLine(file)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header line", err).
			WithContext("path", path)
	}
	delimiter := detectDelimiter(firstLine)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.NewStorageError("failed to rewind training data file", err)
	}

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV header", err).
			WithContext("path", path)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "detected file structure",
		slog.String("delimiter", string(delimiter)),
		slog.Int("columns", len(header)))

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			l.logger.WarnContext(ctx, "skipping malformed row",
				slog.Int("line", line),
				slog.String("error", err.Error()))
			continue
		}
		values, ok := extractValues(record, columns)
		if !ok {
			l.logger.WarnContext(ctx, "skipping short row",
				slog.Int("line", line),
				slog.Int("fields", len(record)))
			continue
		}
		rows = append(rows, Row{Line: line, Values: values})
	}

	l.logger.InfoContext(ctx, "loaded delimited data", slog.Int("rows", len(rows)))
	return rows, nil
}

// loadWorkbook reads the training sheet of an Excel workbook. The sheet is
// located by scanning for the required header row, since exported workbooks
// do not use a stable sheet name.
func (l *Loader) loadWorkbook(ctx context.Context, path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	var sheetRows [][]string
	var sheetName string
	for _, name := range f.GetSheetList() {
		candidate, err := f.GetRows(name)
		if err != nil || len(candidate) == 0 {
			continue
		}
		if _, err := mapColumns(candidate[0]); err == nil {
			sheetRows = candidate
			sheetName = name
			break
		}
	}
	if sheetName == "" {
		return nil, apperrors.NewValidationError("no sheet with required training columns found").
			WithContext("path", path).
			WithContext("required", strings.Join(domain.RequiredColumns, ", "))
	}

	l.logger.InfoContext(ctx, "found training data sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(sheetRows)))

	columns, err := mapColumns(sheetRows[0])
	if err != nil {
		return nil, err
	}

	headerLen := len(sheetRows[0])
	var rows []Row
	for i, record := range sheetRows[1:] {
		line := i + 2
		if isBlank(record) {
			continue
		}
		// GetRows trims trailing empty cells; pad so a blank last column
		// does not make the row look short.
		for len(record) < headerLen {
			record = append(record, "")
		}
		values, ok := extractValues(record, columns)
		if !ok {
			l.logger.WarnContext(ctx, "skipping short row",
				slog.Int("line", line),
				slog.Int("fields", len(record)))
			continue
		}
		rows = append(rows, Row{Line: line, Values: values})
	}

	l.logger.InfoContext(ctx, "loaded workbook data", slog.Int("rows", len(rows)))
	return rows, nil
}

// mapColumns resolves required column names to indices, case-insensitively.
// All of domain.RequiredColumns must be present.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(domain.RequiredColumns))
	for i, h := range header {
		name := strings.TrimSpace(h)
		for _, want := range domain.RequiredColumns {
			if strings.EqualFold(name, want) {
				columns[want] = i
			}
		}
	}

	var missing []string
	for _, want := range domain.RequiredColumns {
		if _, ok := columns[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required columns: " + strings.Join(missing, ", "))
	}
	return columns, nil
}

// extractValues pulls the required columns out of a record. Returns false
// when the record is too short to hold every required column.
func extractValues(record []string, columns map[string]int) (map[string]string, bool) {
	values := make(map[string]string, len(columns))
	for name, idx := range columns {
		if idx >= len(record) {
			return nil, false
		}
		values[name] = record[idx]
	}
	return values, true
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks the most frequent candidate delimiter in the header
// line. Comma wins ties, matching the common case.
func detectDelimiter(line string) rune {
	best := ','
	bestCount := strings.Count(line, ",")
	for _, candidate := range []rune{';', '\t'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best = candidate
			bestCount = n
		}
	}
	return best
}

// readFirstLine reads up to the first newline without consuming the reader's
// position guarantees; the caller rewinds afterwards.
func readFirstLine(r io.Reader) (string, error) {
	buf := make([]byte, 0, 256)
	chunk := make([]byte, 1)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if chunk[0] == '\n' {
				break
			}
			buf = append(buf, chunk[0])
			if len(buf) > 64*1024 {
				break
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return string(buf), nil
}
