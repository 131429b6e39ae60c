package dataset

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// CleanerConfig holds configuration options for the Cleaner.
type CleanerConfig struct {
	DateFormat   string // layout for the Date column
	ImputeScores bool   // replace null scores with the module mean
}

// DefaultCleanerConfig returns the configuration matching the training log's
// native format.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		DateFormat:   "2006-01-02",
		ImputeScores: false,
	}
}

// CleanStats counts what happened to the input rows during cleaning.
type CleanStats struct {
	Input         int // raw rows in
	Kept          int // records out
	Dropped       int // rows without a participant name or module
	NullScores    int // kept records with no usable score
	NullDates     int // kept records with no usable date
	ImputedScores int // null scores replaced with the module mean
}

// Cleaner coerces raw rows into typed training records.
type Cleaner struct {
	logger *slog.Logger
	config CleanerConfig
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default.
func NewCleaner(logger *slog.Logger, config CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DateFormat == "" {
		config.DateFormat = "2006-01-02"
	}
	return &Cleaner{logger: logger, config: config}
}

// Clean applies the coercion rules to every raw row:
//
//   - Name and Module are trimmed; a row missing either is dropped.
//   - Score parses as float64; blank or unparseable becomes null.
//   - Date parses with the configured layout; blank or invalid becomes null.
//   - Completed is true only for a case-insensitive "yes".
//
// With ImputeScores enabled, null scores are replaced by the mean score of
// the same module when one exists. Zero surviving records is a validation
// error.
func (c *Cleaner) Clean(ctx context.Context, rows []Row) ([]domain.TrainingRecord, CleanStats, error) {
	stats := CleanStats{Input: len(rows)}
	records := make([]domain.TrainingRecord, 0, len(rows))

	for _, row := range rows {
		record := domain.TrainingRecord{
			Name:      strings.TrimSpace(row.Values["Name"]),
			Module:    strings.TrimSpace(row.Values["Module"]),
			Completed: domain.ParseCompleted(row.Values["Completed"]),
		}

		if !record.Valid() {
			stats.Dropped++
			c.logger.WarnContext(ctx, "dropping row without name or module",
				slog.Int("line", row.Line))
			continue
		}

		record.Score = c.parseScore(ctx, row)
		if record.Score == nil {
			stats.NullScores++
		}

		record.Date = c.parseDate(ctx, row)
		if record.Date == nil {
			stats.NullDates++
		}

		records = append(records, record)
	}

	if c.config.ImputeScores {
		stats.ImputedScores = imputeByModuleMean(records)
		stats.NullScores -= stats.ImputedScores
	}

	stats.Kept = len(records)
	if stats.Kept == 0 {
		return nil, stats, apperrors.NewValidationError("no valid data records found")
	}

	c.logger.InfoContext(ctx, "cleaned training data",
		slog.Int("input", stats.Input),
		slog.Int("kept", stats.Kept),
		slog.Int("dropped", stats.Dropped),
		slog.Int("null_scores", stats.NullScores),
		slog.Int("null_dates", stats.NullDates),
		slog.Int("imputed_scores", stats.ImputedScores))

	return records, stats, nil
}

func (c *Cleaner) parseScore(ctx context.Context, row Row) *float64 {
	raw := strings.TrimSpace(row.Values["Score"])
	if raw == "" {
		return nil
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.WarnContext(ctx, "unparseable score treated as missing",
			slog.Int("line", row.Line),
			slog.String("value", raw))
		return nil
	}
	return &score
}

func (c *Cleaner) parseDate(ctx context.Context, row Row) *time.Time {
	raw := strings.TrimSpace(row.Values["Date"])
	if raw == "" {
		return nil
	}
	date, err := time.Parse(c.config.DateFormat, raw)
	if err != nil {
		c.logger.WarnContext(ctx, "unparseable date treated as missing",
			slog.Int("line", row.Line),
			slog.String("value", raw))
		return nil
	}
	return &date
}

// imputeByModuleMean fills null scores with the mean of non-null scores in
// the same module. Modules with no scored records keep their nulls.
func imputeByModuleMean(records []domain.TrainingRecord) int {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		if r.Score != nil {
			sums[r.Module] += *r.Score
			counts[r.Module]++
		}
	}

	imputed := 0
	for i := range records {
		if records[i].Score != nil {
			continue
		}
		if n := counts[records[i].Module]; n > 0 {
			mean := sums[records[i].Module] / float64(n)
			records[i].Score = &mean
			imputed++
		}
	}
	return imputed
}
