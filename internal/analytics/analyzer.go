package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// Config holds configuration options for the Analyzer.
type Config struct {
	TopPerformers       int     // how many performers to rank
	CompletionThreshold float64 // minimum completion rate (%) to qualify
}

// DefaultConfig returns the default analytics configuration.
func DefaultConfig() Config {
	return Config{
		TopPerformers:       3,
		CompletionThreshold: 50,
	}
}

// Analyzer computes the per-module, per-participant, and program-wide
// aggregates that feed chart rendering and report assembly.
type Analyzer struct {
	logger *slog.Logger
	config Config
}

// NewAnalyzer creates an analyzer. A nil logger falls back to slog.Default.
func NewAnalyzer(logger *slog.Logger, config Config) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopPerformers <= 0 {
		config.TopPerformers = 3
	}
	return &Analyzer{logger: logger, config: config}
}

// Analyze computes all aggregates over the cleaned records. Records without
// a score contribute to completion rates but not to score statistics;
// records without a date are excluded from the trend series.
func (a *Analyzer) Analyze(ctx context.Context, records []domain.TrainingRecord) (*domain.Analysis, error) {
	if len(records) == 0 {
		return nil, apperrors.NewValidationError("no records to analyze")
	}

	a.logger.InfoContext(ctx, "analyzing training data",
		slog.Int("record_count", len(records)))

	moduleStats := a.computeModuleStats(records)
	participantStats := a.computeParticipantStats(records)
	topPerformers := a.rankTopPerformers(participantStats)
	trend := computeTrend(records)

	analysis := &domain.Analysis{
		Summary:          computeSummary(records, len(moduleStats), len(participantStats)),
		ModuleStats:      moduleStats,
		ParticipantStats: participantStats,
		TopPerformers:    topPerformers,
		Trend:            trend,
		GeneratedAt:      time.Now(),
	}

	a.logger.InfoContext(ctx, "analysis complete",
		slog.Int("modules", len(moduleStats)),
		slog.Int("participants", len(participantStats)),
		slog.Int("top_performers", len(topPerformers)),
		slog.Bool("has_trend", trend != nil))

	return analysis, nil
}

// computeModuleStats aggregates records per module, sorted by module name.
func (a *Analyzer) computeModuleStats(records []domain.TrainingRecord) []domain.ModuleStats {
	byModule := make(map[string][]domain.TrainingRecord)
	for _, r := range records {
		byModule[r.Module] = append(byModule[r.Module], r)
	}

	result := make([]domain.ModuleStats, 0, len(byModule))
	for module, group := range byModule {
		completed := 0
		participants := make(map[string]struct{})
		var scores []float64

		for _, r := range group {
			participants[r.Name] = struct{}{}
			if r.Completed {
				completed++
				if r.HasScore() {
					scores = append(scores, *r.Score)
				}
			}
		}

		result = append(result, domain.ModuleStats{
			Module:         module,
			CompletionRate: percent(completed, len(group)),
			AverageScore:   meanOrZero(scores),
			Participants:   len(participants),
			Records:        len(group),
			ScoredRecords:  len(scores),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Module < result[j].Module
	})
	return result
}

// computeParticipantStats aggregates records per participant, sorted by name.
func (a *Analyzer) computeParticipantStats(records []domain.TrainingRecord) []domain.ParticipantStats {
	byName := make(map[string][]domain.TrainingRecord)
	for _, r := range records {
		byName[r.Name] = append(byName[r.Name], r)
	}

	result := make([]domain.ParticipantStats, 0, len(byName))
	for name, group := range byName {
		completed := 0
		var scores []float64

		for _, r := range group {
			if r.Completed {
				completed++
				if r.HasScore() {
					scores = append(scores, *r.Score)
				}
			}
		}

		ps := domain.ParticipantStats{
			Name:             name,
			CompletionRate:   percent(completed, len(group)),
			AverageScore:     meanOrZero(scores),
			ModulesCompleted: completed,
			Records:          len(group),
		}
		if len(scores) > 0 {
			ps.MedianScore, _ = stats.Median(scores)
			ps.ScoreStdDev, _ = stats.StandardDeviation(scores)
			ps.MinScore, _ = stats.Min(scores)
			ps.MaxScore, _ = stats.Max(scores)
		}
		result = append(result, ps)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// rankTopPerformers filters participants meeting the completion threshold
// with at least one completed module and ranks them by average score.
func (a *Analyzer) rankTopPerformers(participants []domain.ParticipantStats) []domain.TopPerformer {
	var qualified []domain.ParticipantStats
	for _, p := range participants {
		if p.CompletionRate >= a.config.CompletionThreshold && p.ModulesCompleted > 0 {
			qualified = append(qualified, p)
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].AverageScore != qualified[j].AverageScore {
			return qualified[i].AverageScore > qualified[j].AverageScore
		}
		return qualified[i].Name < qualified[j].Name
	})

	if len(qualified) > a.config.TopPerformers {
		qualified = qualified[:a.config.TopPerformers]
	}

	performers := make([]domain.TopPerformer, len(qualified))
	for i, p := range qualified {
		performers[i] = domain.TopPerformer{Rank: i + 1, Stats: p}
	}
	return performers
}

// computeTrend builds the chronological score series and fits a regression
// line through it. Returns nil when no record has both a date and a score.
func computeTrend(records []domain.TrainingRecord) *domain.ScoreTrend {
	var points []domain.TrendPoint
	for _, r := range records {
		if r.HasDate() && r.HasScore() {
			points = append(points, domain.TrendPoint{Date: *r.Date, Score: *r.Score})
		}
	}
	if len(points) == 0 {
		return nil
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	trend := &domain.ScoreTrend{Points: points}
	if len(points) < 2 {
		trend.Intercept = points[0].Score
		return trend
	}

	// Regression over days elapsed since the first observation.
	origin := points[0].Date
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Date.Sub(origin).Hours() / 24
		ys[i] = p.Score
	}
	if xs[len(xs)-1] == xs[0] {
		// All observations on the same day; a slope is undefined.
		trend.Intercept = meanOrZero(ys)
		return trend
	}
	trend.Intercept, trend.Slope = stat.LinearRegression(xs, ys, nil, false)
	return trend
}

// computeSummary builds the program-wide aggregates.
func computeSummary(records []domain.TrainingRecord, modules, participants int) domain.ProgramSummary {
	completed := 0
	var scores []float64
	for _, r := range records {
		if r.Completed {
			completed++
			if r.HasScore() {
				scores = append(scores, *r.Score)
			}
		}
	}

	return domain.ProgramSummary{
		Modules:               modules,
		Participants:          participants,
		Records:               len(records),
		OverallCompletionRate: percent(completed, len(records)),
		OverallAverageScore:   meanOrZero(scores),
	}
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}
