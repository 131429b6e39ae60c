package analytics

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

func record(name, module string, score *float64, date *time.Time, completed bool) domain.TrainingRecord {
	return domain.TrainingRecord{
		Name:      name,
		Module:    module,
		Score:     score,
		Date:      date,
		Completed: completed,
	}
}

func scorePtr(v float64) *float64 { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestAnalyzer_EmptyInput(t *testing.T) {
	analyzer := NewAnalyzer(slog.Default(), DefaultConfig())

	_, err := analyzer.Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestAnalyzer_ModuleStats(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(90), datePtr(2026, 1, 5), true),
		record("Bob", "Go Basics", scorePtr(70), datePtr(2026, 1, 6), true),
		record("Cara", "Go Basics", nil, nil, false),
		record("Alice", "Testing", scorePtr(85), datePtr(2026, 1, 10), true),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, analysis.ModuleStats, 2)

	goBasics := analysis.ModuleStats[0]
	assert.Equal(t, "Go Basics", goBasics.Module)
	assert.InDelta(t, 66.67, goBasics.CompletionRate, 0.01)
	assert.Equal(t, 80.0, goBasics.AverageScore)
	assert.Equal(t, 3, goBasics.Participants)
	assert.Equal(t, 3, goBasics.Records)
	assert.Equal(t, 2, goBasics.ScoredRecords)

	testing_ := analysis.ModuleStats[1]
	assert.Equal(t, "Testing", testing_.Module)
	assert.Equal(t, 100.0, testing_.CompletionRate)
	assert.Equal(t, 85.0, testing_.AverageScore)
	assert.Equal(t, 1, testing_.Participants)
}

func TestAnalyzer_ParticipantStats(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(80), datePtr(2026, 1, 5), true),
		record("Alice", "Testing", scorePtr(100), datePtr(2026, 1, 12), true),
		record("Alice", "Deployment", nil, nil, false),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, analysis.ParticipantStats, 1)
	alice := analysis.ParticipantStats[0]
	assert.Equal(t, "Alice", alice.Name)
	assert.InDelta(t, 66.67, alice.CompletionRate, 0.01)
	assert.Equal(t, 90.0, alice.AverageScore)
	assert.Equal(t, 2, alice.ModulesCompleted)
	assert.Equal(t, 90.0, alice.MedianScore)
	assert.Equal(t, 80.0, alice.MinScore)
	assert.Equal(t, 100.0, alice.MaxScore)
	assert.InDelta(t, 10.0, alice.ScoreStdDev, 0.01)
}

func TestAnalyzer_TopPerformers(t *testing.T) {
	analyzer := NewAnalyzer(nil, Config{TopPerformers: 2, CompletionThreshold: 50})

	records := []domain.TrainingRecord{
		// Alice: 100% completion, avg 95.
		record("Alice", "Go Basics", scorePtr(95), nil, true),
		// Bob: 100% completion, avg 85.
		record("Bob", "Go Basics", scorePtr(85), nil, true),
		// Cara: 100% completion, avg 90.
		record("Cara", "Go Basics", scorePtr(90), nil, true),
		// Dan: exactly at the 50% threshold, avg 99 — qualifies.
		record("Dan", "Go Basics", scorePtr(99), nil, true),
		record("Dan", "Testing", nil, nil, false),
		// Eve: below threshold, must not appear despite a perfect score.
		record("Eve", "Go Basics", scorePtr(100), nil, true),
		record("Eve", "Testing", nil, nil, false),
		record("Eve", "Deployment", nil, nil, false),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, analysis.TopPerformers, 2)
	assert.Equal(t, 1, analysis.TopPerformers[0].Rank)
	assert.Equal(t, "Dan", analysis.TopPerformers[0].Stats.Name)
	assert.Equal(t, 2, analysis.TopPerformers[1].Rank)
	assert.Equal(t, "Alice", analysis.TopPerformers[1].Stats.Name)
}

func TestAnalyzer_NoQualifiedPerformers(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(95), nil, false),
		record("Bob", "Go Basics", scorePtr(85), nil, false),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)
	assert.Empty(t, analysis.TopPerformers)
}

func TestAnalyzer_Trend(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	// Scores rise exactly one point per day.
	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(72), datePtr(2026, 1, 3), true),
		record("Bob", "Go Basics", scorePtr(70), datePtr(2026, 1, 1), true),
		record("Cara", "Go Basics", scorePtr(71), datePtr(2026, 1, 2), true),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	trend := analysis.Trend
	require.NotNil(t, trend)
	require.Len(t, trend.Points, 3)
	// Points come back sorted by date.
	assert.Equal(t, 70.0, trend.Points[0].Score)
	assert.Equal(t, 72.0, trend.Points[2].Score)
	assert.InDelta(t, 1.0, trend.Slope, 1e-9)
	assert.InDelta(t, 70.0, trend.Intercept, 1e-9)
	assert.Equal(t, "improving", trend.Direction())
}

func TestAnalyzer_TrendAbsentWithoutDatedScores(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(90), nil, true),
		record("Bob", "Go Basics", nil, datePtr(2026, 1, 5), true),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)
	assert.Nil(t, analysis.Trend)
	assert.Equal(t, "insufficient data", analysis.Trend.Direction())
}

func TestAnalyzer_TrendSingleDay(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(80), datePtr(2026, 1, 5), true),
		record("Bob", "Go Basics", scorePtr(90), datePtr(2026, 1, 5), true),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	trend := analysis.Trend
	require.NotNil(t, trend)
	assert.Equal(t, 0.0, trend.Slope)
	assert.Equal(t, 85.0, trend.Intercept)
	assert.Equal(t, "steady", trend.Direction())
}

func TestAnalyzer_Summary(t *testing.T) {
	analyzer := NewAnalyzer(nil, DefaultConfig())

	records := []domain.TrainingRecord{
		record("Alice", "Go Basics", scorePtr(90), datePtr(2026, 1, 5), true),
		record("Bob", "Go Basics", nil, nil, false),
		record("Alice", "Testing", scorePtr(70), datePtr(2026, 1, 8), true),
		record("Bob", "Testing", nil, nil, false),
	}

	analysis, err := analyzer.Analyze(context.Background(), records)
	require.NoError(t, err)

	s := analysis.Summary
	assert.Equal(t, 2, s.Modules)
	assert.Equal(t, 2, s.Participants)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 50.0, s.OverallCompletionRate)
	assert.Equal(t, 80.0, s.OverallAverageScore)
	assert.False(t, analysis.GeneratedAt.IsZero())
}
