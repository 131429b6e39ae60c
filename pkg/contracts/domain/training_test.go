package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrainingRecord_Valid(t *testing.T) {
	score := 90.0
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record TrainingRecord
		want   bool
	}{
		{
			name:   "complete record",
			record: TrainingRecord{Name: "Alice", Module: "Go Basics", Score: &score, Date: &date, Completed: true},
			want:   true,
		},
		{
			name:   "missing name",
			record: TrainingRecord{Module: "Go Basics"},
			want:   false,
		},
		{
			name:   "whitespace module",
			record: TrainingRecord{Name: "Alice", Module: "   "},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Valid())
		})
	}
}

func TestParseCompleted(t *testing.T) {
	assert.True(t, ParseCompleted("yes"))
	assert.True(t, ParseCompleted("YES"))
	assert.True(t, ParseCompleted("  Yes  "))
	assert.False(t, ParseCompleted("no"))
	assert.False(t, ParseCompleted(""))
	assert.False(t, ParseCompleted("y"))
}

func TestScoreTrend_Direction(t *testing.T) {
	points := []TrendPoint{
		{Date: time.Now(), Score: 70},
		{Date: time.Now().AddDate(0, 0, 1), Score: 75},
	}

	var nilTrend *ScoreTrend
	assert.Equal(t, "insufficient data", nilTrend.Direction())
	assert.Equal(t, "improving", (&ScoreTrend{Points: points, Slope: 1.2}).Direction())
	assert.Equal(t, "declining", (&ScoreTrend{Points: points, Slope: -0.8}).Direction())
	assert.Equal(t, "steady", (&ScoreTrend{Points: points, Slope: 0.01}).Direction())
}
