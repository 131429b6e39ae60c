package domain

import (
	"time"
)

// ModuleStats holds the aggregates computed for a single training module.
type ModuleStats struct {
	Module         string  `json:"module" csv:"Module"`
	CompletionRate float64 `json:"completion_rate" csv:"CompletionRate"` // percent, 0-100
	AverageScore   float64 `json:"average_score" csv:"AverageScore"`
	Participants   int     `json:"participants" csv:"Participants"`
	Records        int     `json:"records" csv:"Records"`
	ScoredRecords  int     `json:"scored_records" csv:"ScoredRecords"`
}

// ParticipantStats holds the aggregates computed for a single participant.
type ParticipantStats struct {
	Name             string  `json:"name" csv:"Name"`
	CompletionRate   float64 `json:"completion_rate" csv:"CompletionRate"` // percent, 0-100
	AverageScore     float64 `json:"average_score" csv:"AverageScore"`
	ModulesCompleted int     `json:"modules_completed" csv:"ModulesCompleted"`
	Records          int     `json:"records" csv:"Records"`

	// Descriptive score statistics over completed, scored records.
	MedianScore float64 `json:"median_score" csv:"MedianScore"`
	ScoreStdDev float64 `json:"score_std_dev" csv:"ScoreStdDev"`
	MinScore    float64 `json:"min_score" csv:"MinScore"`
	MaxScore    float64 `json:"max_score" csv:"MaxScore"`
}

// TopPerformer pairs a participant with the stats that qualified them.
type TopPerformer struct {
	Rank  int              `json:"rank"`
	Stats ParticipantStats `json:"stats"`
}

// TrendPoint is one dated score observation in the trend series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// ScoreTrend is the chronologically ordered score series plus the fitted
// regression line. A nil *ScoreTrend means no record had both a date and a
// score, and the report omits the trend section.
type ScoreTrend struct {
	Points    []TrendPoint `json:"points"`
	Slope     float64      `json:"slope"` // score units per day
	Intercept float64      `json:"intercept"`
}

// Direction describes the fitted trend in words for the report summary.
func (t *ScoreTrend) Direction() string {
	switch {
	case t == nil || len(t.Points) < 2:
		return "insufficient data"
	case t.Slope > 0.05:
		return "improving"
	case t.Slope < -0.05:
		return "declining"
	default:
		return "steady"
	}
}

// ProgramSummary holds the whole-program aggregates shown at the top of the
// report.
type ProgramSummary struct {
	Modules               int     `json:"modules"`
	Participants          int     `json:"participants"`
	Records               int     `json:"records"`
	OverallCompletionRate float64 `json:"overall_completion_rate"`
	OverallAverageScore   float64 `json:"overall_average_score"`
}

// Analysis is the complete output of the analytics stage and the sole input
// to chart rendering and report assembly.
type Analysis struct {
	Summary          ProgramSummary     `json:"summary"`
	ModuleStats      []ModuleStats      `json:"module_stats"`      // sorted by module name
	ParticipantStats []ParticipantStats `json:"participant_stats"` // sorted by participant name
	TopPerformers    []TopPerformer     `json:"top_performers"`
	Trend            *ScoreTrend        `json:"trend,omitempty"`
	GeneratedAt      time.Time          `json:"generated_at"`
}
