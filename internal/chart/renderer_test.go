package chart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"trainpulse/pkg/contracts/domain"
)

// pngSignature is the fixed 8-byte header every PNG file starts with.
var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func sampleTrend() *domain.ScoreTrend {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.ScoreTrend{
		Points: []domain.TrendPoint{
			{Date: base, Score: 70},
			{Date: base.AddDate(0, 0, 3), Score: 78},
			{Date: base.AddDate(0, 0, 7), Score: 84},
		},
		Slope:     2.0,
		Intercept: 70,
	}
}

func TestRenderer_TrendChart(t *testing.T) {
	r := NewRenderer(nil, DefaultConfig())

	png, err := r.TrendChart(context.Background(), sampleTrend())
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngSignature, png[:8])
}

func TestRenderer_TrendChart_DatedAxis(t *testing.T) {
	r := NewRenderer(nil, DefaultConfig())
	trend := sampleTrend()

	graph := r.buildTrendChart(trend)

	require.Len(t, graph.Series, 2)
	scores, ok := graph.Series[0].(chart.TimeSeries)
	require.True(t, ok, "score series should be plotted against dates")
	assert.Equal(t, []time.Time{
		trend.Points[0].Date,
		trend.Points[1].Date,
		trend.Points[2].Date,
	}, scores.XValues)

	overlay, ok := graph.Series[1].(chart.TimeSeries)
	require.True(t, ok, "regression overlay should share the dated axis")
	assert.Equal(t, scores.XValues, overlay.XValues)
	// fitted value at day 7: 70 + 2*7
	assert.InDelta(t, 84, overlay.YValues[2], 1e-9)

	require.NotNil(t, graph.XAxis.ValueFormatter)
	assert.Equal(t, "01-08", graph.XAxis.ValueFormatter(trend.Points[2].Date))
}

func TestRenderer_TrendChart_NilTrend(t *testing.T) {
	r := NewRenderer(nil, DefaultConfig())

	png, err := r.TrendChart(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestRenderer_TrendChart_SinglePoint(t *testing.T) {
	r := NewRenderer(nil, DefaultConfig())

	trend := &domain.ScoreTrend{
		Points:    []domain.TrendPoint{{Date: time.Now(), Score: 90}},
		Intercept: 90,
	}
	png, err := r.TrendChart(context.Background(), trend)
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestRenderer_CompletionChart(t *testing.T) {
	r := NewRenderer(nil, Config{Width: 640, Height: 320})

	modules := []domain.ModuleStats{
		{Module: "Go Basics", CompletionRate: 80},
		{Module: "Testing", CompletionRate: 55.5},
	}

	png, err := r.CompletionChart(context.Background(), modules)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, pngSignature, png[:8])
}

func TestRenderer_CompletionChart_Empty(t *testing.T) {
	r := NewRenderer(nil, DefaultConfig())

	png, err := r.CompletionChart(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, png)
}
