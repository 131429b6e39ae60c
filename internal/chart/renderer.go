// Package chart renders analysis aggregates to PNG images for embedding in
// the PDF report. Rendering happens entirely in memory; callers decide
// whether the bytes also land on disk.
package chart

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// Config holds chart rendering dimensions.
type Config struct {
	Width  int
	Height int
}

// DefaultConfig mirrors the report's landscape chart area.
func DefaultConfig() Config {
	return Config{Width: 1000, Height: 500}
}

// Renderer turns analysis aggregates into PNG charts.
type Renderer struct {
	logger *slog.Logger
	config Config
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default.
func NewRenderer(logger *slog.Logger, config Config) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Width <= 0 || config.Height <= 0 {
		config = DefaultConfig()
	}
	return &Renderer{logger: logger, config: config}
}

var (
	scoreColor = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	trendColor = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 255}
)

// TrendChart renders the score trend line with its fitted regression
// overlay. Returns nil bytes without error when the trend is missing or has
// fewer than two points; the report omits the section in that case.
func (r *Renderer) TrendChart(ctx context.Context, trend *domain.ScoreTrend) ([]byte, error) {
	if trend == nil || len(trend.Points) < 2 {
		r.logger.WarnContext(ctx, "skipping trend chart", slog.Bool("trend_present", trend != nil))
		return nil, nil
	}

	graph := r.buildTrendChart(trend)

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeStorage, "failed to render trend chart", err)
	}

	r.logger.DebugContext(ctx, "rendered trend chart",
		slog.Int("points", len(trend.Points)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// buildTrendChart plots scores against their dates with MM-DD axis labels.
// The regression overlay is evaluated at the same dates from the fitted
// slope, which is expressed in points per day since the first score.
func (r *Renderer) buildTrendChart(trend *domain.ScoreTrend) chart.Chart {
	times := make([]time.Time, len(trend.Points))
	ys := make([]float64, len(trend.Points))
	fitted := make([]float64, len(trend.Points))
	origin := trend.Points[0].Date
	for i, p := range trend.Points {
		days := p.Date.Sub(origin).Hours() / 24
		times[i] = p.Date
		ys[i] = p.Score
		fitted[i] = trend.Intercept + trend.Slope*days
	}

	return chart.Chart{
		Title:  "Training Score Trend Over Time",
		Width:  r.config.Width,
		Height: r.config.Height,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02"),
		},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Scores",
				XValues: times,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: scoreColor,
					DotColor:    scoreColor,
					DotWidth:    4,
				},
			},
			chart.TimeSeries{
				Name:    "Trend",
				XValues: times,
				YValues: fitted,
				Style: chart.Style{
					StrokeColor:     trendColor,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}
}

// CompletionChart renders per-module completion rates as a bar chart.
func (r *Renderer) CompletionChart(ctx context.Context, modules []domain.ModuleStats) ([]byte, error) {
	if len(modules) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, len(modules))
	for i, m := range modules {
		bars[i] = chart.Value{
			Label: m.Module,
			Value: m.CompletionRate,
			Style: chart.Style{FillColor: scoreColor, StrokeColor: scoreColor},
		}
	}

	graph := chart.BarChart{
		Title:    "Module Completion Rate",
		Width:    r.config.Width,
		Height:   r.config.Height,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeStorage, "failed to render completion chart", err)
	}

	r.logger.DebugContext(ctx, "rendered completion chart",
		slog.Int("modules", len(modules)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
