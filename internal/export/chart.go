package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// ChartWriter renders the history series as a PNG line chart on disk.
type ChartWriter struct {
	path string
}

// NewChartWriter creates a writer targeting the given file path.
func NewChartWriter(path string) *ChartWriter {
	return &ChartWriter{path: path}
}

// Write renders the report's history to a PNG. Reports with fewer than two
// points cannot be drawn as a line and are skipped.
func (w *ChartWriter) Write(_ context.Context, report Report) error {
	if len(report.History) < 2 {
		return nil
	}

	png, err := renderHistoryChart(report.History)
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.path, png, 0o644); err != nil {
		return fmt.Errorf("writing chart %s: %w", w.path, err)
	}
	return nil
}

// renderHistoryChart renders the daily value series as PNG bytes.
func renderHistoryChart(points []domain.HistoricalPoint) ([]byte, error) {
	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date.Time()
		yValues[i] = toFloat(p.Value)
	}

	graph := chart.Chart{
		Title:  "Portfolio Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Value",
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2.5,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}
