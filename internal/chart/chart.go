// Package chart renders portfolio history and distribution as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cointether/internal/aggregate"
	"cointether/internal/history"
)

// RenderHistory renders the aggregate value of an owner over time as a line chart.
func RenderHistory(samples []history.Sample, currency string) ([]byte, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}

	xValues := make([]time.Time, len(samples))
	yValues := make([]float64, len(samples))
	minY, maxY := samples[0].Value.InexactFloat64(), samples[0].Value.InexactFloat64()
	for i, s := range samples {
		xValues[i] = s.Timestamp
		yValues[i] = s.Value.InexactFloat64()
		minY = min(minY, yValues[i])
		maxY = max(maxY, yValues[i])
	}
	if !xValues[len(xValues)-1].After(xValues[0]) {
		return nil, fmt.Errorf("samples span no time")
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.0f %s", f, currency)
			}
			return ""
		},
	}
	// go-chart refuses a flat y range
	if minY == maxY {
		yAxis.Range = &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
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
					return chart.TimeFromFloat64(t).Format("Jan 02 15:04")
				}
				return ""
			},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Total",
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
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDistribution renders each coin's share of the portfolio as a pie chart.
func RenderDistribution(slices []aggregate.Slice) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if !s.Value.IsPositive() {
			continue
		}
		values = append(values, chart.Value{
			Value: s.Value.InexactFloat64(),
			Label: fmt.Sprintf("%s %s%%", s.Symbol, s.Share.Shift(2).StringFixed(1)),
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no priced holdings to chart")
	}

	pie := chart.PieChart{
		Title:  "Holdings Distribution",
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
