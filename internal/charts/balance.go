// Package charts renders wallet balance history as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"portfel/internal/core"
)

var ErrNotEnoughPoints = errors.New("balance chart needs at least two points")

// BalanceChart draws a running-balance line. The zero value uses 1000x500.
type BalanceChart struct {
	Width  int
	Height int
}

// Render returns a PNG of points, which must be ordered oldest first.
func (g BalanceChart) Render(title, currency string, points []core.BalancePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughPoints
	}

	width, height := g.Width, g.Height
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 500
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	minY, maxY := points[0].Balance.InexactFloat64(), points[0].Balance.InexactFloat64()
	for i, p := range points {
		xValues[i] = p.Date
		yValues[i] = p.Balance.InexactFloat64()
		minY = min(minY, yValues[i])
		maxY = max(maxY, yValues[i])
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			return fmt.Sprintf("%.2f %s", v.(float64), currency)
		},
		Style: chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
	}
	// A flat line has no y-range of its own.
	if minY == maxY {
		yAxis.Range = &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontSize: 10, FontColor: chart.ColorBlack},
		},
		YAxis: yAxis,
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					FillColor:   chart.ColorBlue.WithAlpha(40),
				},
			},
		},
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render balance chart: %w", err)
	}
	return buf.Bytes(), nil
}
