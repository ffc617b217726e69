// Package chart renders the history and forecast line charts as SVG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"
	"time"

	"MarketLens/internal/model"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrEmptySeries = errors.New("cannot chart an empty series")

const (
	width  = 1000
	height = 500
)

var (
	historyColor  = drawing.ColorFromHex("1f77b4")
	forecastColor = drawing.ColorFromHex("ff7f0e")
)

// History renders closing price against date.
func History(series *model.HistoricalSeries, symbol string) ([]byte, error) {
	if series.Empty() {
		return nil, ErrEmptySeries
	}
	xs, ys := closesXY(series)
	graph := newGraph(title(symbol, "closing price"))
	graph.Series = []chart.Series{
		chart.TimeSeries{
			Name:    "closing price",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: historyColor, StrokeWidth: 1.5},
		},
	}
	padFlatRanges(&graph, xs, ys)
	return render(&graph)
}

// Forecast renders the history with the forecast overlaid as a dashed
// line. The forecast line starts at the last historical close so the two
// series join without overlapping.
func Forecast(series *model.HistoricalSeries, points []model.ForecastPoint, symbol string) ([]byte, error) {
	if series.Empty() {
		return nil, ErrEmptySeries
	}
	if len(points) == 0 {
		return nil, errors.New("cannot chart an empty forecast")
	}
	xs, ys := closesXY(series)

	last := series.Last()
	fx := make([]time.Time, 0, len(points)+1)
	fy := make([]float64, 0, len(points)+1)
	fx = append(fx, last.Time)
	fy = append(fy, last.Close)
	for _, p := range points {
		fx = append(fx, p.Date)
		fy = append(fy, p.Value)
	}

	graph := newGraph(title(symbol, "7-day forecast"))
	graph.Series = []chart.Series{
		chart.TimeSeries{
			Name:    "historical price",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: historyColor, StrokeWidth: 1.5},
		},
		chart.TimeSeries{
			Name:    "forecast",
			XValues: fx,
			YValues: fy,
			Style: chart.Style{
				StrokeColor:     forecastColor,
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		},
	}
	padFlatRanges(&graph, append(xs, fx...), append(ys, fy...))
	return render(&graph)
}

// title builds a chart title from the user-supplied symbol. The SVG
// renderer writes text verbatim, so the symbol is escaped here.
func title(symbol, caption string) string {
	return html.EscapeString(symbol) + " " + caption
}

func newGraph(name string) chart.Chart {
	return chart.Chart{
		Title:  name,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Price",
		},
	}
}

func render(graph *chart.Chart) ([]byte, error) {
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", graph.Title, err)
	}
	return buf.Bytes(), nil
}

// padFlatRanges gives the axes an explicit span when every value is the
// same, since the renderer refuses zero-width ranges.
func padFlatRanges(graph *chart.Chart, xs []time.Time, ys []float64) {
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	if minY == maxY {
		pad := math.Max(1, math.Abs(minY)*0.05)
		graph.YAxis.Range = &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad}
	}

	minX, maxX := xs[0], xs[0]
	for _, x := range xs {
		if x.Before(minX) {
			minX = x
		}
		if x.After(maxX) {
			maxX = x
		}
	}
	if minX.Equal(maxX) {
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(minX.AddDate(0, 0, -1)),
			Max: chart.TimeToFloat64(maxX.AddDate(0, 0, 1)),
		}
	}
}

func closesXY(series *model.HistoricalSeries) ([]time.Time, []float64) {
	xs := make([]time.Time, series.Len())
	ys := make([]float64, series.Len())
	for i, p := range series.Points() {
		xs[i] = p.Date
		ys[i] = p.Close
	}
	return xs, ys
}
