package explain

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RankedBarChart renders a horizontal bar chart with the largest value at
// the top and returns the PNG bytes.
func RankedBarChart(title, xLabel string, labels []string, values []float64) ([]byte, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("got %d labels for %d values", len(labels), len(values))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("nothing to plot")
	}

	// nominal axes draw bottom-up, so ascending order puts the largest on top
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for k := i; k > 0 && values[order[k]] < values[order[k-1]]; k-- {
			order[k], order[k-1] = order[k-1], order[k]
		}
	}
	sortedValues := make(plotter.Values, len(values))
	sortedLabels := make([]string, len(values))
	for pos, i := range order {
		sortedValues[pos] = values[i]
		sortedLabels[pos] = labels[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel

	bars, err := plotter.NewBarChart(sortedValues, vg.Points(15))
	if err != nil {
		return nil, fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(sortedLabels...)

	writer, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RankingChart renders an attribution ranking.
func RankingChart(title string, ranking []Attribution) ([]byte, error) {
	labels := make([]string, len(ranking))
	values := make([]float64, len(ranking))
	for i, a := range ranking {
		labels[i] = a.Feature
		values[i] = a.MeanAbs
	}
	return RankedBarChart(title, "mean(|attribution|)", labels, values)
}
