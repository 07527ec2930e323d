// Package chart renders the derived chart series as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"chemviz-client/pkg/view"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Width  = 640
	Height = 420

	PieFile = "type_distribution.png"
	BarFile = "average_parameters.png"
)

var barColors = []drawing.Color{
	drawing.ColorFromHex("36a2eb"),
	drawing.ColorFromHex("ff6384"),
	drawing.ColorFromHex("4bc0c0"),
}

// SeriesSource yields the current chart series; ok is false when a chart
// has nothing to show.
type SeriesSource interface {
	PieSeries() (view.PieSeries, bool)
	BarSeries() (view.BarSeries, bool)
}

func RenderPie(w io.Writer, title string, s view.PieSeries) error {
	if len(s.Labels) == 0 {
		return fmt.Errorf("pie chart %q: no values", title)
	}

	values := make([]gochart.Value, len(s.Labels))
	for i, label := range s.Labels {
		values[i] = gochart.Value{Label: fmt.Sprintf("%s (%d)", label, s.Values[i]), Value: float64(s.Values[i])}
	}

	pie := gochart.PieChart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Values: values,
	}
	return pie.Render(gochart.PNG, w)
}

func RenderBar(w io.Writer, title string, s view.BarSeries) error {
	if len(s.Labels) == 0 {
		return fmt.Errorf("bar chart %q: no values", title)
	}

	lo, hi := 0.0, 0.0
	bars := make([]gochart.Value, len(s.Labels))
	for i, label := range s.Labels {
		v := s.Values[i]
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		bars[i] = gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{
				FillColor:   barColors[i%len(barColors)],
				StrokeColor: barColors[i%len(barColors)],
			},
		}
	}
	// go-chart cannot draw a zero-height range.
	if hi == lo {
		hi = lo + 1
	}

	bar := gochart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		BarWidth:   80,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi * 1.1},
		},
		Bars: bars,
	}
	return bar.Render(gochart.PNG, w)
}

// WriteFiles renders every available chart of src into dir and returns the
// written paths.
func WriteFiles(dir string, src SeriesSource) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	var written []string
	write := func(name string, render func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return err
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if pie, ok := src.PieSeries(); ok {
		if err := write(PieFile, func(w io.Writer) error { return RenderPie(w, "Equipment Type Distribution", pie) }); err != nil {
			return written, err
		}
	}
	if bar, ok := src.BarSeries(); ok {
		if err := write(BarFile, func(w io.Writer) error { return RenderBar(w, "Average Parameters", bar) }); err != nil {
			return written, err
		}
	}
	return written, nil
}
