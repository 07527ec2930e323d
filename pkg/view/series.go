// Package view derives chart series and table rows from the active dataset.
// Every function here is pure; Memo adds caching keyed on the dataset
// generation.
package view

import "chemviz-client/internal/model"

const (
	LabelFlowrate    = "Flowrate"
	LabelPressure    = "Pressure"
	LabelTemperature = "Temperature"
)

type PieSeries struct {
	Labels []string
	Values []int
}

type BarSeries struct {
	Labels []string
	Values []float64
}

// ToPieSeries returns the type distribution in the key order the server sent.
// ok is false for an absent or empty distribution: render nothing.
func ToPieSeries(dist model.TypeDistribution) (PieSeries, bool) {
	if len(dist) == 0 {
		return PieSeries{}, false
	}
	s := PieSeries{
		Labels: make([]string, len(dist)),
		Values: make([]int, len(dist)),
	}
	for i, tc := range dist {
		s.Labels[i] = tc.Type
		s.Values[i] = tc.Count
	}
	return s, true
}

// ToBarSeries returns the three averages. ok is false for a nil summary.
func ToBarSeries(summary *model.Summary) (BarSeries, bool) {
	if summary == nil {
		return BarSeries{}, false
	}
	return BarSeries{
		Labels: []string{LabelFlowrate, LabelPressure, LabelTemperature},
		Values: []float64{summary.AvgFlowrate, summary.AvgPressure, summary.AvgTemperature},
	}, true
}
