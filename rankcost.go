package main

import (
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot/vg"
)

type CostSeries struct {
	Label string
	Ranks []float64
	Costs []float64
}

// CostSeriesOf splits a frame into one series per column after the first,
// which holds the plan rank. Points that a log axis cannot show and cells
// that did not parse to a number are dropped.
func CostSeriesOf(frame *Frame) ([]CostSeries, error) {
	columns := frame.Columns()
	if len(columns) < 2 {
		return nil, fmt.Errorf("%w: need a rank column and at least one cost column", ErrMissingColumn)
	}
	ranks, err := frame.FloatsAt(0)
	if err != nil {
		return nil, err
	}
	series := make([]CostSeries, 0, len(columns)-1)
	for i := 1; i < len(columns); i++ {
		costs, err := frame.FloatsAt(i)
		if err != nil {
			return nil, err
		}
		s := CostSeries{Label: columns[i]}
		for row, cost := range costs {
			if finite(ranks[row]) && finite(cost) && cost > 0 {
				s.Ranks = append(s.Ranks, ranks[row])
				s.Costs = append(s.Costs, cost)
			}
		}
		series = append(series, s)
	}
	return series, nil
}

// RankCost renders every csv (or the given files) as cost-by-rank curves on a
// log scale, one svg per input. It returns the written plot paths.
func RankCost(env Env, files []string) ([]string, error) {
	if len(files) == 0 {
		var err error
		files, err = ListFiles(env.Root, ".csv")
		if err != nil {
			return nil, err
		}
	}
	written := make([]string, 0, len(files))
	var measurements []Measurement
	for _, file := range files {
		name := filepath.Base(file)
		frame, err := ReadFrame(file)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		series, err := CostSeriesOf(frame)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		points := 0
		for _, s := range series {
			points += len(s.Costs)
		}
		if points == 0 {
			Logger.Warnf("skipping %v: no positive costs", name)
			continue
		}
		path := env.OutPath(name + ".svg")
		if err := plotCostSeries(series, path); err != nil {
			Logger.Warnf("skipping %v: %v", name, err)
			continue
		}
		written = append(written, path)
		measurements = append(measurements, costMeasurements(name, series)...)
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoInputs, env.Root)
	}
	return written, env.Record("rank-cost", measurements)
}

func plotCostSeries(series []CostSeries, path string) error {
	chart := NewChart("", "rank", "cost")
	chart.LogY()
	for _, s := range series {
		if _, err := chart.Line(s.Label, s.Ranks, s.Costs, vg.Points(0.6)); err != nil {
			return err
		}
	}
	return chart.Save(path)
}

// costMeasurements publishes the cheapest plan of every series and the rank
// it was found at.
func costMeasurements(file string, series []CostSeries) []Measurement {
	measurements := make([]Measurement, 0, 2*len(series))
	for _, s := range series {
		cost, idx, ok := MinPositive(s.Costs)
		if !ok {
			continue
		}
		measurements = append(measurements,
			Measurement{Name: file + "/" + s.Label, Measurement: "min_cost", Value: cost},
			Measurement{Name: file + "/" + s.Label, Measurement: "min_cost_rank", Value: s.Ranks[idx]},
		)
	}
	return measurements
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
