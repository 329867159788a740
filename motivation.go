package main

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	maxPlottedRank  = 300
	maxPlottedRatio = 2.5
)

// RankOutcome describes how much better than the top-ranked plan the best
// measured plan of one query was.
type RankOutcome struct {
	File       string
	BestRank   int
	Ratio      float64
	Inversions int
	Disorder   float64
}

// EvaluateRanks looks at durations of plans in optimizer rank order. Zero
// durations are timeouts and never win.
func EvaluateRanks(file string, durations []float64) (RankOutcome, bool) {
	if len(durations) == 0 || !(durations[0] > 0) {
		return RankOutcome{}, false
	}
	base := durations[0]
	best, bestIdx := base, 0
	for idx, duration := range durations {
		if duration == 0 {
			continue
		}
		if duration < best {
			best, bestIdx = duration, idx
		}
	}
	measured := Positive(durations)
	inversions := CountInversions(measured)
	return RankOutcome{
		File:       file,
		BestRank:   bestIdx,
		Ratio:      base / best,
		Inversions: inversions,
		Disorder:   Disorder(inversions, len(measured)),
	}, true
}

func Motivation(env Env, files []string) ([]RankOutcome, error) {
	if len(files) == 0 {
		var err error
		files, err = ListFiles(env.Root, ".csv")
		if err != nil {
			return nil, err
		}
	}
	outcomes := make([]RankOutcome, 0, len(files))
	for _, file := range files {
		path := file
		if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
			path = filepath.Join(env.Root, file)
		}
		name := filepath.Base(path)
		frame, err := ReadFrame(path)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		durations, err := frame.Floats("Duration")
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		outcome, ok := EvaluateRanks(name, durations)
		if !ok {
			Logger.Infof("not considering %v, it has timeout for its first plan or no measurements", name)
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoInputs, env.Root)
	}
	return outcomes, nil
}

func WriteRankOutcomes(w io.Writer, outcomes []RankOutcome) {
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%v: BestPlan: %v, Ratio: %v, Inversions: %v (%.3f)\n",
			outcome.File, outcome.BestRank, outcome.Ratio, outcome.Inversions, outcome.Disorder)
	}
}

func PlotRankOutcomes(outcomes []RankOutcome, path string) error {
	xs := make([]float64, len(outcomes))
	ys := make([]float64, len(outcomes))
	for i, outcome := range outcomes {
		xs[i] = float64(min(outcome.BestRank, maxPlottedRank))
		ys[i] = math.Min(maxPlottedRatio, outcome.Ratio)
	}
	chart := NewChart("", "Rank of best plan", "Speedup over rank 0")
	chart.Add(plotter.NewGrid())
	if err := chart.Scatter("", xs, ys, vg.Points(2), color.RGBA{B: 255, A: 255}); err != nil {
		return err
	}
	return chart.Save(path)
}

func rankMeasurements(outcomes []RankOutcome) []Measurement {
	measurements := make([]Measurement, 0, 3*len(outcomes))
	for _, outcome := range outcomes {
		measurements = append(measurements,
			Measurement{Name: outcome.File, Measurement: "best_rank", Value: float64(outcome.BestRank)},
			Measurement{Name: outcome.File, Measurement: "ratio", Value: outcome.Ratio},
			Measurement{Name: outcome.File, Measurement: "disorder", Value: outcome.Disorder},
		)
	}
	return measurements
}
