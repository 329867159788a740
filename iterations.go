package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
)

type ReferenceMode string

const (
	ReferenceBaseline       ReferenceMode = "baseline"
	ReferenceFirstIteration ReferenceMode = "first-iteration"
)

type IterationsOptions struct {
	Reference      ReferenceMode
	BaselinePath   string
	DurationColumn string
	HashColumn     string
	Legacy         bool
}

func DefaultIterationsOptions() IterationsOptions {
	return IterationsOptions{
		Reference:      ReferenceBaseline,
		BaselinePath:   BaselineFile,
		DurationColumn: "RankZeroPlanExecutionDuration",
		HashColumn:     "RankZeroPlanHash",
	}
}

// QueryCurve is the plotted part of one query's normalized durations.
type QueryCurve struct {
	Name       string
	Indices    []float64
	Normalized []float64
	// Converged is set when a plan hash equal to the final plan was seen
	// and the duration at that iteration was not a timeout.
	Converged        bool
	ConvergenceIdx   int
	ConvergenceValue float64
}

type IterationsResult struct {
	Curves  []QueryCurve
	Average []float64
}

// averager accumulates max(normalized, 1) per iteration over all
// non-timed-out measurements.
type averager struct {
	count       []int
	accumulated []float64
}

func newAverager(n int) *averager {
	return &averager{count: make([]int, n), accumulated: make([]float64, n)}
}

func (a *averager) add(idx int, normalized float64) {
	if !(normalized > 0) {
		return
	}
	a.count[idx]++
	a.accumulated[idx] += math.Max(normalized, 1)
}

func (a *averager) average() []float64 {
	result := make([]float64, len(a.count))
	for i, count := range a.count {
		if count > 0 {
			result[i] = a.accumulated[i] / float64(count)
		}
	}
	return result
}

// NormalizeQuery walks one query's iterations. The curve stops at the first
// iteration running the final plan; the averager sees every iteration.
func NormalizeQuery(name string, durations []float64, hashes []string, reference float64, warnFaster bool, avg *averager) QueryCurve {
	curve := QueryCurve{Name: name}
	lastHash := hashes[len(hashes)-1]
	lowest := 1.0
	plotting := true
	for idx, duration := range durations {
		if math.IsNaN(duration) {
			duration = 0
		}
		normalized := duration / reference
		if plotting {
			if duration == 0 {
				curve.Normalized = append(curve.Normalized, 1)
			} else {
				curve.Normalized = append(curve.Normalized, normalized)
			}
			if warnFaster && normalized > 0 && normalized < lowest {
				Logger.Warnf("%v faster than baseline?!? (%v)", name, normalized)
				lowest = normalized
			}
			curve.Indices = append(curve.Indices, float64(idx))
		}
		avg.add(idx, normalized)
		if plotting && hashes[idx] == lastHash {
			Logger.Infof("%v converged at %v", name, normalized)
			if normalized != 0 {
				curve.Converged = true
				curve.ConvergenceIdx = idx
				curve.ConvergenceValue = normalized
			}
			plotting = false
		}
	}
	return curve
}

func firstPositive(values []float64) float64 {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}

func Iterations(env Env, options IterationsOptions) (IterationsResult, error) {
	if options.Legacy {
		return legacyIterations(env, options)
	}
	frames, err := LoadQueryFrames(env.Root, IterationsSuffix, env.Filter, true, true)
	if err != nil {
		return IterationsResult{}, err
	}
	n := frames[0].Frame.Len()
	Logger.Infof("iteration count: %v", n)
	if n == 0 {
		return IterationsResult{}, fmt.Errorf("%w: iteration files are empty", ErrNoInputs)
	}

	var baseline map[string]float64
	if options.Reference == ReferenceBaseline {
		baseline, err = LoadBaseline(options.BaselinePath)
		if err != nil {
			return IterationsResult{}, err
		}
	}

	avg := newAverager(n)
	result := IterationsResult{}
	for _, query := range frames {
		durations, err := query.Frame.Floats(options.DurationColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", query.Name, err)
			continue
		}
		hashes, err := query.Frame.Strings(options.HashColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", query.Name, err)
			continue
		}
		var reference float64
		switch options.Reference {
		case ReferenceBaseline:
			reference = baseline[query.Name]
		case ReferenceFirstIteration:
			reference = firstPositive(durations)
		default:
			return IterationsResult{}, fmt.Errorf("unknown reference mode %q", options.Reference)
		}
		if !(reference > 0) {
			Logger.Infof("skipping %v: no reference duration", query.Name)
			continue
		}
		curve := NormalizeQuery(query.Name, durations, hashes, reference, options.Reference == ReferenceBaseline, avg)
		result.Curves = append(result.Curves, curve)
	}
	if len(result.Curves) == 0 {
		return IterationsResult{}, fmt.Errorf("%w: no query had a reference duration", ErrNoInputs)
	}
	result.Average = avg.average()
	return result, nil
}

// legacyIterations normalizes Duration against the first iteration, capped
// at 2, over plain *.csv files.
func legacyIterations(env Env, options IterationsOptions) (IterationsResult, error) {
	files, err := ListFiles(env.Root, ".csv")
	if err != nil {
		return IterationsResult{}, err
	}
	column := options.DurationColumn
	if column == DefaultIterationsOptions().DurationColumn {
		column = "Duration"
	}
	var accumulated []float64
	result := IterationsResult{}
	for _, file := range files {
		name := filepath.Base(file)
		Logger.Infof("processing %v", name)
		frame, err := ReadFrame(file)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		if !frame.Has(column) {
			Logger.Infof("skipping %v", name)
			continue
		}
		durations, err := frame.Floats(column)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		if accumulated == nil {
			accumulated = make([]float64, len(durations))
		} else if len(accumulated) != len(durations) {
			Logger.Warnf("skipping %v: %v", name, fmt.Errorf("%w: %v rows, expected %v", ErrIterationMismatch, len(durations), len(accumulated)))
			continue
		}
		if len(durations) == 0 || !(durations[0] > 0) {
			Logger.Infof("skipping %v", name)
			continue
		}
		curve := QueryCurve{Name: name}
		for idx, duration := range durations {
			normalized := math.Min(2, duration/durations[0])
			if math.IsNaN(normalized) {
				normalized = 0
			}
			curve.Indices = append(curve.Indices, float64(idx))
			curve.Normalized = append(curve.Normalized, normalized)
			accumulated[idx] += normalized
		}
		result.Curves = append(result.Curves, curve)
	}
	if len(result.Curves) == 0 {
		return IterationsResult{}, fmt.Errorf("%w in %v", ErrNoInputs, env.Root)
	}
	result.Average = make([]float64, len(accumulated))
	for i, value := range accumulated {
		result.Average[i] = value / float64(len(result.Curves))
	}
	return result, nil
}

// DatasetName derives the plot suffix from the results directory: the
// parent directory, or the directory itself when given with a trailing
// slash.
func DatasetName(root string) string {
	dir, _ := filepath.Split(root)
	dir = strings.TrimRight(dir, string(filepath.Separator))
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "iterations"
	}
	return name
}

func PlotIterations(result IterationsResult, path string, reference string) error {
	chart := NewChart("", "Query Iteration", "Performance relative to "+reference)
	for _, curve := range result.Curves {
		col, err := chart.Line("", curve.Indices, curve.Normalized, vg.Points(0.2))
		if err != nil {
			return fmt.Errorf("%v: %w", curve.Name, err)
		}
		if curve.Converged {
			err = chart.Scatter("", []float64{float64(curve.ConvergenceIdx)}, []float64{curve.ConvergenceValue}, vg.Points(1), col)
			if err != nil {
				return fmt.Errorf("%v: %w", curve.Name, err)
			}
		}
	}
	if _, err := chart.Line("Average", indexes(len(result.Average)), result.Average, vg.Points(1)); err != nil {
		return err
	}
	chart.HLine(1)
	chart.Y.Min = -0.1
	chart.Y.Max = 2.5
	return chart.Save(path)
}

func iterationMeasurements(result IterationsResult) []Measurement {
	measurements := make([]Measurement, 0, 2*len(result.Curves)+1)
	for _, curve := range result.Curves {
		if curve.Converged {
			measurements = append(measurements,
				Measurement{Name: curve.Name, Measurement: "convergence_iteration", Value: float64(curve.ConvergenceIdx)},
				Measurement{Name: curve.Name, Measurement: "convergence_normalized", Value: curve.ConvergenceValue},
			)
		}
	}
	if len(result.Average) > 0 {
		measurements = append(measurements, Measurement{Name: "average", Measurement: "final_normalized", Value: result.Average[len(result.Average)-1]})
	}
	return measurements
}
