package main

import (
	"fmt"

	"gonum.org/v1/plot/vg"
)

const (
	hitColumn  = "CECacheDistinctHitCount"
	missColumn = "CECacheDistinctMissCount"
)

type HitCurve struct {
	Name        string
	Frequencies []float64
	// Plotted is Frequencies without the trailing run of repeated values,
	// except for the first element of that run.
	Plotted []float64
}

type CacheResult struct {
	Curves []HitCurve
	Mean   []float64
}

// HitFrequencies divides hits by accesses per iteration. Iterations without
// any access count as 0.
func HitFrequencies(hits, misses []float64) []float64 {
	result := make([]float64, len(hits))
	for i := range hits {
		accesses := hits[i] + misses[i]
		if accesses > 0 {
			result[i] = hits[i] / accesses
		}
	}
	return result
}

// TrimConverged drops the tail after the hit frequency stopped changing.
// The first element is never considered part of the run.
func TrimConverged(frequencies []float64) []float64 {
	end := len(frequencies) - 1
	for i := len(frequencies) - 2; i >= 1; i-- {
		if frequencies[i+1] != frequencies[i] {
			break
		}
		end = i
	}
	return frequencies[:end+1]
}

func CacheHits(env Env) (CacheResult, error) {
	frames, err := LoadQueryFrames(env.Root, IterationsSuffix, env.Filter, false, true)
	if err != nil {
		return CacheResult{}, err
	}
	Logger.Infof("iteration count: %v", frames[0].Frame.Len())
	result := CacheResult{}
	matrix := make([][]float64, 0, len(frames))
	for _, query := range frames {
		hits, err := query.Frame.Floats(hitColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", query.Name, err)
			continue
		}
		misses, err := query.Frame.Floats(missColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", query.Name, err)
			continue
		}
		if len(hits) == 0 {
			Logger.Infof("skipping %v: no iterations", query.Name)
			continue
		}
		frequencies := HitFrequencies(hits, misses)
		matrix = append(matrix, frequencies)
		result.Curves = append(result.Curves, HitCurve{
			Name:        query.Name,
			Frequencies: frequencies,
			Plotted:     TrimConverged(frequencies),
		})
	}
	if len(result.Curves) == 0 {
		return CacheResult{}, fmt.Errorf("%w: no query had cache counters", ErrNoInputs)
	}
	result.Mean = ColumnMeans(matrix)
	return result, nil
}

func PlotCacheHits(result CacheResult, path string) error {
	chart := NewChart("", "Iteration index", "CardinalityEstimationCache hit frequency")
	for _, curve := range result.Curves {
		col, err := chart.Line("", indexes(len(curve.Plotted)), curve.Plotted, vg.Points(0.5))
		if err != nil {
			return fmt.Errorf("%v: %w", curve.Name, err)
		}
		last := len(curve.Plotted) - 1
		err = chart.Scatter("", []float64{float64(last)}, []float64{curve.Plotted[last]}, vg.Points(1.5), col)
		if err != nil {
			return fmt.Errorf("%v: %w", curve.Name, err)
		}
	}
	n := len(result.Mean)
	meanColor, err := chart.Line("Average", indexes(n), result.Mean, vg.Points(1.4))
	if err != nil {
		return err
	}
	final := result.Mean[n-1]
	if err := chart.Annotate(float64(n-1), final, fmt.Sprintf("%.2f", final), meanColor); err != nil {
		return err
	}
	chart.X.Min, chart.X.Max = 0, float64(n)
	chart.Y.Min, chart.Y.Max = 0, 1
	return chart.Save(path)
}

func cacheMeasurements(result CacheResult) []Measurement {
	measurements := make([]Measurement, 0, len(result.Curves)+1)
	for _, curve := range result.Curves {
		measurements = append(measurements, Measurement{
			Name:        curve.Name,
			Measurement: "converged_hit_frequency",
			Value:       curve.Plotted[len(curve.Plotted)-1],
		})
	}
	measurements = append(measurements, Measurement{Name: "average", Measurement: "final_hit_frequency", Value: result.Mean[len(result.Mean)-1]})
	return measurements
}

func indexes(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
