package main

import (
	"fmt"
	"io"
	"path/filepath"

	"gonum.org/v1/plot/vg"
)

const (
	planningColumn  = "PlanningDuration"
	executionColumn = "RankZeroPlanExecutionDuration"
	microsInMilli   = 1000
)

// PlanningDurations averages PlanningDuration per query over the cells that
// hold a number.
func PlanningDurations(root string, filter Filter) (map[string]float64, error) {
	frames, err := LoadQueryFrames(root, "."+IterationsSuffix, filter, false, false)
	if err != nil {
		return nil, err
	}
	result := make(map[string]float64, len(frames))
	for _, query := range frames {
		if !query.Frame.Has(planningColumn) {
			Logger.Infof("skipping %v: no %v column", filepath.Base(query.Path), planningColumn)
			continue
		}
		durations, err := query.Frame.Floats(planningColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", filepath.Base(query.Path), err)
			continue
		}
		measured := make([]float64, 0, len(durations))
		for _, duration := range durations {
			if finite(duration) {
				measured = append(measured, duration)
			}
		}
		if len(measured) == 0 {
			Logger.Warnf("skipping %v: no planning duration measured", filepath.Base(query.Path))
			continue
		}
		result[query.Name] = Sum(measured) / float64(len(measured))
	}
	return result, nil
}

// ExecutionDurations takes the fastest non-timed-out execution per query,
// looking at the first limit iterations when limit > 0. Queries whose runs
// all timed out map to 0.
func ExecutionDurations(root string, filter Filter, limit int) (map[string]float64, error) {
	frames, err := LoadQueryFrames(root, "."+IterationsSuffix, filter, false, false)
	if err != nil {
		return nil, err
	}
	result := make(map[string]float64, len(frames))
	for _, query := range frames {
		if !query.Frame.Has(executionColumn) {
			Logger.Infof("skipping %v: no %v column", filepath.Base(query.Path), executionColumn)
			continue
		}
		durations, err := query.Frame.Floats(executionColumn)
		if err != nil {
			Logger.Warnf("skipping %v: %v", filepath.Base(query.Path), err)
			continue
		}
		if limit > 0 && len(durations) > limit {
			durations = durations[:limit]
		}
		fastest, _, ok := MinPositive(durations)
		if !ok {
			Logger.Infof("%v: all executions timed out", query.Name)
		}
		result[query.Name] = fastest
	}
	return result, nil
}

func sortedNames(durations map[string]float64) []string {
	names := make([]string, 0, len(durations))
	for name := range durations {
		names = append(names, name)
	}
	SortQueryNames(names)
	return names
}

type PlanningComparison struct {
	Names    []string
	Planning []float64
	Baseline []float64
	Adaptive []float64
}

// ComparePlanning lines up planning time with baseline and adaptive
// execution time (all in ms) for the queries present in the planning run.
func ComparePlanning(planningDir, baselineDir, adaptiveDir string, filter Filter) (PlanningComparison, error) {
	planning, err := PlanningDurations(planningDir, filter)
	if err != nil {
		return PlanningComparison{}, fmt.Errorf("planning: %w", err)
	}
	baseline, err := ExecutionDurations(baselineDir, filter, 0)
	if err != nil {
		return PlanningComparison{}, fmt.Errorf("baseline: %w", err)
	}
	adaptive, err := ExecutionDurations(adaptiveDir, filter, 0)
	if err != nil {
		return PlanningComparison{}, fmt.Errorf("adaptive: %w", err)
	}
	comparison := PlanningComparison{}
	for _, name := range sortedNames(planning) {
		b, okB := baseline[name]
		a, okA := adaptive[name]
		if !okB || !okA {
			Logger.Warnf("skipping %v: missing execution measurements", name)
			continue
		}
		comparison.Names = append(comparison.Names, name)
		comparison.Planning = append(comparison.Planning, planning[name]/microsInMilli)
		comparison.Baseline = append(comparison.Baseline, b/microsInMilli)
		comparison.Adaptive = append(comparison.Adaptive, a/microsInMilli)
	}
	if len(comparison.Names) == 0 {
		return PlanningComparison{}, fmt.Errorf("%w: no query present in all runs", ErrNoInputs)
	}
	return comparison, nil
}

func PlotPlanning(comparison PlanningComparison, plans int, path string) error {
	chart := NewChart("", "", "Time in ms")
	err := chart.Bars(comparison.Names, []BarGroup{
		{Label: fmt.Sprintf("Generating %v plans (avg)", plans), Values: comparison.Planning},
		{Label: "Execution - Baseline (min)", Values: comparison.Baseline},
		{Label: "Execution - Adaptive (min)", Values: comparison.Adaptive},
	}, vg.Points(2))
	if err != nil {
		return err
	}
	chart.X.Tick.Label.Font.Size = vg.Points(3)
	return chart.Save(path)
}

type PlanningRatio struct {
	Name      string
	Planning  float64
	Execution float64
	Ratio     float64
}

func PlanningRatios(planningDir, baselineDir string, filter Filter, limit int) ([]PlanningRatio, error) {
	planning, err := PlanningDurations(planningDir, filter)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}
	execution, err := ExecutionDurations(baselineDir, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	ratios := make([]PlanningRatio, 0, len(planning))
	for _, name := range sortedNames(planning) {
		e, ok := execution[name]
		if !ok || !(e > 0) {
			Logger.Warnf("skipping %v: no execution duration", name)
			continue
		}
		p := planning[name]
		ratios = append(ratios, PlanningRatio{Name: name, Planning: p, Execution: e, Ratio: p / e})
	}
	if len(ratios) == 0 {
		return nil, fmt.Errorf("%w: no query present in both runs", ErrNoInputs)
	}
	return ratios, nil
}

func WritePlanningRatios(w io.Writer, ratios []PlanningRatio) {
	for _, ratio := range ratios {
		fmt.Fprintf(w, "%v: %v VS %v\n", ratio.Name, ratio.Planning, ratio.Execution)
	}
}

func PlotPlanningRatios(ratios []PlanningRatio, path string) error {
	names := make([]string, len(ratios))
	values := make([]float64, len(ratios))
	for i, ratio := range ratios {
		names[i] = ratio.Name
		values[i] = ratio.Ratio
	}
	chart := NewChart("", "", "Ratio")
	err := chart.Bars(names, []BarGroup{{Label: "Planning / Execution Ratio - Generating 1 Plan", Values: values}}, vg.Points(4))
	if err != nil {
		return err
	}
	chart.X.Tick.Label.Font.Size = vg.Points(3)
	return chart.Save(path)
}
