package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func planningDirs(t *testing.T) (string, string, string) {
	t.Helper()
	planning, baseline, adaptive := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, planning, "JOB-1a.Iterations.csv", "PlanningDuration", "1000", "3000")
	writeFile(t, planning, "JOB-2a.Iterations.csv", "PlanningDuration", "500")
	writeFile(t, planning, "JOB-10a.Iterations.csv", "PlanningDuration", "100")
	writeFile(t, baseline, "JOB-1a.Iterations.csv", "RankZeroPlanExecutionDuration", "0", "5000", "4000")
	writeFile(t, baseline, "JOB-10a.Iterations.csv", "RankZeroPlanExecutionDuration", "0", "0")
	writeFile(t, adaptive, "JOB-1a.Iterations.csv", "RankZeroPlanExecutionDuration", "8000")
	writeFile(t, adaptive, "JOB-10a.Iterations.csv", "RankZeroPlanExecutionDuration", "1000")
	return planning, baseline, adaptive
}

func TestExecutionDurations(t *testing.T) {
	_, baseline, _ := planningDirs(t)
	durations, err := ExecutionDurations(baseline, Filter{}, 0)
	require.Nil(t, err)
	require.Equal(t, map[string]float64{"1a": 4000, "10a": 0}, durations)

	durations, err = ExecutionDurations(baseline, Filter{}, 2)
	require.Nil(t, err)
	require.Equal(t, 5000.0, durations["1a"])
}

func TestComparePlanning(t *testing.T) {
	planning, baseline, adaptive := planningDirs(t)
	comparison, err := ComparePlanning(planning, baseline, adaptive, Filter{})
	require.Nil(t, err)
	require.Equal(t, PlanningComparison{
		Names:    []string{"1a", "10a"},
		Planning: []float64{2, 0.1},
		Baseline: []float64{4, 0},
		Adaptive: []float64{8, 1},
	}, comparison)

	path := filepath.Join(t.TempDir(), "planning.png")
	require.Nil(t, PlotPlanning(comparison, 10, path))
	requireNonEmptyFile(t, path)

	_, err = ComparePlanning(planning, baseline, adaptive, Filter{Whitelist: []string{"2a"}})
	require.ErrorIs(t, err, ErrNoInputs)
}

func TestPlanningRatios(t *testing.T) {
	planning, baseline, _ := planningDirs(t)
	ratios, err := PlanningRatios(planning, baseline, Filter{}, 2)
	require.Nil(t, err)
	require.Equal(t, []PlanningRatio{{Name: "1a", Planning: 2000, Execution: 5000, Ratio: 0.4}}, ratios)

	var out strings.Builder
	WritePlanningRatios(&out, ratios)
	require.Equal(t, "1a: 2000 VS 5000\n", out.String())

	path := filepath.Join(t.TempDir(), "ratio.png")
	require.Nil(t, PlotPlanningRatios(ratios, path))
	requireNonEmptyFile(t, path)
}

func TestPlanningIgnoresUnparsableCells(t *testing.T) {
	planning, baseline, adaptive := planningDirs(t)
	writeFile(t, planning, "JOB-1a.Iterations.csv", "PlanningDuration", "nan", "1000", "")
	writeFile(t, planning, "JOB-10a.Iterations.csv", "PlanningDuration", "nan")

	durations, err := PlanningDurations(planning, Filter{})
	require.Nil(t, err)
	require.Equal(t, map[string]float64{"1a": 1000, "2a": 500}, durations)

	comparison, err := ComparePlanning(planning, baseline, adaptive, Filter{})
	require.Nil(t, err)
	require.Equal(t, []string{"1a"}, comparison.Names)
	require.Equal(t, []float64{1}, comparison.Planning)

	path := filepath.Join(t.TempDir(), "planning.png")
	require.Nil(t, PlotPlanning(comparison, 10, path))
	requireNonEmptyFile(t, path)
}
