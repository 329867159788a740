package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const iterationsHeader = "RankZeroPlanExecutionDuration,RankZeroPlanHash"

func TestNormalizeQuery(t *testing.T) {
	avg := newAverager(4)
	curve := NormalizeQuery("JOB-1a", []float64{200, 0, 50, 100}, []string{"a", "b", "c", "c"}, 100, true, avg)
	require.Equal(t, []float64{0, 1, 2}, curve.Indices)
	require.Equal(t, []float64{2, 1, 0.5}, curve.Normalized)
	require.True(t, curve.Converged)
	require.Equal(t, 2, curve.ConvergenceIdx)
	require.Equal(t, 0.5, curve.ConvergenceValue)
	require.Equal(t, []float64{2, 0, 1, 1}, avg.average())
}

func TestNormalizeQueryTimeoutAtConvergence(t *testing.T) {
	curve := NormalizeQuery("JOB-1a", []float64{100, 0}, []string{"a", "b"}, 100, false, newAverager(2))
	require.Equal(t, []float64{1, 1}, curve.Normalized)
	require.False(t, curve.Converged)
}

func TestIterationsFirstIteration(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "JOB-1a.Iterations.csv", iterationsHeader, "100,a", "50,b", "50,b")
	writeFile(t, root, "JOB-2a.Iterations.csv", iterationsHeader, "0,x", "200,y", "300,z")
	writeFile(t, root, "JOB-3a.Iterations.csv", iterationsHeader, "10,x")

	env := testEnv(t, root)
	options := DefaultIterationsOptions()
	options.Reference = ReferenceFirstIteration
	result, err := Iterations(env, options)
	require.Nil(t, err)
	require.Len(t, result.Curves, 2)

	first := result.Curves[0]
	require.Equal(t, "JOB-1a", first.Name)
	require.Equal(t, []float64{0, 1}, first.Indices)
	require.Equal(t, []float64{1, 0.5}, first.Normalized)
	require.Equal(t, 1, first.ConvergenceIdx)

	second := result.Curves[1]
	require.Equal(t, []float64{1, 1, 1.5}, second.Normalized)
	require.True(t, second.Converged)
	require.Equal(t, 2, second.ConvergenceIdx)
	require.Equal(t, 1.5, second.ConvergenceValue)

	require.Equal(t, []float64{1, 1, 1.25}, result.Average)

	path := filepath.Join(env.Out, "iterations.png")
	require.Nil(t, PlotIterations(result, path, "first iteration"))
	requireNonEmptyFile(t, path)
}

func TestIterationsBaseline(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "JOB-1a.Iterations.csv", iterationsHeader, "100,a", "50,b", "50,b")
	writeFile(t, root, "JOB-2a.Iterations.csv", iterationsHeader, "10,a", "10,a", "10,a")
	baseline := writeFile(t, t.TempDir(), BaselineFile,
		"Name,MinExeDuration,MaxExeDuration,AverageExeDuration,MedianExeDuration",
		"JOB-1a,50,60,55,55",
	)

	options := DefaultIterationsOptions()
	options.BaselinePath = baseline
	result, err := Iterations(testEnv(t, root), options)
	require.Nil(t, err)
	require.Len(t, result.Curves, 1)
	require.Equal(t, []float64{2, 1}, result.Curves[0].Normalized)
	require.Equal(t, []float64{2, 1, 1}, result.Average)
	require.Len(t, iterationMeasurements(result), 3)
}

func TestIterationsMissingBaseline(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "JOB-1a.Iterations.csv", iterationsHeader, "100,a")
	options := DefaultIterationsOptions()
	options.BaselinePath = filepath.Join(root, "missing.csv")
	_, err := Iterations(testEnv(t, root), options)
	require.NotNil(t, err)
}

func TestLegacyIterations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.csv", "Duration", "10", "20", "40")
	writeFile(t, root, "b.csv", "Duration", "10", "5", "5")
	writeFile(t, root, "c.csv", "Duration", "10")
	writeFile(t, root, "d.csv", "Other", "10", "5", "5")

	options := DefaultIterationsOptions()
	options.Legacy = true
	result, err := Iterations(testEnv(t, root), options)
	require.Nil(t, err)
	require.Len(t, result.Curves, 2)
	require.Equal(t, []float64{1, 2, 2}, result.Curves[0].Normalized)
	require.Equal(t, []float64{1, 1.25, 1.25}, result.Average)
}

func TestDatasetName(t *testing.T) {
	require.Equal(t, "run1", DatasetName("/data/run1/iterations"))
	require.Equal(t, "run1", DatasetName("/data/run1/"))
	require.Equal(t, "iterations", DatasetName("iterations"))
}
