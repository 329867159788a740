package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateRanks(t *testing.T) {
	outcome, ok := EvaluateRanks("q.csv", []float64{10, 0, 5, 8})
	require.True(t, ok)
	require.Equal(t, 2, outcome.BestRank)
	require.Equal(t, 2.0, outcome.Ratio)
	require.Equal(t, 2, outcome.Inversions)
	require.InDelta(t, 2.0/3.0, outcome.Disorder, 1e-12)

	_, ok = EvaluateRanks("q.csv", []float64{0, 3})
	require.False(t, ok)
	_, ok = EvaluateRanks("q.csv", nil)
	require.False(t, ok)
}

func TestMotivation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.csv", "Duration", "10", "0", "5", "8")
	writeFile(t, root, "b.csv", "Duration", "0", "3")
	writeFile(t, root, "c.csv", "Duration", "4", "6")
	writeFile(t, root, "d.csv", "Other", "4")

	env := testEnv(t, root)
	outcomes, err := Motivation(env, nil)
	require.Nil(t, err)
	require.Len(t, outcomes, 2)
	require.Equal(t, "a.csv", outcomes[0].File)
	require.Equal(t, RankOutcome{File: "c.csv", BestRank: 0, Ratio: 1}, outcomes[1])

	var out strings.Builder
	WriteRankOutcomes(&out, outcomes)
	require.Equal(t, "a.csv: BestPlan: 2, Ratio: 2, Inversions: 2 (0.667)\nc.csv: BestPlan: 0, Ratio: 1, Inversions: 0 (0.000)\n", out.String())

	outcomes, err = Motivation(env, []string{"c.csv"})
	require.Nil(t, err)
	require.Len(t, outcomes, 1)

	path := filepath.Join(env.Out, "motivation.png")
	require.Nil(t, PlotRankOutcomes(outcomes, path))
	requireNonEmptyFile(t, path)
	require.Len(t, rankMeasurements(outcomes), 3)
}

func TestMotivationWithoutUsableFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.csv", "Duration", "0", "3")
	_, err := Motivation(testEnv(t, root), nil)
	require.ErrorIs(t, err, ErrNoInputs)
}
