package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.sh")
	require.Nil(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testSweep(t *testing.T, executable string) *Sweep {
	return &Sweep{
		Executable:         executable,
		Workload:           "job",
		Scale:              1,
		IterationsPerQuery: 3,
		Iterations:         2,
		CoreCounts:         []int{4, 0},
		StateDir:           t.TempDir(),
	}
}

func TestDefaultCoreCounts(t *testing.T) {
	counts := DefaultCoreCounts()
	require.Len(t, counts, 41)
	require.Equal(t, 80, counts[0])
	require.Equal(t, 2, counts[39])
	require.Equal(t, 0, counts[40])
}

func TestSweepArgs(t *testing.T) {
	sweep := &Sweep{Executable: "numaJOB", Workload: "tpch", Scale: 0.1, IterationsPerQuery: 100, UseScheduler: true}
	require.Equal(t, "tpch_scale0.1_iterations100", sweep.ResultDirName())
	require.Equal(t, []string{
		"numaJOB", "-w", "tpch", "-e", "tpch_scale0.1_iterations100", "-s", "0.1",
		"--iterations-per-query", "100", "--use-scheduler=true", "--numa-cores", "8", "--iteration", "1",
	}, sweep.Args(1, 8))

	sweep.ResultDir = "custom"
	require.Equal(t, "custom", sweep.ResultDirName())
}

func TestSweepRun(t *testing.T) {
	sweep := testSweep(t, writeScript(t, `echo "args: $@"`))
	writeFile(t, sweep.StateDir, StatusFile, "stale")

	failed, err := sweep.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 0, failed)

	status, err := os.ReadFile(filepath.Join(sweep.StateDir, StatusFile))
	require.Nil(t, err)
	require.Equal(t, strings.Join([]string{
		"Running iteration 0, core count 4...",
		"Running iteration 0, core count 0...",
		"Running iteration 1, core count 4...",
		"Running iteration 1, core count 0...",
		"Done",
	}, "\n")+"\n", string(status))

	output, err := os.ReadFile(filepath.Join(sweep.StateDir, OutputFile))
	require.Nil(t, err)
	require.Contains(t, string(output), "args: -w job -e job_scale1_iterations3 -s 1 --iterations-per-query 3 --use-scheduler=false --numa-cores 4 --iteration 0\n")
	require.Equal(t, 4, strings.Count(string(output), "args:"))

	name, err := os.ReadFile(filepath.Join(sweep.StateDir, NameFile))
	require.Nil(t, err)
	require.Equal(t, "job_scale1_iterations3\n", string(name))
}

func TestSweepCountsFailures(t *testing.T) {
	sweep := testSweep(t, writeScript(t, "exit 1"))
	failed, err := sweep.Run(context.Background())
	require.Nil(t, err)
	require.Equal(t, 4, failed)
}

func TestSweepCancelled(t *testing.T) {
	sweep := testSweep(t, writeScript(t, "true"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweep.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = os.Stat(filepath.Join(sweep.StateDir, NameFile))
	require.True(t, os.IsNotExist(err))
}
