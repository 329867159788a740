package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

const (
	StatusFile = "current_run.status"
	OutputFile = "current_run.out"
	NameFile   = "current_run.name"
)

// Sweep runs a benchmark executable for every core count, several times
// over, so that results can later be compared across NUMA configurations.
type Sweep struct {
	Executable         string
	Dir                string
	Workload           string
	Scale              float64
	IterationsPerQuery int
	Iterations         int
	CoreCounts         []int
	UseScheduler       bool
	ResultDir          string
	// StateDir holds the status, output and name files.
	StateDir string
}

// DefaultCoreCounts is every even count from 80 down to 2, then 0 (no
// pinning).
func DefaultCoreCounts() []int {
	counts := make([]int, 0, 41)
	for cores := 80; cores > 1; cores -= 2 {
		counts = append(counts, cores)
	}
	return append(counts, 0)
}

func (s *Sweep) ResultDirName() string {
	if s.ResultDir != "" {
		return s.ResultDir
	}
	return fmt.Sprintf("%v_scale%v_iterations%v", s.Workload, strconv.FormatFloat(s.Scale, 'f', -1, 64), s.IterationsPerQuery)
}

func (s *Sweep) Args(iteration int, cores int) []string {
	return []string{
		s.Executable,
		"-w", s.Workload,
		"-e", s.ResultDirName(),
		"-s", strconv.FormatFloat(s.Scale, 'f', -1, 64),
		"--iterations-per-query", strconv.Itoa(s.IterationsPerQuery),
		"--use-scheduler=" + strconv.FormatBool(s.UseScheduler),
		"--numa-cores", strconv.Itoa(cores),
		"--iteration", strconv.Itoa(iteration),
	}
}

func (s *Sweep) statePath(name string) string {
	return filepath.Join(s.StateDir, name)
}

func (s *Sweep) appendStatus(line string) error {
	file, err := os.OpenFile(s.statePath(StatusFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(file, line); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (s *Sweep) runCmd(ctx context.Context, args []string) error {
	output, err := os.OpenFile(s.statePath(OutputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer output.Close()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = s.Dir
	cmd.Stdout = output
	cmd.Stderr = output
	return cmd.Run()
}

// Run removes state files of a previous sweep and executes all runs. A
// failed run is logged and does not stop the sweep; cancellation does.
// It returns the number of failed runs.
func (s *Sweep) Run(ctx context.Context) (int, error) {
	for _, name := range []string{StatusFile, OutputFile, NameFile} {
		if err := os.Remove(s.statePath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("failed to remove %v: %w", name, err)
		}
	}
	failed := 0
	for iteration := 0; iteration < s.Iterations; iteration++ {
		for _, cores := range s.CoreCounts {
			if err := ctx.Err(); err != nil {
				return failed, err
			}
			err := s.appendStatus(fmt.Sprintf("Running iteration %v, core count %v...", iteration, cores))
			if err != nil {
				return failed, fmt.Errorf("failed to write status: %w", err)
			}
			Logger.Infof("running iteration #%v/%v with %v cores", iteration+1, s.Iterations, cores)
			if err := s.runCmd(ctx, s.Args(iteration, cores)); err != nil {
				if ctx.Err() != nil {
					return failed, ctx.Err()
				}
				failed++
				Logger.Errorf("run failed (iteration %v, cores %v): %v", iteration, cores, err)
			}
		}
	}
	if err := s.appendStatus("Done"); err != nil {
		return failed, fmt.Errorf("failed to write status: %w", err)
	}
	if err := os.WriteFile(s.statePath(NameFile), []byte(s.ResultDirName()+"\n"), 0o644); err != nil {
		return failed, fmt.Errorf("failed to write %v: %w", NameFile, err)
	}
	return failed, nil
}
