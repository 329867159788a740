package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *app) baselineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "baseline [root]",
		Short: "Summarize Duration of every JOB csv into baseline.csv",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, rootArg(args))
			if err != nil {
				return err
			}
			rows, err := Baseline(env)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "%v queries written to %v\n", len(rows), env.OutPath(BaselineFile))
			return nil
		},
	}
}

func (a *app) iterationsCmd() *cobra.Command {
	options := DefaultIterationsOptions()
	var reference string
	cmd := &cobra.Command{
		Use:   "iterations [root]",
		Short: "Plot per-iteration durations relative to a reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, rootArg(args))
			if err != nil {
				return err
			}
			options.Reference = ReferenceMode(reference)
			result, err := Iterations(env, options)
			if err != nil {
				return err
			}
			label := "baseline"
			if options.Legacy || options.Reference == ReferenceFirstIteration {
				label = "first iteration"
			}
			path := env.OutPath(fmt.Sprintf("query_iterations-%v.svg", DatasetName(env.Root)))
			if err := PlotIterations(result, path, label); err != nil {
				return err
			}
			return env.Record("iterations", iterationMeasurements(result))
		},
	}
	cmd.Flags().StringVar(&reference, "reference", string(ReferenceBaseline), "reference duration: baseline or first-iteration")
	cmd.Flags().StringVar(&options.BaselinePath, "baseline", options.BaselinePath, "baseline csv written by the baseline command")
	cmd.Flags().StringVar(&options.DurationColumn, "duration-column", options.DurationColumn, "duration column")
	cmd.Flags().StringVar(&options.HashColumn, "hash-column", options.HashColumn, "plan hash column")
	cmd.Flags().BoolVar(&options.Legacy, "legacy", false, "normalize Duration of plain csv files against the first iteration")
	return cmd
}

func (a *app) cecacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cecache [root]",
		Short: "Plot cardinality estimation cache hit frequency per iteration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, rootArg(args))
			if err != nil {
				return err
			}
			result, err := CacheHits(env)
			if err != nil {
				return err
			}
			if err := PlotCacheHits(result, env.OutPath("adaptive_optimization_cecache.png")); err != nil {
				return err
			}
			return env.Record("cecache", cacheMeasurements(result))
		},
	}
}

func (a *app) cecacheTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cecache-table [root]",
		Short: "Print the LaTeX table of cached vs uncached total time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, rootArg(args))
			if err != nil {
				return err
			}
			rows, err := CacheTable(env)
			if err != nil {
				return err
			}
			if err := WriteCacheTable(env.Stdout, rows); err != nil {
				return err
			}
			return env.Record("cecache-table", cacheTableMeasurements(rows))
		},
	}
}

func (a *app) planningCmd() *cobra.Command {
	var planningDir, baselineDir, adaptiveDir string
	plans := 10
	cmd := &cobra.Command{
		Use:   "planning",
		Short: "Compare planning time with baseline and adaptive execution time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, planningDir)
			if err != nil {
				return err
			}
			comparison, err := ComparePlanning(planningDir, baselineDir, adaptiveDir, env.Filter)
			if err != nil {
				return err
			}
			if err := PlotPlanning(comparison, plans, env.OutPath("planning-baseline-adaptive.svg")); err != nil {
				return err
			}
			measurements := make([]Measurement, 0, 3*len(comparison.Names))
			for i, name := range comparison.Names {
				measurements = append(measurements,
					Measurement{Name: name, Measurement: "planning_ms", Value: comparison.Planning[i]},
					Measurement{Name: name, Measurement: "baseline_ms", Value: comparison.Baseline[i]},
					Measurement{Name: name, Measurement: "adaptive_ms", Value: comparison.Adaptive[i]},
				)
			}
			return env.Record("planning", measurements)
		},
	}
	cmd.Flags().StringVar(&planningDir, "planning", "planning", "directory of the planning run")
	cmd.Flags().StringVar(&baselineDir, "baseline", "baseline", "directory of the baseline run")
	cmd.Flags().StringVar(&adaptiveDir, "adaptive", "adaptive", "directory of the adaptive run")
	cmd.Flags().IntVar(&plans, "plans", plans, "number of plans generated per planning step")
	return cmd
}

func (a *app) planningRatioCmd() *cobra.Command {
	var planningDir, baselineDir string
	var limit int
	cmd := &cobra.Command{
		Use:   "planning-ratio",
		Short: "Plot planning / execution time per query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, planningDir)
			if err != nil {
				return err
			}
			ratios, err := PlanningRatios(planningDir, baselineDir, env.Filter, limit)
			if err != nil {
				return err
			}
			WritePlanningRatios(env.Stdout, ratios)
			if err := PlotPlanningRatios(ratios, env.OutPath("planning-execution-ratio.svg")); err != nil {
				return err
			}
			measurements := make([]Measurement, len(ratios))
			for i, ratio := range ratios {
				measurements[i] = Measurement{Name: ratio.Name, Measurement: "planning_execution_ratio", Value: ratio.Ratio}
			}
			return env.Record("planning-ratio", measurements)
		},
	}
	cmd.Flags().StringVar(&planningDir, "planning", "planning", "directory of the planning run")
	cmd.Flags().StringVar(&baselineDir, "baseline", "baseline", "directory of the baseline run")
	cmd.Flags().IntVar(&limit, "limit", 0, "only consider the first N iterations of the baseline (0 = all)")
	return cmd
}

func (a *app) motivationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "motivation [root] [files...]",
		Short: "Plot rank of the best plan against its speedup over rank 0",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, files := splitRootAndFiles(args)
			env, err := a.env(cmd, root)
			if err != nil {
				return err
			}
			outcomes, err := Motivation(env, files)
			if err != nil {
				return err
			}
			WriteRankOutcomes(env.Stdout, outcomes)
			if err := PlotRankOutcomes(outcomes, env.OutPath("motivation_plot.svg")); err != nil {
				return err
			}
			return env.Record("motivation", rankMeasurements(outcomes))
		},
	}
}

func (a *app) rankCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank-cost [root] [files...]",
		Short: "Plot cost per plan rank on a log scale, one svg per csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, files := splitRootAndFiles(args)
			env, err := a.env(cmd, root)
			if err != nil {
				return err
			}
			written, err := RankCost(env, files)
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(env.Stdout, path)
			}
			return nil
		},
	}
}

func (a *app) costModelCmd() *cobra.Command {
	options := DefaultCostModelOptions()
	cmd := &cobra.Command{
		Use:   "cost-model samples.json",
		Short: "Fit a non-negative linear cost model to operator samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			fit, err := FitCostModel(args[0], options)
			if err != nil {
				return err
			}
			WriteCostModelFit(env.Stdout, fit)
			if err := PlotCostModelFit(fit, env.OutPath(fmt.Sprintf("cost_model-%v.svg", options.Operator))); err != nil {
				return err
			}
			return env.Record("cost-model", costModelMeasurements(fit))
		},
	}
	cmd.Flags().StringVar(&options.Operator, "operator", options.Operator, "operator whose samples are fitted")
	cmd.Flags().StringSliceVar(&options.Features, "features", options.Features, "sample fields used as features")
	cmd.Flags().Float64Var(&options.MinRuntime, "min-runtime", options.MinRuntime, "drop samples at or below this runtime")
	cmd.Flags().Float64Var(&options.MaxRuntime, "max-runtime", options.MaxRuntime, "drop samples at or above this runtime")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "compare [root]",
		Short: "Compare google benchmark results of several configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env(cmd, rootArg(args))
			if err != nil {
				return err
			}
			files, err := ResultFiles(env.Root, all)
			if err != nil {
				return err
			}
			results, err := LoadComparison(files)
			if err != nil {
				return err
			}
			if err := WriteComparison(env.Stdout, results); err != nil {
				return err
			}
			return env.Record("compare", comparisonMeasurements(results))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "compare every result_*.json instead of the four plan cache configurations")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	sweep := Sweep{
		Workload:           "tpch",
		Scale:              0.1,
		IterationsPerQuery: 100,
		Iterations:         5,
		CoreCounts:         DefaultCoreCounts(),
		UseScheduler:       true,
	}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a benchmark executable over a range of NUMA core counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sweep.StateDir = a.outDir
			failed, err := sweep.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v: %v runs failed\n", sweep.ResultDirName(), failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&sweep.Executable, "executable", "build-release/numaJOB", "benchmark executable")
	cmd.Flags().StringVar(&sweep.Dir, "cwd", "", "working directory of the executable")
	cmd.Flags().StringVar(&sweep.Workload, "workload", sweep.Workload, "workload name")
	cmd.Flags().Float64Var(&sweep.Scale, "scale", sweep.Scale, "scale factor")
	cmd.Flags().IntVar(&sweep.IterationsPerQuery, "iterations-per-query", sweep.IterationsPerQuery, "iterations per query")
	cmd.Flags().IntVar(&sweep.Iterations, "iterations", sweep.Iterations, "rounds over all core counts")
	cmd.Flags().IntSliceVar(&sweep.CoreCounts, "cores", sweep.CoreCounts, "core counts to run with (0 = no pinning)")
	cmd.Flags().BoolVar(&sweep.UseScheduler, "use-scheduler", sweep.UseScheduler, "run queries through the scheduler")
	cmd.Flags().StringVar(&sweep.ResultDir, "result-dir", "", "result directory passed to the executable")
	return cmd
}
