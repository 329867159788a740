package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"text/tabwriter"
)

const (
	headTailCount  = 3
	microsInSecond = 1_000_000
)

type CacheTableRow struct {
	Name           string
	Convergence    int
	NoCacheExe     float64
	NoCacheTotal   float64
	CacheExe       float64
	CacheTotal     float64
	DiffPercentage float64
}

// CacheDiff is the relative change of the cached total against the uncached
// one, in percent. Negative means the cache saved time.
func CacheDiff(nocache, cache float64) float64 {
	if nocache == 0 {
		return math.NaN()
	}
	return -((nocache - cache) / nocache) * 100.0
}

// ConvergenceIndex is the first iteration that repeats the plan of its
// predecessor, or the last iteration when the plan never repeats.
func ConvergenceIndex(hashes []string) int {
	for idx := 0; idx+1 < len(hashes); idx++ {
		if hashes[idx] == hashes[idx+1] {
			return idx + 1
		}
	}
	return len(hashes) - 1
}

// CacheTableRowFor compares running every iteration with the first plan
// against adaptive planning with the cardinality estimation cache, where
// planning and caching are paid only until the plan converges.
func CacheTableRowFor(name string, frame *Frame) (CacheTableRow, error) {
	hashes, err := frame.Strings("RankZeroPlanHash")
	if err != nil {
		return CacheTableRow{}, err
	}
	exe, err := frame.Floats("RankZeroPlanExecutionDuration")
	if err != nil {
		return CacheTableRow{}, err
	}
	planning, err := frame.Floats("PlanningDuration")
	if err != nil {
		return CacheTableRow{}, err
	}
	caching, err := frame.Floats("CECachingDuration")
	if err != nil {
		return CacheTableRow{}, err
	}
	n := frame.Len()
	if n == 0 {
		return CacheTableRow{}, fmt.Errorf("%w: no iterations", ErrNoInputs)
	}
	convergence := ConvergenceIndex(hashes)
	Logger.Infof("%v converges at iteration %v", name, convergence)

	row := CacheTableRow{Name: name, Convergence: convergence}
	row.NoCacheExe = exe[0] * float64(n)
	row.NoCacheTotal = row.NoCacheExe + planning[0]
	row.CacheExe = Sum(exe)
	row.CacheTotal = row.CacheExe + Sum(planning[:convergence]) + Sum(caching[:convergence])
	row.DiffPercentage = CacheDiff(row.NoCacheTotal, row.CacheTotal)
	return row, nil
}

func CacheTable(env Env) ([]CacheTableRow, error) {
	frames, err := LoadQueryFrames(env.Root, IterationsSuffix, env.Filter, false, true)
	if err != nil {
		return nil, err
	}
	Logger.Infof("iteration count: %v", frames[0].Frame.Len())
	rows := make([]CacheTableRow, 0, len(frames))
	for _, query := range frames {
		row, err := CacheTableRowFor(query.Name, query.Frame)
		if err != nil {
			Logger.Warnf("skipping %v: %v", query.Name, err)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no query had the required columns", ErrNoInputs)
	}
	slices.SortStableFunc(rows, func(a, b CacheTableRow) int {
		switch {
		case a.DiffPercentage < b.DiffPercentage:
			return -1
		case a.DiffPercentage > b.DiffPercentage:
			return 1
		}
		return 0
	})
	return rows, nil
}

func latexRow(w io.Writer, name string, nocache, cache float64) {
	fmt.Fprintf(w, "%v & %.2fs & %.2fs & %+.2f\\%% \\\\\n", name, nocache/microsInSecond, cache/microsInSecond, CacheDiff(nocache, cache))
}

// WriteCacheTable prints the plain table of all rows followed by the LaTeX
// body: best rows, an aggregate of the middle, worst rows and the total.
func WriteCacheTable(w io.Writer, rows []CacheTableRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "name\tconvergence\tnocache_exe\tnocache_total\tcache_exe\tcache_total\tdiff\t")
	for _, row := range rows {
		fmt.Fprintf(tw, "%v\t%v\t%.0f\t%.0f\t%.0f\t%.0f\t%.4f\t\n",
			row.Name, row.Convergence, row.NoCacheExe, row.NoCacheTotal, row.CacheExe, row.CacheTotal, row.DiffPercentage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	n := len(rows)
	head := rows[:min(headTailCount, n)]
	tail := rows[max(n-headTailCount, 0):]
	var omitted []CacheTableRow
	if n > 2*headTailCount {
		omitted = rows[headTailCount : n-headTailCount]
	}

	for _, row := range head {
		latexRow(w, row.Name, row.NoCacheTotal, row.CacheTotal)
	}
	fmt.Fprintln(w, `\hline`)
	var omittedNoCache, omittedCache float64
	for _, row := range omitted {
		omittedNoCache += row.NoCacheTotal
		omittedCache += row.CacheTotal
	}
	latexRow(w, fmt.Sprintf("%v omitted", len(omitted)), omittedNoCache, omittedCache)
	fmt.Fprintln(w, `\hline`)
	for _, row := range tail {
		latexRow(w, row.Name, row.NoCacheTotal, row.CacheTotal)
	}
	fmt.Fprintln(w, `\hline`)
	var allNoCache, allCache float64
	for _, row := range rows {
		allNoCache += row.NoCacheTotal
		allCache += row.CacheTotal
	}
	latexRow(w, "Accumulated", allNoCache, allCache)
	return nil
}

func cacheTableMeasurements(rows []CacheTableRow) []Measurement {
	measurements := make([]Measurement, 0, 3*len(rows))
	for _, row := range rows {
		measurements = append(measurements,
			Measurement{Name: row.Name, Measurement: "nocache_total", Value: row.NoCacheTotal},
			Measurement{Name: row.Name, Measurement: "cache_total", Value: row.CacheTotal},
			Measurement{Name: row.Name, Measurement: "diff_percentage", Value: row.DiffPercentage},
		)
	}
	return measurements
}
