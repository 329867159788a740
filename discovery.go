package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

const (
	jobPrefix        = "JOB-"
	IterationsSuffix = "Iterations.csv"
)

var jobPattern = regexp.MustCompile(`^.*(JOB-([0-9]+[a-z]+))`)

// ListFiles returns paths of the regular files in root whose names end with
// suffix, in name order.
func ListFiles(root string, suffix string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %v: %w", root, err)
	}
	files := make([]string, 0)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(root, entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// QueryName extracts the JOB query id ("13a") from a result file name.
func QueryName(fileName string) (string, bool) {
	match := jobPattern.FindStringSubmatch(filepath.Base(fileName))
	if match == nil {
		return "", false
	}
	return match[2], true
}

// QueryNameWithPrefix is QueryName keeping the "JOB-13a" form used as key in
// baseline files.
func QueryNameWithPrefix(fileName string) (string, bool) {
	match := jobPattern.FindStringSubmatch(filepath.Base(fileName))
	if match == nil {
		return "", false
	}
	return match[1], true
}

// SortQueryNames orders ids by length first so that "2a" precedes "10a".
func SortQueryNames(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
}

// QueryFrame is a parsed per-query result file.
type QueryFrame struct {
	Name  string
	Path  string
	Frame *Frame
}

// LoadQueryFrames reads every file in root ending with suffix that carries a
// JOB name and passes the filter. Unreadable files are logged and skipped.
// When sameLength is set, files whose row count differs from the first
// accepted file are skipped as well.
func LoadQueryFrames(root, suffix string, filter Filter, withPrefix bool, sameLength bool) ([]QueryFrame, error) {
	files, err := ListFiles(root, suffix)
	if err != nil {
		return nil, err
	}
	frames := make([]QueryFrame, 0, len(files))
	for _, file := range files {
		Logger.Infof("reading %v", filepath.Base(file))
		name, ok := QueryName(file)
		if withPrefix {
			name, ok = QueryNameWithPrefix(file)
		}
		if !ok {
			Logger.Infof("skipping %v: no query name", filepath.Base(file))
			continue
		}
		if !filter.Allows(name) {
			Logger.Infof("skipping %v because of filter", name)
			continue
		}
		frame, err := ReadFrame(file)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", name, err)
			continue
		}
		if sameLength && len(frames) > 0 && frame.Len() != frames[0].Frame.Len() {
			Logger.Warnf("skipping %v: %v", name, fmt.Errorf("%w: %v rows, expected %v", ErrIterationMismatch, frame.Len(), frames[0].Frame.Len()))
			continue
		}
		frames = append(frames, QueryFrame{Name: name, Path: file, Frame: frame})
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w in %v (suffix %q)", ErrNoInputs, root, suffix)
	}
	return frames, nil
}
