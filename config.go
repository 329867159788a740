package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func BoolEnv(key string, def bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

// LoadDotEnv populates the environment from the given files. Missing files
// are ignored; variables already set win over file values.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load env file %v: %w", path, err)
		}
		Logger.Debugf("loaded env file %v", path)
	}
	return nil
}

// Filter restricts which queries take part in an analysis.
type Filter struct {
	Whitelist []string `yaml:"whitelist"`
	Blacklist []string `yaml:"blacklist"`
}

func LoadFilter(path string) (Filter, error) {
	if path == "" {
		return Filter{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Filter{}, fmt.Errorf("failed to read filter %v: %w", path, err)
	}
	var filter Filter
	if err := yaml.Unmarshal(data, &filter); err != nil {
		return Filter{}, fmt.Errorf("failed to parse filter %v: %w", path, err)
	}
	Logger.Infof("loaded filter %v: %v whitelisted, %v blacklisted", path, len(filter.Whitelist), len(filter.Blacklist))
	return filter, nil
}

// Allows reports whether the query id passes the filter. An empty whitelist
// admits everything not blacklisted. Names match with or without the JOB-
// prefix.
func (f Filter) Allows(name string) bool {
	id := strings.TrimPrefix(name, jobPrefix)
	if slices.Contains(f.Blacklist, id) || slices.Contains(f.Blacklist, name) {
		return false
	}
	if len(f.Whitelist) == 0 {
		return true
	}
	return slices.Contains(f.Whitelist, id) || slices.Contains(f.Whitelist, name)
}
