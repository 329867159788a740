package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir string, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func requireNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	stat, err := os.Stat(path)
	require.Nil(t, err)
	require.Greater(t, stat.Size(), int64(0))
}

func testEnv(t *testing.T, root string) Env {
	t.Helper()
	return Env{Root: root, Out: t.TempDir(), Stdout: &strings.Builder{}}
}
